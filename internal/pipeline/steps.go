package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/chapters"
	"aaxconv/internal/decrypt"
	"aaxconv/internal/logging"
	"aaxconv/internal/metadata"
	"aaxconv/internal/services"
)

func (c *Converter) deriveParams(j *job) (State, error) {
	params, err := decrypt.Derive(j.src, c.cfg.Conversion.ActivationBytes)
	if err != nil {
		return StateAborted, err
	}
	j.decrypt = params
	j.logger.Debug("decrypt params derived",
		logging.String("kind", j.src.Kind.String()),
		logging.String("params", params.Redacted()),
	)
	return StateValidate, nil
}

func (c *Converter) validate(ctx context.Context, j *job) (State, error) {
	info, err := os.Stat(j.src.Path)
	if err != nil {
		return StateAborted, services.Wrap(services.ErrNotFound, "validate", "stat source", j.src.Path, err)
	}
	if info.IsDir() {
		return StateAborted, services.Wrap(services.ErrValidation, "validate", "stat source", j.src.Path+" is a directory", nil)
	}

	report, err := c.prober.Inspect(ctx, j.src.Path, j.decrypt.Args())
	if err != nil {
		return StateAborted, services.Wrap(services.ErrValidation, "validate", "ffprobe",
			"source could not be probed; check the activation bytes or voucher", err)
	}
	if report.AudioStreamCount() == 0 {
		return StateAborted, services.Wrap(services.ErrValidation, "validate", "ffprobe", "source has no audio stream", nil)
	}

	if c.cfg.Conversion.DeepValidate {
		args := append([]string{"-hide_banner"}, j.decrypt.Args()...)
		args = append(args, "-i", j.src.Path, "-vn", "-f", "null", "-")
		if _, err := c.runner.Run(ctx, c.tools.FFmpeg, args); err != nil {
			return StateAborted, services.Wrap(services.ErrValidation, "validate", "deep decode", "full decode failed", err)
		}
	}

	j.hasCover = report.HasCoverStream()
	j.logger.Info("source validated",
		logging.Int("audio_streams", report.AudioStreamCount()),
		logging.Bool("cover_stream", j.hasCover),
		logging.Float64("duration_seconds", report.DurationSeconds()),
		logging.Bool("deep", c.cfg.Conversion.DeepValidate),
	)
	if c.cfg.Conversion.ValidateOnly {
		return StateValidated, nil
	}
	return StateExtractMetadata, nil
}

func (c *Converter) extractMetadata(ctx context.Context, j *job) (State, error) {
	md, err := c.metadata.Extract(ctx, j.src, j.decrypt.Args())
	if err != nil {
		return StateAborted, err
	}
	j.md = md
	j.chapters = c.chapters.Extract(ctx, j.src, j.decrypt.Args())
	j.logger.Info("metadata extracted",
		logging.String("title", md.Title),
		logging.String("artist", md.Artist),
		logging.Int("chapters", len(j.chapters)),
	)
	return StateApplyOverrides, nil
}

func (c *Converter) applyOverrides(j *job) (State, error) {
	j.md = metadata.ApplyOverrides(j.md, metadata.Overrides{
		Author:     c.cfg.Metadata.Author,
		KeepAuthor: c.cfg.Metadata.KeepAuthor,
	})
	return StatePlanOutput, nil
}

func (c *Converter) planOutput(ctx context.Context, j *job) (State, error) {
	j.outputDir = filepath.Join(c.cfg.Paths.TargetDir, filepath.FromSlash(c.names.Directory(j.md)))
	j.result.OutputDir = j.outputDir

	if _, err := os.Stat(j.outputDir); err == nil && c.cfg.Conversion.NoClobber {
		j.result.Err = fmt.Errorf("%w: %s", ErrOutputExists, j.outputDir)
		return StateSkipped, nil
	}

	j.resumeFrom = c.resumePoint(ctx, j)
	c.plan(ctx, j)

	if err := os.MkdirAll(j.outputDir, 0o755); err != nil {
		return StateAborted, services.Wrap(services.ErrConfiguration, "plan_output", "create output dir", j.outputDir, err)
	}
	if j.hasCover {
		if cover, ok := c.cover.Extract(ctx, j.src.Path, j.decrypt.Args(), j.outputDir); ok {
			j.coverFile = cover
		}
	} else {
		j.logger.Debug("source has no embedded artwork")
	}

	if c.profile.Mode != audiobook.ModeChaptered {
		return StateSingleMode, nil
	}
	if len(j.chapters) == 0 {
		logging.WarnWithContext(j.logger, "no chapters found", "chapters_missing",
			logging.String(logging.FieldImpact, "writing a single file instead of one per chapter"),
		)
		return StateSingleMode, nil
	}
	return StateChapterMode, nil
}

func (c *Converter) chapterMode(ctx context.Context, j *job) (State, error) {
	j.tempFile = filepath.Join(j.outputDir, "temp."+c.profile.Extension)
	if err := c.transcoder.Whole(ctx, j.src.Path, j.tempFile, j.decrypt.Args(), j.md); err != nil {
		return StateAborted, err
	}

	if j.resumeFrom > 1 {
		j.logger.Info("resuming chapter split", logging.Int(logging.FieldChapter, j.resumeFrom))
	}
	summary, err := c.splitter.Split(ctx, chapters.Request{
		Source:     j.src.Path,
		OutputDir:  j.outputDir,
		Decrypt:    j.decrypt.Args(),
		Metadata:   j.md,
		Chapters:   j.chapters,
		CoverFile:  j.coverFile,
		ResumeFrom: j.resumeFrom,
		Profile:    c.profile,
		OnChapter:  func(o chapters.Outcome) { c.recordChapter(ctx, j, o) },
	})
	j.result.Outputs = summary.Written
	j.result.Playlist = summary.Playlist
	j.result.ChaptersFailed = summary.Failed
	if err != nil {
		return StateAborted, err
	}
	c.removeTemp(j)
	return StateCleanup, nil
}

func (c *Converter) singleMode(ctx context.Context, j *job) (State, error) {
	j.output = filepath.Join(j.outputDir, c.names.File(j.md)+"."+c.profile.Extension)
	if err := c.transcoder.Whole(ctx, j.src.Path, j.output, j.decrypt.Args(), j.md); err != nil {
		return StateAborted, err
	}
	j.result.Outputs = []string{j.output}

	if j.coverFile != "" {
		if err := c.cover.Embed(ctx, j.output, j.coverFile, c.profile); err != nil {
			logging.WarnWithContext(j.logger, "cover art not embedded", "cover_embed_failed",
				logging.Error(err),
				logging.String("file", j.output),
			)
		}
	}

	if !c.profile.IsMP4() || len(j.chapters) == 0 {
		return StateCleanup, nil
	}
	if c.tools.MP4Chaps == "" {
		logging.WarnWithContext(j.logger, "chapter table not embedded", "chapter_table_skipped",
			logging.String(logging.FieldErrorHint, "install mp4v2 utilities to embed chapters in mp4 outputs"),
			logging.String(logging.FieldImpact, "output plays as one track without chapter marks"),
		)
		return StateCleanup, nil
	}
	return StateEmbedChapterTable, nil
}

// ChapterFilePath is the mp4chaps import file for output: the output path
// with its extension replaced by ".chapters.txt".
func ChapterFilePath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".chapters.txt"
}

func (c *Converter) embedChapterTable(ctx context.Context, j *job) (State, error) {
	sidecar := ChapterFilePath(j.output)
	if err := chapters.WriteChapterFile(sidecar, j.chapters); err != nil {
		logging.WarnWithContext(j.logger, "chapter table not embedded", "chapter_table_failed", logging.Error(err))
		return StateCleanup, nil
	}
	if _, err := c.runner.Run(ctx, c.tools.MP4Chaps, []string{"-i", j.output}); err != nil {
		logging.WarnWithContext(j.logger, "chapter table not embedded", "chapter_table_failed",
			logging.Error(err),
			logging.String("chapter_file", sidecar),
		)
		return StateCleanup, nil
	}
	if err := os.Remove(sidecar); err != nil && !errors.Is(err, os.ErrNotExist) {
		j.logger.Debug("chapter file not removed", logging.Error(err))
	}
	j.logger.Info("chapter table embedded", logging.Int("chapters", len(j.chapters)))
	return StateCleanup, nil
}
