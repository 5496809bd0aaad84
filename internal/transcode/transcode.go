// Package transcode builds and runs the ffmpeg invocations that decrypt and
// re-encode a source, either whole or one chapter at a time.
package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/logging"
	"aaxconv/internal/services"
	"aaxconv/internal/toolexec"
)

// Transcoder runs ffmpeg for one output profile.
type Transcoder struct {
	runner  toolexec.Runner
	ffmpeg  string
	profile audiobook.Profile
	logger  *slog.Logger
}

// New returns a Transcoder writing profile's codec and container.
func New(runner toolexec.Runner, ffmpeg string, profile audiobook.Profile, logger *slog.Logger) *Transcoder {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	return &Transcoder{
		runner:  runner,
		ffmpeg:  ffmpeg,
		profile: profile,
		logger:  logging.NewComponentLogger(logger, "transcode"),
	}
}

// Whole transcodes the entire source into dest.
func (t *Transcoder) Whole(ctx context.Context, source, dest string, decrypt []string, md audiobook.Metadata) error {
	args := WholeArgs(t.profile, source, dest, decrypt, md)
	t.logger.Debug("transcoding whole file", logging.String("dest", dest), logging.String("codec", t.profile.FFmpegCodec))
	if _, err := t.runner.Run(ctx, t.ffmpeg, args); err != nil {
		return services.Wrap(services.ErrTranscode, "transcode", "whole", dest, err)
	}
	return nil
}

// Chapter extracts one chapter into dest, tagged with the chapter title and
// its ordinal as track number.
func (t *Transcoder) Chapter(ctx context.Context, source, dest string, decrypt []string, md audiobook.Metadata, ch audiobook.Chapter) error {
	args := ChapterArgs(t.profile, source, dest, decrypt, md, ch)
	if _, err := t.runner.Run(ctx, t.ffmpeg, args); err != nil {
		return services.Wrap(services.ErrTranscode, "transcode", "chapter "+strconv.Itoa(ch.Number), dest, err)
	}
	return nil
}

// WholeArgs builds the whole-file argument vector.
func WholeArgs(p audiobook.Profile, source, dest string, decrypt []string, md audiobook.Metadata) []string {
	return buildArgs(p, source, dest, decrypt, md.Tags(), nil, false)
}

// ChapterArgs builds the per-chapter argument vector. The chapter table is
// dropped from the output with -map_chapters -1.
func ChapterArgs(p audiobook.Profile, source, dest string, decrypt []string, md audiobook.Metadata, ch audiobook.Chapter) []string {
	md.Title = ch.Title
	tags := append(md.Tags(), audiobook.Tag{Key: "track", Value: strconv.Itoa(ch.Number)})
	window := []string{"-ss", formatSeconds(ch.Start), "-to", formatSeconds(ch.End)}
	return buildArgs(p, source, dest, decrypt, tags, window, true)
}

func buildArgs(p audiobook.Profile, source, dest string, decrypt []string, tags []audiobook.Tag, window []string, stripChapters bool) []string {
	args := []string{"-nostats", "-loglevel", "error", "-y"}
	args = append(args, decrypt...)
	args = append(args, "-i", source)
	args = append(args, window...)
	args = append(args, "-map", "0:a", "-c:a", p.FFmpegCodec)
	args = append(args, p.QualityArgs()...)
	for _, tag := range tags {
		args = append(args, "-metadata", tag.Key+"="+tag.Value)
	}
	if stripChapters {
		args = append(args, "-map_chapters", "-1")
	}
	return append(args, "-f", p.Container, dest)
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
