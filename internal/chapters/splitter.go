package chapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/logging"
	"aaxconv/internal/naming"
	"aaxconv/internal/progress"
	"aaxconv/internal/services"
)

// ErrInvalidChapter marks a chapter whose end is not after its start.
var ErrInvalidChapter = errors.New("chapter end is not after start")

// ChapterTranscoder extracts one chapter of source into dest.
type ChapterTranscoder interface {
	Chapter(ctx context.Context, source, dest string, decrypt []string, md audiobook.Metadata, ch audiobook.Chapter) error
}

// CoverEmbedder attaches artwork to a finished file.
type CoverEmbedder interface {
	Embed(ctx context.Context, audioFile, coverFile string, profile audiobook.Profile) error
}

// Request describes one split. Chapters with Number below ResumeFrom are
// left alone; ResumeFrom <= 1 processes everything.
type Request struct {
	Source     string
	OutputDir  string
	Decrypt    []string
	Metadata   audiobook.Metadata
	Chapters   []audiobook.Chapter
	CoverFile  string
	ResumeFrom int
	Profile    audiobook.Profile

	// OnChapter, when set, is called once per attempted chapter.
	OnChapter func(Outcome)
}

// Outcome is the result of one chapter. Err is nil on success.
type Outcome struct {
	Chapter audiobook.Chapter
	Path    string
	Err     error
}

// Summary totals a split.
type Summary struct {
	Playlist string
	Written  []string
	Failed   int
	Resumed  int
}

// Splitter runs the per-chapter extraction loop.
type Splitter struct {
	transcoder ChapterTranscoder
	cover      CoverEmbedder
	names      *naming.Engine
	progress   progress.Reporter
	logger     *slog.Logger
}

// NewSplitter wires a Splitter. cover and reporter may be nil.
func NewSplitter(transcoder ChapterTranscoder, cover CoverEmbedder, names *naming.Engine, reporter progress.Reporter, logger *slog.Logger) *Splitter {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Splitter{
		transcoder: transcoder,
		cover:      cover,
		names:      names,
		progress:   reporter,
		logger:     logging.NewComponentLogger(logger, "splitter"),
	}
}

// Split produces one file per chapter and the playlist. A chapter that fails
// to transcode is logged and skipped. The returned error covers the playlist
// and context cancellation only.
func (s *Splitter) Split(ctx context.Context, req Request) (Summary, error) {
	md := req.Metadata
	playlistPath := filepath.Join(req.OutputDir, s.names.Playlist(md))
	playlist, err := CreatePlaylist(playlistPath)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrTranscode, "split_chapters", "create playlist", playlistPath, err)
	}
	defer func() { _ = playlist.Close() }()

	summary := Summary{Playlist: playlist.Path()}
	total := len(req.Chapters)
	s.progress.Start(total)
	defer s.progress.Finish()

	for _, ch := range req.Chapters {
		if ch.Number < req.ResumeFrom {
			summary.Resumed++
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("split chapters: %w", err)
		}

		chLogger := s.logger.With(
			logging.Int(logging.FieldChapter, ch.Number),
			logging.String("chapter_title", ch.Title),
		)

		if !ch.Valid() {
			logging.WarnWithContext(chLogger, "chapter skipped", "chapter_invalid",
				logging.Float64("start", ch.Start),
				logging.Float64("end", ch.End),
				logging.String(logging.FieldErrorHint, "source chapter table has a zero or negative length entry"),
			)
			summary.Failed++
			s.report(req, Outcome{Chapter: ch, Err: ErrInvalidChapter})
			s.progress.Advance(ch.Number, ch.Title)
			continue
		}

		name := s.names.Chapter(md, naming.ChapterInfo{Title: ch.Title, Number: ch.Number, Total: total}) + "." + req.Profile.Extension
		dest := filepath.Join(req.OutputDir, name)

		if err := s.transcoder.Chapter(ctx, req.Source, dest, req.Decrypt, md, ch); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, fmt.Errorf("split chapters: %w", ctxErr)
			}
			logging.ErrorWithContext(chLogger, "chapter failed", "chapter_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "chapter missing from output and playlist"),
			)
			summary.Failed++
			s.report(req, Outcome{Chapter: ch, Path: dest, Err: err})
			s.progress.Advance(ch.Number, ch.Title)
			continue
		}

		if req.CoverFile != "" && s.cover != nil {
			if err := s.cover.Embed(ctx, dest, req.CoverFile, req.Profile); err != nil {
				chLogger.Warn("cover not embedded in chapter", logging.Error(err))
			}
		}

		if err := playlist.Add(md.Title, ch.Title, ch.Duration(), name); err != nil {
			return summary, services.Wrap(services.ErrTranscode, "split_chapters", "append playlist", playlistPath, err)
		}
		summary.Written = append(summary.Written, dest)
		chLogger.Debug("chapter written", logging.String("path", dest))
		s.report(req, Outcome{Chapter: ch, Path: dest})
		s.progress.Advance(ch.Number, ch.Title)
	}

	if err := playlist.Close(); err != nil {
		return summary, services.Wrap(services.ErrTranscode, "split_chapters", "close playlist", playlistPath, err)
	}
	s.logger.Info("chapters split",
		logging.Int("written", len(summary.Written)),
		logging.Int("failed", summary.Failed),
		logging.Int("resumed_past", summary.Resumed),
		logging.String("playlist", playlistPath),
	)
	return summary, nil
}

func (s *Splitter) report(req Request, outcome Outcome) {
	if req.OnChapter != nil {
		req.OnChapter(outcome)
	}
}
