// Package chapters reads the chapter table of a source, splits a book into
// one file per chapter, and writes the playlist and chapter-table sidecar
// that go with the split.
package chapters

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/logging"
	"aaxconv/internal/media/ffprobe"
)

// Lister returns the raw chapter listing of a source.
type Lister interface {
	Chapters(ctx context.Context, path string, decrypt []string) ([]ffprobe.ChapterEntry, error)
}

// Extractor converts the ffprobe listing into numbered chapters.
type Extractor struct {
	lister Lister
	logger *slog.Logger
}

// NewExtractor returns an Extractor backed by lister.
func NewExtractor(lister Lister, logger *slog.Logger) *Extractor {
	return &Extractor{lister: lister, logger: logging.NewComponentLogger(logger, "chapters")}
}

// Extract never fails: a failed probe, malformed output, or any unparsable
// time yields an empty list, which callers treat as "no chapters".
func (e *Extractor) Extract(ctx context.Context, src audiobook.SourceFile, decrypt []string) []audiobook.Chapter {
	entries, err := e.lister.Chapters(ctx, src.Path, decrypt)
	if err != nil {
		e.logger.Debug("chapter listing unavailable", logging.Error(err))
		return nil
	}
	chapters := make([]audiobook.Chapter, 0, len(entries))
	for i, entry := range entries {
		start := ffprobe.ParseSeconds(entry.StartTime)
		end := ffprobe.ParseSeconds(entry.EndTime)
		if math.IsNaN(start) || math.IsNaN(end) {
			e.logger.Debug("chapter listing has unparsable times",
				logging.Int("index", i),
				logging.String("start", entry.StartTime),
				logging.String("end", entry.EndTime),
			)
			return nil
		}
		number := i + 1
		title := strings.TrimSpace(entry.Tags.Title)
		if title == "" {
			title = audiobook.DefaultChapterTitle(number)
		}
		chapters = append(chapters, audiobook.Chapter{Number: number, Start: start, End: end, Title: title})
	}
	return chapters
}
