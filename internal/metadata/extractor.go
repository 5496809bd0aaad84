// Package metadata turns probe output into an audiobook.Metadata record and
// applies the author and title rewrite rules.
//
// parser.go holds the text grammar and is tested against captured tool
// output in testdata/, so drift in ffprobe or mediainfo formatting shows up
// as a failing snapshot rather than silently missing tags.
package metadata

import (
	"context"
	"log/slog"
	"strings"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/logging"
	"aaxconv/internal/services"
	"aaxconv/internal/toolexec"
)

// Reporter returns the ffprobe text banner for a source.
type Reporter interface {
	Report(ctx context.Context, path string, decrypt []string) (string, error)
}

// Extractor reads tags with ffprobe and, when mediainfo is available,
// enriches them with narrator and publisher.
type Extractor struct {
	probe     Reporter
	runner    toolexec.Runner
	mediainfo string
	logger    *slog.Logger
}

// NewExtractor builds an Extractor. An empty mediainfo path disables enrichment.
func NewExtractor(probe Reporter, runner toolexec.Runner, mediainfo string, logger *slog.Logger) *Extractor {
	return &Extractor{
		probe:     probe,
		runner:    runner,
		mediainfo: strings.TrimSpace(mediainfo),
		logger:    logging.NewComponentLogger(logger, "metadata"),
	}
}

// Extract probes src and parses the result. A failing probe is an
// ErrExtraction; mediainfo problems are logged and ignored.
func (e *Extractor) Extract(ctx context.Context, src audiobook.SourceFile, decrypt []string) (audiobook.Metadata, error) {
	report, err := e.probe.Report(ctx, src.Path, decrypt)
	if err != nil {
		return audiobook.Metadata{}, services.Wrap(services.ErrExtraction, "extract_metadata", "ffprobe",
			"could not read tags from source", err)
	}
	md := ParseProbeReport(report)

	if e.mediainfo != "" && e.runner != nil {
		e.enrich(ctx, src, &md)
	}

	e.logger.Debug("metadata extracted",
		logging.String(logging.FieldSource, src.Path),
		logging.String("title", md.Title),
		logging.String("artist", md.Artist),
		logging.String("bitrate_kbps", md.Bitrate),
		logging.String("narrator", md.Narrator),
	)
	return md, nil
}

func (e *Extractor) enrich(ctx context.Context, src audiobook.SourceFile, md *audiobook.Metadata) {
	res, err := e.runner.Run(ctx, e.mediainfo, []string{src.Path})
	if err != nil {
		e.logger.Debug("mediainfo enrichment skipped", logging.Error(err))
		return
	}
	fields := ParseMediaInfo(res.Combined())
	if fields.Narrator != "" {
		md.Narrator = fields.Narrator
	}
	if fields.Publisher != "" {
		md.Publisher = fields.Publisher
	}
}
