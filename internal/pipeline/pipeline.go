// Package pipeline drives each source file through the conversion state
// machine:
//
//	derive_params → validate → extract_metadata → apply_overrides →
//	plan_output → chapter_mode | single_mode → embed_chapter_table? →
//	cleanup → move_source? → done
//
// A file ends in exactly one of done, skipped, validated, or aborted. Errors
// never cross file boundaries: Run converts every input and reports one
// Result per file.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/chapters"
	"aaxconv/internal/config"
	"aaxconv/internal/coverart"
	"aaxconv/internal/decrypt"
	"aaxconv/internal/deps"
	"aaxconv/internal/history"
	"aaxconv/internal/logging"
	"aaxconv/internal/media/ffprobe"
	"aaxconv/internal/metadata"
	"aaxconv/internal/naming"
	"aaxconv/internal/progress"
	"aaxconv/internal/services"
	"aaxconv/internal/toolexec"
	"aaxconv/internal/transcode"
)

// Recorder persists conversion progress. *history.Store implements it.
type Recorder interface {
	Begin(ctx context.Context, c history.Conversion) (int64, error)
	Plan(ctx context.Context, id int64, title, outputDir string, chapters int) error
	RecordChapter(ctx context.Context, r history.ChapterResult) error
	Finish(ctx context.Context, id int64, c history.Completion) error
	ResumePoint(ctx context.Context, source, outputDir string) (int, error)
}

// Options wires a Converter. Recorder and Progress are optional.
type Options struct {
	Config   *config.Config
	Tools    deps.Tools
	Runner   toolexec.Runner
	Recorder Recorder
	Progress progress.Reporter
	Logger   *slog.Logger
	RunID    string
}

// Converter runs the state machine. Its collaborators are built once and
// shared read-only across files.
type Converter struct {
	cfg      *config.Config
	profile  audiobook.Profile
	tools    deps.Tools
	runner   toolexec.Runner
	recorder Recorder
	runID    string
	logger   *slog.Logger

	prober     *ffprobe.Prober
	metadata   *metadata.Extractor
	chapters   *chapters.Extractor
	names      *naming.Engine
	transcoder *transcode.Transcoder
	cover      *coverart.Manager
	splitter   *chapters.Splitter
}

// New builds a Converter from opts.
func New(opts Options) *Converter {
	logger := logging.NewComponentLogger(opts.Logger, "pipeline")
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	profile := opts.Config.Profile()
	prober := ffprobe.New(opts.Runner, opts.Tools.FFprobe)
	names := naming.NewEngine(naming.Templates{
		Directory: opts.Config.Naming.Directory,
		File:      opts.Config.Naming.File,
		Chapter:   opts.Config.Naming.Chapter,
	})
	transcoder := transcode.New(opts.Runner, opts.Tools.FFmpeg, profile, opts.Logger)
	cover := coverart.New(opts.Runner, opts.Tools.FFmpeg, opts.Tools.MP4Art, opts.Logger)

	return &Converter{
		cfg:        opts.Config,
		profile:    profile,
		tools:      opts.Tools,
		runner:     opts.Runner,
		recorder:   opts.Recorder,
		runID:      runID,
		logger:     logger,
		prober:     prober,
		metadata:   metadata.NewExtractor(prober, opts.Runner, opts.Tools.Mediainfo, opts.Logger),
		chapters:   chapters.NewExtractor(prober, opts.Logger),
		names:      names,
		transcoder: transcoder,
		cover:      cover,
		splitter:   chapters.NewSplitter(transcoder, cover, names, opts.Progress, opts.Logger),
	}
}

// Profile returns the resolved output profile.
func (c *Converter) Profile() audiobook.Profile { return c.profile }

// job carries the state of one file through the machine.
type job struct {
	src      audiobook.SourceFile
	ledgerID string
	decrypt  decrypt.Params
	md       audiobook.Metadata
	chapters []audiobook.Chapter

	outputDir  string
	output     string
	resumeFrom int
	hasCover   bool
	coverFile  string
	tempFile   string

	historyID int64
	logger    *slog.Logger
	result    Result
}

// Run converts paths sequentially and returns one Result per path. Once ctx
// is cancelled the remaining files are reported as aborted without being
// touched.
func (c *Converter) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Source: path, State: StateDeriveParams, Outcome: OutcomeAborted, Err: err})
			continue
		}
		results = append(results, c.Convert(ctx, path))
	}
	return results
}

// Convert drives one file to a terminal state.
func (c *Converter) Convert(ctx context.Context, path string) Result {
	started := time.Now()
	ctx = services.WithSource(ctx, path)
	j := &job{
		src:      audiobook.NewSourceFile(path),
		ledgerID: ledgerKey(path),
		logger:   logging.WithContext(ctx, c.logger),
		result:   Result{Source: path},
	}
	defer c.cleanup(j)

	c.begin(ctx, j)
	j.logger.Info("conversion started",
		logging.String(logging.FieldEventType, "conversion_start"),
		logging.String("codec", c.profile.Codec.String()),
		logging.String("mode", c.profile.Mode.String()),
	)

	state := StateDeriveParams
	for !state.Terminal() {
		j.result.State = state
		stageCtx := services.WithStage(ctx, state.String())
		j.logger.Debug("state entered", logging.String(logging.FieldStage, state.String()))

		next, err := c.step(stageCtx, j, state)
		if err != nil {
			j.result.Err = err
			state = StateAborted
			break
		}
		state = next
	}
	if state == StateSkipped || state == StateValidated || state == StateDone {
		j.result.State = state
	}
	j.result.Outcome = outcomeFor(state)
	j.result.Elapsed = time.Since(started)
	c.finish(ctx, j)
	c.logResult(j)
	return j.result
}

func (c *Converter) step(ctx context.Context, j *job, state State) (State, error) {
	switch state {
	case StateDeriveParams:
		return c.deriveParams(j)
	case StateValidate:
		return c.validate(ctx, j)
	case StateExtractMetadata:
		return c.extractMetadata(ctx, j)
	case StateApplyOverrides:
		return c.applyOverrides(j)
	case StatePlanOutput:
		return c.planOutput(ctx, j)
	case StateChapterMode:
		return c.chapterMode(ctx, j)
	case StateSingleMode:
		return c.singleMode(ctx, j)
	case StateEmbedChapterTable:
		return c.embedChapterTable(ctx, j)
	case StateCleanup:
		c.cleanup(j)
		if c.cfg.Paths.CompleteDir != "" {
			return StateMoveSource, nil
		}
		return StateDone, nil
	case StateMoveSource:
		c.moveSource(j)
		return StateDone, nil
	default:
		return StateAborted, services.Wrap(services.ErrConfiguration, state.String(), "dispatch", "no handler for state", nil)
	}
}

func (c *Converter) logResult(j *job) {
	r := j.result
	attrs := []logging.Attr{
		logging.String("outcome", string(r.Outcome)),
		logging.String(logging.FieldStage, r.State.String()),
		logging.Duration("elapsed", r.Elapsed),
	}
	if r.OutputDir != "" {
		attrs = append(attrs, logging.String("output_dir", r.OutputDir))
	}
	switch r.Outcome {
	case OutcomeAborted:
		logging.ErrorWithContext(j.logger, "conversion aborted", "conversion_aborted",
			append(attrs, logging.Error(r.Err))...)
	case OutcomeSkipped:
		j.logger.Info("conversion skipped", logging.Args(append(attrs, logging.String("reason", r.Reason()))...)...)
	default:
		j.logger.Info("conversion finished", logging.Args(append(attrs,
			logging.Int("outputs", len(r.Outputs)),
			logging.Int("chapters_failed", r.ChaptersFailed))...)...)
	}
}

func ledgerKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
