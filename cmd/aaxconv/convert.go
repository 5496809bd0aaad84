package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"aaxconv/internal/config"
	"aaxconv/internal/history"
	"aaxconv/internal/logging"
	"aaxconv/internal/pipeline"
	"aaxconv/internal/progress"
	"aaxconv/internal/services"
)

// errFilesAborted is returned after the summary when any file aborted; the
// table already explains why, so main only sets the exit status.
var errFilesAborted = errors.New("one or more files failed to convert")

var codecFlags = []string{"flac", "opus", "aac", "m4a", "m4b", "mp3"}

type convertFlags struct {
	codec     string
	shortcuts map[string]*bool
	single    bool
	chaptered bool
	level     int

	targetDir     string
	completeDir   string
	dirScheme     string
	fileScheme    string
	chapterScheme string
	noClobber     bool

	authcode   string
	author     string
	keepAuthor int

	validate     bool
	deepValidate bool
	loglevel     int
	debug        bool

	continueAt int
	resume     bool

	ffmpegPath  string
	ffmpegName  string
	ffprobeName string
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	flags := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert AAX/AAXC files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, flags, args)
		},
	}
	bindConvertFlags(cmd, flags)
	return cmd
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	flags := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that files decrypt and carry audio without converting them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.validate = true
			return runConvert(cmd, ctx, flags, args)
		},
	}
	bindConvertFlags(cmd, flags)
	return cmd
}

func bindConvertFlags(cmd *cobra.Command, f *convertFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.codec, "codec", "", "Output codec (mp3, opus, flac, aac, m4a, m4b)")
	f.shortcuts = make(map[string]*bool, len(codecFlags))
	for _, name := range codecFlags {
		f.shortcuts[name] = fs.Bool(name, false, fmt.Sprintf("Shorthand for --codec %s", name))
	}
	fs.BoolVarP(&f.single, "single", "s", false, "Write the whole book to one file")
	fs.BoolVarP(&f.chaptered, "chaptered", "c", false, "Write one file per chapter plus a playlist")
	fs.IntVar(&f.level, "level", -1, "Encoder quality or compression level (-1 keeps the default)")

	fs.StringVarP(&f.targetDir, "target-dir", "t", "", "Directory converted books are written under")
	fs.StringVarP(&f.completeDir, "complete-dir", "C", "", "Move finished sources into this directory")
	fs.StringVarP(&f.dirScheme, "dir-naming-scheme", "D", "", "Output directory template")
	fs.StringVarP(&f.fileScheme, "file-naming-scheme", "F", "", "Output file template")
	fs.StringVar(&f.chapterScheme, "chapter-naming-scheme", "", "Chapter file template")
	fs.BoolVarP(&f.noClobber, "no-clobber", "n", false, "Skip books whose output directory exists")

	fs.StringVarP(&f.authcode, "authcode", "A", "", "Activation bytes for AAX files")
	fs.StringVar(&f.author, "author", "", "Replace the artist and album artist tags")
	fs.IntVar(&f.keepAuthor, "keep-author", -1, "Keep only the Nth (0-based) comma-separated author")

	fs.BoolVarP(&f.validate, "validate", "V", false, "Validate inputs without converting")
	fs.BoolVar(&f.deepValidate, "deep-validate", false, "Decode the full audio stream while validating")
	fs.IntVarP(&f.loglevel, "loglevel", "l", 1, "Verbosity 0-3")
	fs.BoolVarP(&f.debug, "debug", "d", false, "Shorthand for --loglevel 3")

	fs.IntVar(&f.continueAt, "continue", 0, "Start chaptered output at chapter N")
	fs.BoolVar(&f.resume, "resume", false, "Resume after the last chapter recorded in history")

	fs.StringVar(&f.ffmpegPath, "ffmpeg-path", "", "Directory containing ffmpeg and ffprobe")
	fs.StringVar(&f.ffmpegName, "ffmpeg-name", "", "ffmpeg executable name")
	fs.StringVar(&f.ffprobeName, "ffprobe-name", "", "ffprobe executable name")

	cmd.MarkFlagsMutuallyExclusive(append([]string{"codec"}, codecFlags...)...)
	cmd.MarkFlagsMutuallyExclusive("single", "chaptered")
	cmd.MarkFlagsMutuallyExclusive("loglevel", "debug")
}

// apply overlays explicitly set flags onto cfg and re-validates it.
func (f *convertFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("codec") {
		cfg.Encoding.Codec = f.codec
	}
	for _, name := range codecFlags {
		if *f.shortcuts[name] {
			cfg.Encoding.Codec = name
		}
	}
	if f.single {
		cfg.Encoding.Mode = "single"
	}
	if f.chaptered {
		cfg.Encoding.Mode = "chaptered"
	}
	if changed("level") {
		cfg.Encoding.Level = f.level
	}

	if changed("target-dir") {
		cfg.Paths.TargetDir = f.targetDir
	}
	if changed("complete-dir") {
		cfg.Paths.CompleteDir = f.completeDir
	}
	if changed("dir-naming-scheme") {
		cfg.Naming.Directory = f.dirScheme
	}
	if changed("file-naming-scheme") {
		cfg.Naming.File = f.fileScheme
	}
	if changed("chapter-naming-scheme") {
		cfg.Naming.Chapter = f.chapterScheme
	}
	if changed("no-clobber") {
		cfg.Conversion.NoClobber = f.noClobber
	}

	if changed("authcode") {
		cfg.Conversion.ActivationBytes = f.authcode
	}
	if changed("author") {
		cfg.Metadata.Author = f.author
	}
	if changed("keep-author") {
		cfg.Metadata.KeepAuthor = f.keepAuthor
	}

	if f.validate {
		cfg.Conversion.ValidateOnly = true
	}
	if changed("deep-validate") {
		cfg.Conversion.DeepValidate = f.deepValidate
	}
	if changed("loglevel") {
		cfg.Logging.Verbosity = f.loglevel
	}
	if f.debug {
		cfg.Logging.Verbosity = logging.VerbosityDebug
	}

	if changed("continue") {
		cfg.Conversion.ContinueAt = f.continueAt
	}
	if changed("resume") {
		cfg.Conversion.Resume = f.resume
	}

	if changed("ffmpeg-path") {
		cfg.Tools.SearchPath = f.ffmpegPath
	}
	if changed("ffmpeg-name") {
		cfg.Tools.FFmpeg = f.ffmpegName
	}
	if changed("ffprobe-name") {
		cfg.Tools.FFprobe = f.ffprobeName
	}

	if err := cfg.Normalize(); err != nil {
		return err
	}
	return cfg.Validate()
}

func runConvert(cmd *cobra.Command, cmdCtx *commandContext, flags *convertFlags, args []string) error {
	cfg, err := cmdCtx.configCopy()
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	lock, err := acquireLock(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	tools, statuses, err := cmdCtx.resolveTools(cfg.Tools)
	if err != nil {
		return err
	}
	for _, status := range statuses {
		if status.Optional && !status.Available {
			logger.Warn("optional tool unavailable",
				logging.String("tool", status.Name),
				logging.String("detail", status.Detail),
				logging.String(logging.FieldEventType, "tool_missing"),
				logging.String(logging.FieldImpact, status.Description+" is disabled"),
			)
		}
	}

	var recorder pipeline.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		switch {
		case err == nil:
			defer store.Close()
			recorder = store
		case cfg.Conversion.Resume:
			return fmt.Errorf("--resume needs the history ledger: %w", err)
		default:
			logging.WarnWithContext(logger, "history ledger unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not be recorded"),
			)
		}
	}

	runID := uuid.NewString()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = services.WithRequestID(ctx, runID)
	logger = logger.With(logging.String(logging.FieldCorrelationID, runID))

	converter := pipeline.New(pipeline.Options{
		Config:   cfg,
		Tools:    tools,
		Runner:   cmdCtx.newRunner(logger),
		Recorder: recorder,
		Progress: progress.ForVerbosity(cfg.Logging.Verbosity, cmd.ErrOrStderr(), logger),
		Logger:   logger,
		RunID:    runID,
	})
	results := converter.Run(ctx, args)

	printSummary(cmd.OutOrStdout(), results)

	if errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	if pipeline.AnyAborted(results) {
		return errFilesAborted
	}
	return nil
}

func printSummary(out io.Writer, results []pipeline.Result) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			filepath.Base(r.Source),
			string(r.Outcome),
			r.OutputDir,
			r.Reason(),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Outcome", "Output", "Reason"}, rows, nil))
}
