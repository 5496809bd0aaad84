package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Verbosity tiers accepted by the CLI.
const (
	VerbosityQuiet   = 0
	VerbosityDefault = 1
	VerbosityVerbose = 2
	VerbosityDebug   = 3
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	// Timestamps prefixes console lines with the local time.
	Timestamps bool
	// Writer overrides the "stderr" output; used by tests.
	Writer io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputWriter, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}), opts.Writer)
	if err != nil {
		return nil, err
	}

	addSource := level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(outputWriter, levelVar, addSource)
	case "console":
		handler = newConsoleHandler(outputWriter, levelVar, addSource, opts.Timestamps)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return slog.New(handler), nil
}

// OptionsForVerbosity maps a CLI verbosity tier onto logger options. Tier 0
// only surfaces warnings so the progress line stays readable.
func OptionsForVerbosity(verbosity int, format, file string) Options {
	opts := Options{Format: format, OutputPaths: []string{"stderr"}}
	switch {
	case verbosity <= VerbosityQuiet:
		opts.Level = "warn"
	case verbosity == VerbosityDefault:
		opts.Level = "info"
	case verbosity == VerbosityVerbose:
		opts.Level = "info"
		opts.Timestamps = true
	default:
		opts.Level = "debug"
		opts.Timestamps = true
	}
	if file = strings.TrimSpace(file); file != "" {
		opts.OutputPaths = append(opts.OutputPaths, file)
	}
	return opts
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

func openWriters(paths []string, stderr io.Writer) (io.Writer, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	seen := map[string]struct{}{}
	var writers []io.Writer
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, stderr)
		default:
			if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("ensure log directory: %w", err)
				}
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
