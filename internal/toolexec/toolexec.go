// Package toolexec runs the external media tools as blocking subprocesses.
//
// Every component that shells out to ffmpeg, ffprobe, mediainfo, mp4art, or
// mp4chaps takes a Runner so tests can substitute a recorder. Commands run
// one at a time to completion; the only way to stop one early is cancelling
// the context, which kills the child process.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"aaxconv/internal/logging"
)

// Result captures the output of one finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Combined returns stdout followed by stderr. ffprobe prints its stream
// report on stderr, so parsers read both.
func (r Result) Combined() string {
	if len(r.Stderr) == 0 {
		return string(r.Stdout)
	}
	if len(r.Stdout) == 0 {
		return string(r.Stderr)
	}
	return string(r.Stdout) + "\n" + string(r.Stderr)
}

// Runner executes one command and waits for it to exit. A nonzero exit is
// reported as an *ExitError alongside the captured Result.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (Result, error)
}

// ExitError reports a command that ran but exited nonzero.
type ExitError struct {
	Binary   string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Binary, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// IsExitError reports whether err came from a command that started and exited nonzero.
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// CommandRunner is the os/exec backed Runner.
type CommandRunner struct {
	logger *slog.Logger
}

// NewCommandRunner returns a Runner that logs each invocation at debug level.
func NewCommandRunner(logger *slog.Logger) *CommandRunner {
	return &CommandRunner{logger: logging.NewComponentLogger(logger, "toolexec")}
}

func (r *CommandRunner) Run(ctx context.Context, binary string, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	r.logger.Debug("command finished",
		logging.String("binary", binary),
		logging.String("args", RedactArgs(args)),
		logging.Duration("elapsed", time.Since(started)),
	)

	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s: %w", binary, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{Binary: binary, ExitCode: result.ExitCode, Stderr: tail(stderr.String(), 5)}
	}
	return result, fmt.Errorf("run %s: %w", binary, err)
}

// secretFlags take a value that must never reach a log.
var secretFlags = map[string]struct{}{
	"-activation_bytes": {},
	"-audible_key":      {},
	"-audible_iv":       {},
}

// RedactArgs joins args for logging with the value after each decrypt flag
// masked.
func RedactArgs(args []string) string {
	out := make([]string, len(args))
	for i, token := range args {
		if i > 0 {
			if _, secret := secretFlags[args[i-1]]; secret {
				out[i] = "***"
				continue
			}
		}
		out[i] = token
	}
	return strings.Join(out, " ")
}

// tail keeps the last n non-empty lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append(kept, line)
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "; ")
}
