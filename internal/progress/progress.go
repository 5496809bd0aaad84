// Package progress reports chapter-split progress either as a single
// overwriting terminal line or as log records.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"aaxconv/internal/logging"
)

// BarWidth is the number of cells in the rendered bar.
const BarWidth = 20

// Reporter receives split progress. done counts chapters handled so far
// out of total.
type Reporter interface {
	Start(total int)
	Advance(done int, label string)
	Finish()
}

// Bar redraws one line on w using carriage returns.
type Bar struct {
	w        io.Writer
	colorize bool
	total    int
	drawn    bool
}

// NewBar returns a Bar writing to w.
func NewBar(w io.Writer, colorize bool) *Bar {
	return &Bar{w: w, colorize: colorize}
}

func (b *Bar) Start(total int) {
	b.total = total
	b.drawn = false
	b.draw(0)
}

func (b *Bar) Advance(done int, _ string) {
	b.draw(done)
}

func (b *Bar) Finish() {
	if b.drawn {
		fmt.Fprintln(b.w)
		b.drawn = false
	}
}

func (b *Bar) draw(done int) {
	if b.total <= 0 {
		return
	}
	fmt.Fprint(b.w, "\r"+Render(done, b.total, b.colorize))
	b.drawn = true
}

// Render formats one bar line, e.g. "process: |########            |  40% (4/10)".
func Render(done, total int, colorize bool) string {
	if total <= 0 {
		total = 1
	}
	done = max(0, min(done, total))
	filled := done * BarWidth / total
	percent := done * 100 / total
	cells := strings.Repeat("#", filled)
	if colorize && filled > 0 {
		cells = text.FgGreen.Sprint(cells)
	}
	cells += strings.Repeat(" ", BarWidth-filled)
	return fmt.Sprintf("process: |%s| %3d%% (%d/%d)", cells, percent, done, total)
}

// Log reports each step as an info record.
type Log struct {
	logger *slog.Logger
	total  int
}

// NewLog returns a Reporter that logs through logger.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logging.NewComponentLogger(logger, "progress")}
}

func (l *Log) Start(total int) { l.total = total }

func (l *Log) Advance(done int, label string) {
	l.logger.Info("chapter processed",
		logging.Int("done", done),
		logging.Int("total", l.total),
		logging.String(logging.FieldChapter, label),
	)
}

func (l *Log) Finish() {}

// Nop discards progress.
type Nop struct{}

func (Nop) Start(int) {}
func (Nop) Advance(int, string) {}
func (Nop) Finish() {}

// ForVerbosity picks the bar for quiet and default verbosity and log lines
// above that. The bar is coloured only when out is a terminal.
func ForVerbosity(verbosity int, out io.Writer, logger *slog.Logger) Reporter {
	if verbosity > logging.VerbosityDefault {
		return NewLog(logger)
	}
	return NewBar(out, IsTerminal(out))
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
