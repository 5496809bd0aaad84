// Package logging assembles the structured slog loggers used across aaxconv.
//
// It owns the console and JSON handlers, maps the four CLI verbosity tiers to
// levels once at startup, and exposes context-aware helpers so pipeline code
// can tag log lines with the source file, stage, and batch correlation ID. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
