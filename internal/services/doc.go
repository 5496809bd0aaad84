// Package services defines helpers shared by the conversion pipeline and the
// components that wrap external tools.
//
// Key responsibilities:
//   - Context helpers that stamp the source file, pipeline stage, and batch
//     correlation identifier for logging.
//   - Structured error markers plus the Wrap helper so callers can decide
//     whether a failure aborts a file, degrades a feature, or stops the run.
package services
