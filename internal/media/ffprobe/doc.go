// Package ffprobe provides a typed wrapper around the ffprobe invocations the
// converter needs: the JSON stream report used for validation, the plain-text
// banner scraped for tags, and the JSON chapter listing.
//
// All calls go through a toolexec.Runner and accept the decrypt tokens for
// the source, so the same helpers work for plain and encrypted inputs.
package ffprobe
