// Package config loads, normalizes, and validates aaxconv configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, loads optional .env files, and honours the AAXCONV_AUTHCODE
// environment fallback for the activation bytes. CLI flags are layered on top
// by the command package after Load returns.
//
// The resolved codec choice is exposed as an immutable audiobook.Profile so
// the rest of the pipeline never re-parses codec names.
package config
