// Package textutil provides the text helpers used when turning audiobook
// metadata into paths and tags: per-segment filename sanitization, rune-aware
// truncation, and author initials normalization.
package textutil
