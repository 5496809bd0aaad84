package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxSegmentLength is the longest path segment SanitizeSegment will return, in characters.
const MaxSegmentLength = 255

// segmentReplacer maps characters that are unsafe in a path segment to underscores.
var segmentReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

var initialsSpacing = regexp.MustCompile(`(^|[^\pL])(\pL)\.\s+(\pL\.)`)

// SanitizeSegment makes a single path segment safe for the filesystem. Unsafe
// characters become underscores, leading and trailing spaces and dots are
// removed, and the result is capped at MaxSegmentLength characters. It must
// never be applied to a multi-segment path.
func SanitizeSegment(segment string) string {
	segment = norm.NFC.String(segment)
	segment = segmentReplacer.Replace(segment)
	segment = strings.Trim(segment, " .")
	segment = Truncate(segment, MaxSegmentLength)
	// Truncation can expose a trailing space or dot.
	return strings.TrimRight(segment, " .")
}

// Truncate returns at most limit characters of value.
func Truncate(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}

// CollapseInitials removes the spacing between consecutive initials, turning
// "C. S. Lewis" into "C.S. Lewis". The space before the surname is kept.
func CollapseInitials(value string) string {
	for {
		next := initialsSpacing.ReplaceAllString(value, "${1}${2}.${3}")
		if next == value {
			return value
		}
		value = next
	}
}
