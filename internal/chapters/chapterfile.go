package chapters

import (
	"fmt"
	"math"
	"os"
	"strings"

	"aaxconv/internal/audiobook"
)

// FormatTimestamp renders seconds as HH:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// RenderChapterFile builds the mp4chaps import format:
//
//	CHAPTER01=00:00:00.000
//	CHAPTER01NAME=Opening Credits
func RenderChapterFile(chapters []audiobook.Chapter) string {
	var b strings.Builder
	for _, ch := range chapters {
		fmt.Fprintf(&b, "CHAPTER%02d=%s\n", ch.Number, FormatTimestamp(ch.Start))
		fmt.Fprintf(&b, "CHAPTER%02dNAME=%s\n", ch.Number, ch.Title)
	}
	return b.String()
}

// WriteChapterFile writes the chapter table next to an output file.
func WriteChapterFile(path string, chapters []audiobook.Chapter) error {
	if err := os.WriteFile(path, []byte(RenderChapterFile(chapters)), 0o644); err != nil {
		return fmt.Errorf("write chapter file: %w", err)
	}
	return nil
}
