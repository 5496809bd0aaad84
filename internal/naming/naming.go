// Package naming renders output directories and file names from templates and
// an audiobook metadata record.
//
// Templates use literal tokens: $genre, $artist, $title, $chapter and
// $chapternum. Unknown tokens are left as written. Every rendered path
// segment is sanitized on its own so separators in a directory template are
// preserved.
package naming

import (
	"strconv"
	"strings"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/textutil"
)

const (
	DefaultDirectoryTemplate = "$genre/$artist/$title"
	DefaultFileTemplate      = "$title"
	DefaultChapterTemplate   = "$title-$chapternum $chapter"

	unknownSegment = "Unknown"
)

// Templates holds the three user-overridable templates. Empty fields fall back
// to the defaults.
type Templates struct {
	Directory string
	File      string
	Chapter   string
}

// Engine renders names for one configured set of templates.
type Engine struct {
	templates Templates
}

// NewEngine returns an Engine with defaults filled in.
func NewEngine(t Templates) *Engine {
	if strings.TrimSpace(t.Directory) == "" {
		t.Directory = DefaultDirectoryTemplate
	}
	if strings.TrimSpace(t.File) == "" {
		t.File = DefaultFileTemplate
	}
	if strings.TrimSpace(t.Chapter) == "" {
		t.Chapter = DefaultChapterTemplate
	}
	return &Engine{templates: t}
}

// ChapterInfo carries the per-chapter values for $chapter and $chapternum.
type ChapterInfo struct {
	Title  string
	Number int
	Total  int
}

// Directory renders the directory template into a relative path. The
// template is split on "/" before substitution, so a slash inside a metadata
// value is sanitized rather than creating an extra level. Empty segments are
// dropped.
func (e *Engine) Directory(md audiobook.Metadata) string {
	var segments []string
	for _, part := range strings.Split(e.templates.Directory, "/") {
		if seg := textutil.SanitizeSegment(render(part, md, nil)); seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return unknownSegment
	}
	return strings.Join(segments, "/")
}

// File renders the single-mode file name without extension.
func (e *Engine) File(md audiobook.Metadata) string {
	return segment(render(e.templates.File, md, nil))
}

// Chapter renders a chapter file name without extension.
func (e *Engine) Chapter(md audiobook.Metadata, ch ChapterInfo) string {
	return segment(render(e.templates.Chapter, md, &ch))
}

// Playlist renders the playlist file name for a chaptered book.
func (e *Engine) Playlist(md audiobook.Metadata) string {
	name := textutil.SanitizeSegment(md.Title)
	if name == "" {
		name = "audiobook"
	}
	return name + ".m3u"
}

// PadChapterNumber zero-pads n to the number of decimal digits in total.
func PadChapterNumber(n, total int) string {
	width := len(strconv.Itoa(total))
	num := strconv.Itoa(n)
	if len(num) >= width {
		return num
	}
	return strings.Repeat("0", width-len(num)) + num
}

func render(template string, md audiobook.Metadata, ch *ChapterInfo) string {
	// $chapternum precedes $chapter so the longer token is replaced first.
	pairs := make([]string, 0, 10)
	if ch != nil {
		pairs = append(pairs,
			"$chapternum", PadChapterNumber(ch.Number, ch.Total),
			"$chapter", ch.Title,
		)
	}
	pairs = append(pairs,
		"$genre", md.Genre,
		"$artist", md.Artist,
		"$title", md.Title,
	)
	return strings.NewReplacer(pairs...).Replace(template)
}

func segment(rendered string) string {
	if seg := textutil.SanitizeSegment(rendered); seg != "" {
		return seg
	}
	return unknownSegment
}
