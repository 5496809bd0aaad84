package metadata

import (
	"regexp"
	"strings"

	"aaxconv/internal/audiobook"
)

// Grammar for the ffprobe banner: one "key : value" pair per line, the key
// at the start of the line after indentation, matched case-insensitively.
// The first occurrence of a key wins, so the container tag block takes
// precedence over the per-chapter and per-stream blocks printed after it.
// The value is the rest of the line, trimmed. The bitrate comes from the
// "Duration: ..., bitrate: N kb/s" line.
var (
	tagLinePattern = regexp.MustCompile(`(?im)^[ \t]*(title|artist|album_artist|album|date|genre|copyright)[ \t]*:[ \t]*(.*?)[ \t\r]*$`)
	bitratePattern = regexp.MustCompile(`(?i)bitrate:\s*(\d+)\s*kb/s`)

	narratorPattern  = regexp.MustCompile(`(?im)^[ \t]*narrator[ \t]*:[ \t]*(.*?)[ \t\r]*$`)
	publisherPattern = regexp.MustCompile(`(?im)^[ \t]*publisher[ \t]*:[ \t]*(.*?)[ \t\r]*$`)
)

// ParseProbeReport extracts the tag fields and bitrate from ffprobe's text
// banner. Absent keys stay empty; an absent bitrate keeps the default.
func ParseProbeReport(text string) audiobook.Metadata {
	md := audiobook.NewMetadata()
	seen := make(map[string]bool, 7)
	for _, match := range tagLinePattern.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(match[1])
		if seen[key] {
			continue
		}
		seen[key] = true
		value := strings.TrimSpace(match[2])
		switch key {
		case "title":
			md.Title = value
		case "artist":
			md.Artist = value
		case "album_artist":
			md.AlbumArtist = value
		case "album":
			md.Album = value
		case "date":
			md.Date = value
		case "genre":
			md.Genre = value
		case "copyright":
			md.Copyright = value
		}
	}
	if m := bitratePattern.FindStringSubmatch(text); m != nil {
		md.Bitrate = m[1]
	}
	return md
}

// MediaInfoFields holds the enrichment mediainfo can supply.
type MediaInfoFields struct {
	Narrator  string
	Publisher string
}

// ParseMediaInfo extracts the Narrator and Publisher lines from mediainfo's
// default text report.
func ParseMediaInfo(text string) MediaInfoFields {
	var fields MediaInfoFields
	if m := narratorPattern.FindStringSubmatch(text); m != nil {
		fields.Narrator = strings.TrimSpace(m[1])
	}
	if m := publisherPattern.FindStringSubmatch(text); m != nil {
		fields.Publisher = strings.TrimSpace(m[1])
	}
	return fields
}
