package metadata

import (
	"strings"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/textutil"
)

// KeepAuthorDisabled turns the keep-author rule off.
const KeepAuthorDisabled = -1

// Overrides are the user's author rewrite rules.
type Overrides struct {
	// Author replaces artist and album artist when non-empty.
	Author string
	// KeepAuthor selects one comma-separated entry of the artist field.
	KeepAuthor int
}

// ApplyOverrides returns md with the author rules and the title cap applied.
// An explicit Author wins over KeepAuthor. An out-of-range KeepAuthor index
// leaves both author fields unchanged.
func ApplyOverrides(md audiobook.Metadata, o Overrides) audiobook.Metadata {
	if author := strings.TrimSpace(o.Author); author != "" {
		md.Artist = author
		md.AlbumArtist = author
	} else if o.KeepAuthor >= 0 {
		parts := strings.Split(md.Artist, ",")
		if o.KeepAuthor < len(parts) {
			if author := textutil.CollapseInitials(strings.TrimSpace(parts[o.KeepAuthor])); author != "" {
				md.Artist = author
				md.AlbumArtist = author
			}
		}
	}
	md.Title = textutil.Truncate(md.Title, audiobook.MaxTitleLength)
	return md
}
