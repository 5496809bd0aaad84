package audiobook

// DefaultBitrate is used when the probe output carries no bitrate line.
const DefaultBitrate = "64"

// MaxTitleLength caps the title before it is used for naming and tagging.
const MaxTitleLength = 128

// Metadata is the tag record extracted from a source. Missing fields are empty
// strings except Bitrate.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Date        string
	Genre       string
	Copyright   string
	Bitrate     string
	Narrator    string
	Publisher   string
}

// NewMetadata returns a record with defaults applied.
func NewMetadata() Metadata {
	return Metadata{Bitrate: DefaultBitrate}
}

// Tag is one ffmpeg -metadata key/value pair.
type Tag struct {
	Key   string
	Value string
}

// Tags lists the non-empty fields in the order they are written to output
// files. Narrator is written as composer, matching how players show it.
// Bitrate is informational and never tagged.
func (m Metadata) Tags() []Tag {
	candidates := []Tag{
		{"title", m.Title},
		{"artist", m.Artist},
		{"album", m.Album},
		{"album_artist", m.AlbumArtist},
		{"date", m.Date},
		{"genre", m.Genre},
		{"copyright", m.Copyright},
		{"composer", m.Narrator},
		{"publisher", m.Publisher},
	}
	tags := make([]Tag, 0, len(candidates))
	for _, tag := range candidates {
		if tag.Value != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
