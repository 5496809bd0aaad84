package audiobook

import (
	"fmt"
	"strconv"
	"strings"
)

// Codec is the closed set of output choices.
type Codec int

const (
	CodecMP3 Codec = iota
	CodecFLAC
	CodecOpus
	CodecAAC
	CodecM4A
	CodecM4B
)

// Mode selects one output file per book or one per chapter.
type Mode int

const (
	ModeChaptered Mode = iota
	ModeSingle
)

// LevelUnset leaves the encoder at its default quality.
const LevelUnset = -1

type codecSpec struct {
	name        string
	ffmpegCodec string
	extension   string
	container   string
	forceSingle bool
}

var codecSpecs = map[Codec]codecSpec{
	CodecMP3:  {name: "mp3", ffmpegCodec: "libmp3lame", extension: "mp3", container: "mp3"},
	CodecFLAC: {name: "flac", ffmpegCodec: "flac", extension: "flac", container: "flac", forceSingle: true},
	CodecOpus: {name: "opus", ffmpegCodec: "libopus", extension: "opus", container: "ogg"},
	CodecAAC:  {name: "aac", ffmpegCodec: "copy", extension: "m4a", container: "mp4", forceSingle: true},
	CodecM4A:  {name: "m4a", ffmpegCodec: "copy", extension: "m4a", container: "mp4", forceSingle: true},
	CodecM4B:  {name: "m4b", ffmpegCodec: "copy", extension: "m4b", container: "mp4", forceSingle: true},
}

// CodecNames lists the accepted codec names in display order.
func CodecNames() []string {
	return []string{"mp3", "flac", "opus", "aac", "m4a", "m4b"}
}

func (c Codec) String() string {
	if spec, ok := codecSpecs[c]; ok {
		return spec.name
	}
	return "codec(" + strconv.Itoa(int(c)) + ")"
}

// ParseCodec maps a codec name onto the closed variant.
func ParseCodec(name string) (Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return CodecMP3, nil
	}
	for codec, spec := range codecSpecs {
		if spec.name == key {
			return codec, nil
		}
	}
	return CodecMP3, fmt.Errorf("unknown codec %q (expected one of %s)", name, strings.Join(CodecNames(), ", "))
}

func (m Mode) String() string {
	if m == ModeSingle {
		return "single"
	}
	return "chaptered"
}

// ParseMode maps a mode name onto Mode. Empty selects chaptered.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "chaptered":
		return ModeChaptered, nil
	case "single":
		return ModeSingle, nil
	default:
		return ModeChaptered, fmt.Errorf("unknown mode %q (expected single or chaptered)", name)
	}
}

// Profile is the immutable encoding decision made once at startup.
type Profile struct {
	Codec       Codec
	FFmpegCodec string
	Extension   string
	Container   string
	Mode        Mode
	Level       int
}

// NewProfile resolves codec, requested mode, and level into a Profile. Codecs
// that cannot be split cleanly force single mode.
func NewProfile(codec Codec, mode Mode, level int) Profile {
	spec, ok := codecSpecs[codec]
	if !ok {
		codec = CodecMP3
		spec = codecSpecs[CodecMP3]
	}
	if spec.forceSingle {
		mode = ModeSingle
	}
	if level < LevelUnset {
		level = LevelUnset
	}
	return Profile{
		Codec:       codec,
		FFmpegCodec: spec.ffmpegCodec,
		Extension:   spec.extension,
		Container:   spec.container,
		Mode:        mode,
		Level:       level,
	}
}

// IsMP4 reports whether the output uses the MP4 container family.
func (p Profile) IsMP4() bool {
	return p.Container == "mp4"
}

// IsPassthrough reports whether audio is copied without re-encoding.
func (p Profile) IsPassthrough() bool {
	return p.FFmpegCodec == "copy"
}

// QualityArgs returns the codec-specific quality flag, or nil when no level
// was configured, the audio is copied, or the codec has no quality knob.
func (p Profile) QualityArgs() []string {
	if p.Level == LevelUnset || p.IsPassthrough() {
		return nil
	}
	value := strconv.Itoa(p.Level)
	switch p.FFmpegCodec {
	case "libmp3lame":
		return []string{"-q:a", value}
	case "flac", "libopus":
		return []string{"-compression_level", value}
	default:
		return nil
	}
}
