package config

import "aaxconv/internal/audiobook"

const (
	defaultTargetDir  = "."
	defaultStateDir   = "~/.local/state/aaxconv"
	defaultCodec      = "mp3"
	defaultMode       = "chaptered"
	defaultLogFormat  = "console"
	defaultVerbosity  = 1
	defaultFFmpeg     = "ffmpeg"
	defaultFFprobe    = "ffprobe"
	defaultMediainfo  = "mediainfo"
	defaultMP4Art     = "mp4art"
	defaultMP4Chaps   = "mp4chaps"
	historyFileName   = "history.db"
	lockFileName      = "aaxconv.lock"
	authcodeEnv       = "AAXCONV_AUTHCODE"
	keepAuthorUnset   = -1
	maxVerbosityLevel = 3
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TargetDir: defaultTargetDir,
			StateDir:  defaultStateDir,
		},
		Tools: Tools{
			FFmpeg:    defaultFFmpeg,
			FFprobe:   defaultFFprobe,
			Mediainfo: defaultMediainfo,
			MP4Art:    defaultMP4Art,
			MP4Chaps:  defaultMP4Chaps,
		},
		Encoding: Encoding{
			Codec: defaultCodec,
			Mode:  defaultMode,
			Level: audiobook.LevelUnset,
		},
		Metadata: Metadata{
			KeepAuthor: keepAuthorUnset,
		},
		Logging: Logging{
			Verbosity: defaultVerbosity,
			Format:    defaultLogFormat,
		},
		History: History{
			Enabled: true,
		},
	}
}
