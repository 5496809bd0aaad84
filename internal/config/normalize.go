package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize expands paths, trims strings, and fills blanks with defaults. The
// CLI calls it again after overlaying flags.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeEncoding()
	c.normalizeNaming()
	c.normalizeConversion()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeHistory()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TargetDir) == "" {
		c.Paths.TargetDir = defaultTargetDir
	}
	if c.Paths.TargetDir, err = expandPath(strings.TrimSpace(c.Paths.TargetDir)); err != nil {
		return fmt.Errorf("paths.target_dir: %w", err)
	}
	if c.Paths.CompleteDir, err = expandPath(strings.TrimSpace(c.Paths.CompleteDir)); err != nil {
		return fmt.Errorf("paths.complete_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDirFromEnv()
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func defaultStateDirFromEnv() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "aaxconv")
	}
	return defaultStateDir
}

func (c *Config) normalizeTools() {
	c.Tools.SearchPath = strings.TrimSpace(c.Tools.SearchPath)
	c.Tools.FFmpeg = valueOrDefault(c.Tools.FFmpeg, defaultFFmpeg)
	c.Tools.FFprobe = valueOrDefault(c.Tools.FFprobe, defaultFFprobe)
	c.Tools.Mediainfo = valueOrDefault(c.Tools.Mediainfo, defaultMediainfo)
	c.Tools.MP4Art = valueOrDefault(c.Tools.MP4Art, defaultMP4Art)
	c.Tools.MP4Chaps = valueOrDefault(c.Tools.MP4Chaps, defaultMP4Chaps)
}

func (c *Config) normalizeEncoding() {
	c.Encoding.Codec = strings.ToLower(valueOrDefault(c.Encoding.Codec, defaultCodec))
	c.Encoding.Mode = strings.ToLower(valueOrDefault(c.Encoding.Mode, defaultMode))
}

func (c *Config) normalizeNaming() {
	c.Naming.Directory = strings.TrimSpace(c.Naming.Directory)
	c.Naming.File = strings.TrimSpace(c.Naming.File)
	c.Naming.Chapter = strings.TrimSpace(c.Naming.Chapter)
}

func (c *Config) normalizeConversion() {
	c.Conversion.ActivationBytes = strings.TrimSpace(c.Conversion.ActivationBytes)
	if c.Conversion.ActivationBytes == "" {
		if value, ok := os.LookupEnv(authcodeEnv); ok {
			c.Conversion.ActivationBytes = strings.TrimSpace(value)
		}
	}
	c.Metadata.Author = strings.TrimSpace(c.Metadata.Author)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(valueOrDefault(c.Logging.Format, defaultLogFormat))
	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = ""
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, historyFileName)
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
