package config

import (
	"errors"
	"fmt"

	"aaxconv/internal/audiobook"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Paths.TargetDir == "" {
		return errors.New("paths.target_dir must be set")
	}
	if c.Paths.CompleteDir != "" && c.Paths.CompleteDir == c.Paths.TargetDir {
		return errors.New("paths.complete_dir must differ from paths.target_dir")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if _, err := audiobook.ParseCodec(c.Encoding.Codec); err != nil {
		return fmt.Errorf("encoding.codec: %w", err)
	}
	if _, err := audiobook.ParseMode(c.Encoding.Mode); err != nil {
		return fmt.Errorf("encoding.mode: %w", err)
	}
	if c.Encoding.Level < audiobook.LevelUnset {
		return fmt.Errorf("encoding.level must be -1 (encoder default) or a non-negative integer, got %d", c.Encoding.Level)
	}
	return nil
}

func (c *Config) validateMetadata() error {
	if c.Metadata.KeepAuthor < keepAuthorUnset {
		return fmt.Errorf("metadata.keep_author must be -1 (disabled) or a zero-based index, got %d", c.Metadata.KeepAuthor)
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.ContinueAt < 0 {
		return fmt.Errorf("conversion.continue_at must be non-negative, got %d", c.Conversion.ContinueAt)
	}
	if c.Conversion.Resume && !c.History.Enabled {
		return errors.New("conversion.resume requires history.enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.Verbosity < 0 || c.Logging.Verbosity > maxVerbosityLevel {
		return fmt.Errorf("logging.verbosity must be between 0 and %d, got %d", maxVerbosityLevel, c.Logging.Verbosity)
	}
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
