package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"aaxconv/internal/audiobook"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state directories.
type Paths struct {
	TargetDir   string `toml:"target_dir"`
	CompleteDir string `toml:"complete_dir"`
	StateDir    string `toml:"state_dir"`
}

// Tools names the external binaries. SearchPath, when set, is joined with the
// ffmpeg and ffprobe names instead of consulting PATH.
type Tools struct {
	SearchPath string `toml:"search_path"`
	FFmpeg     string `toml:"ffmpeg"`
	FFprobe    string `toml:"ffprobe"`
	Mediainfo  string `toml:"mediainfo"`
	MP4Art     string `toml:"mp4art"`
	MP4Chaps   string `toml:"mp4chaps"`
}

// Encoding selects the output codec, split mode, and quality level.
type Encoding struct {
	Codec string `toml:"codec"`
	Mode  string `toml:"mode"`
	// Level is -1 to keep the encoder default.
	Level int `toml:"level"`
}

// Naming holds the directory, file, and chapter templates.
type Naming struct {
	Directory string `toml:"directory"`
	File      string `toml:"file"`
	Chapter   string `toml:"chapter"`
}

// Metadata holds the author rewrite rules.
type Metadata struct {
	Author     string `toml:"author"`
	KeepAuthor int    `toml:"keep_author"`
}

// Conversion holds per-run behaviour switches.
type Conversion struct {
	NoClobber       bool   `toml:"no_clobber"`
	ValidateOnly    bool   `toml:"validate_only"`
	DeepValidate    bool   `toml:"deep_validate"`
	ActivationBytes string `toml:"activation_bytes"`
	ContinueAt      int    `toml:"continue_at"`
	Resume          bool   `toml:"resume"`
}

// Logging contains configuration for log output.
type Logging struct {
	Verbosity int    `toml:"verbosity"`
	Format    string `toml:"format"`
	File      string `toml:"file"`
}

// History controls the conversion ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for aaxconv.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Tools      Tools      `toml:"tools"`
	Encoding   Encoding   `toml:"encoding"`
	Naming     Naming     `toml:"naming"`
	Metadata   Metadata   `toml:"metadata"`
	Conversion Conversion `toml:"conversion"`
	Logging    Logging    `toml:"logging"`
	History    History    `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/aaxconv/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("aaxconv.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the target and state directories. The complete
// directory is created lazily when the first source is moved.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TargetDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Profile returns the resolved codec profile. Call only after Validate.
func (c *Config) Profile() audiobook.Profile {
	codec, _ := audiobook.ParseCodec(c.Encoding.Codec)
	mode, _ := audiobook.ParseMode(c.Encoding.Mode)
	return audiobook.NewProfile(codec, mode, c.Encoding.Level)
}

// LockPath is the single-instance lock file for convert runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, lockFileName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML with the activation
// bytes masked.
func (c *Config) Encode() ([]byte, error) {
	clone := *c
	if clone.Conversion.ActivationBytes != "" {
		clone.Conversion.ActivationBytes = "********"
	}
	data, err := toml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
