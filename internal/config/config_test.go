package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("AAXCONV_AUTHCODE", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "aaxconv", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	cwd, _ := os.Getwd()
	if cfg.Paths.TargetDir != cwd {
		t.Fatalf("expected target dir to default to cwd, got %q", cfg.Paths.TargetDir)
	}
	if cfg.Paths.StateDir != filepath.Join(home, ".local", "state", "aaxconv") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.History.Path != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.History.Path)
	}
	if cfg.Encoding.Level != audiobook.LevelUnset || cfg.Metadata.KeepAuthor != -1 {
		t.Fatalf("expected unset sentinels, got level=%d keep=%d", cfg.Encoding.Level, cfg.Metadata.KeepAuthor)
	}
	profile := cfg.Profile()
	if profile.Codec != audiobook.CodecMP3 || profile.Mode != audiobook.ModeChaptered {
		t.Fatalf("unexpected default profile %+v", profile)
	}
	if cfg.LockPath() != filepath.Join(cfg.Paths.StateDir, "aaxconv.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestLoadFromFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(t.TempDir(), "aaxconv.toml")
	content := `
[paths]
target_dir = "~/out"
complete_dir = "~/done"

[encoding]
codec = "FLAC"
mode = "chaptered"
level = 8

[naming]
directory = "$artist/$title"

[metadata]
keep_author = 0

[logging]
verbosity = 2
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.TargetDir != filepath.Join(home, "out") || cfg.Paths.CompleteDir != filepath.Join(home, "done") {
		t.Fatalf("unexpected paths %+v", cfg.Paths)
	}
	profile := cfg.Profile()
	if profile.Codec != audiobook.CodecFLAC || profile.Mode != audiobook.ModeSingle || profile.Level != 8 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if cfg.Naming.Directory != "$artist/$title" || cfg.Metadata.KeepAuthor != 0 {
		t.Fatalf("unexpected naming/metadata %+v %+v", cfg.Naming, cfg.Metadata)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Verbosity != 2 {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "aaxconv.toml")
	if err := os.WriteFile(path, []byte("[encoding]\nbitrate = 64\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestActivationBytesFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("AAXCONV_AUTHCODE", " cafebabe ")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Conversion.ActivationBytes != "cafebabe" {
		t.Fatalf("expected env activation bytes, got %q", cfg.Conversion.ActivationBytes)
	}
}

func TestActivationBytesFromDotEnv(t *testing.T) {
	isolate(t)
	os.Unsetenv("AAXCONV_AUTHCODE")
	if err := os.WriteFile(".env", []byte("AAXCONV_AUTHCODE=deadbeef\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("AAXCONV_AUTHCODE") })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Conversion.ActivationBytes != "deadbeef" {
		t.Fatalf("expected .env activation bytes, got %q", cfg.Conversion.ActivationBytes)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	isolate(t)
	cases := map[string]func(*config.Config){
		"codec":       func(c *config.Config) { c.Encoding.Codec = "wav" },
		"mode":        func(c *config.Config) { c.Encoding.Mode = "both" },
		"level":       func(c *config.Config) { c.Encoding.Level = -2 },
		"keep author": func(c *config.Config) { c.Metadata.KeepAuthor = -5 },
		"continue":    func(c *config.Config) { c.Conversion.ContinueAt = -1 },
		"verbosity":   func(c *config.Config) { c.Logging.Verbosity = 4 },
		"format":      func(c *config.Config) { c.Logging.Format = "xml" },
		"resume":      func(c *config.Config) { c.Conversion.Resume = true; c.History.Enabled = false },
		"complete": func(c *config.Config) {
			c.Paths.CompleteDir = c.Paths.TargetDir
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			if err := cfg.Normalize(); err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists || cfg.Encoding.Codec != "mp3" {
		t.Fatalf("unexpected sample config %+v", cfg.Encoding)
	}
}

func TestEncodeMasksActivationBytes(t *testing.T) {
	cfg := config.Default()
	cfg.Conversion.ActivationBytes = "deadbeef"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if strings.Contains(string(data), "deadbeef") {
		t.Fatalf("activation bytes leaked: %s", data)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("encoded config is not valid TOML: %v", err)
	}
	if cfg.Conversion.ActivationBytes != "deadbeef" {
		t.Fatal("Encode must not mutate the receiver")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TargetDir = filepath.Join(base, "out")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.TargetDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s", dir)
		}
	}
}
