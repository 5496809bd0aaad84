package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"aaxconv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config rooted in a per-test temp directory:
// target in <base>/out, state in <base>/state, and a throwaway activation code.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TargetDir = filepath.Join(base, "out")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Conversion.ActivationBytes = "deadbeef"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	return builder.cfg
}

// WithCodec sets the output codec and split mode.
func WithCodec(codec, mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoding.Codec = codec
		b.cfg.Encoding.Mode = mode
	}
}

// WithNoClobber enables skipping existing output directories.
func WithNoClobber() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.NoClobber = true
	}
}

// WithCompleteDir sets the directory finished sources are moved into.
func WithCompleteDir(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.CompleteDir = filepath.Join(b.baseDir, name)
	}
}

// WithHistoryDisabled turns the conversion ledger off.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithConfig applies an arbitrary mutation.
func WithConfig(fn func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		fn(b.cfg)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.TargetDir)
}
