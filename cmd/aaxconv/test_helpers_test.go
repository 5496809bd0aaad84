package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aaxconv/internal/config"
	"aaxconv/internal/deps"
	"aaxconv/internal/testsupport"
	"aaxconv/internal/toolexec"
)

type cliTestEnv struct {
	configPath string
	targetDir  string
	stateDir   string
	sourceDir  string
	runner     *testsupport.FakeRunner
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("AAXCONV_AUTHCODE", "")

	env := &cliTestEnv{
		configPath: filepath.Join(homeDir, ".config", "aaxconv", "config.toml"),
		targetDir:  filepath.Join(base, "out"),
		stateDir:   filepath.Join(base, "state"),
		sourceDir:  filepath.Join(base, "src"),
		runner:     &testsupport.FakeRunner{},
	}
	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(
		"[paths]\ntarget_dir = %q\nstate_dir = %q\n\n[conversion]\nactivation_bytes = %q\n",
		env.targetDir, env.stateDir, "deadbeef",
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// withFakeTools routes every tool call to the env's FakeRunner.
func (e *cliTestEnv) withFakeTools() contextOption {
	return func(c *commandContext) {
		c.newRunner = func(*slog.Logger) toolexec.Runner { return e.runner }
		c.resolveTools = func(config.Tools) (deps.Tools, []deps.Status, error) {
			return deps.Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe", Mediainfo: "mediainfo"}, []deps.Status{
				{Name: "FFmpeg", Command: "ffmpeg", Available: true, Path: "ffmpeg"},
				{Name: "FFprobe", Command: "ffprobe", Available: true, Path: "ffprobe"},
				{Name: "MediaInfo", Command: "mediainfo", Optional: true, Available: true, Path: "mediainfo"},
				{Name: "mp4art", Command: "mp4art", Optional: true, Detail: "binary \"mp4art\" not found"},
				{Name: "mp4chaps", Command: "mp4chaps", Optional: true, Detail: "binary \"mp4chaps\" not found"},
			}, nil
		}
	}
}

func runCLI(t *testing.T, args []string, configPath string, opts ...contextOption) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
