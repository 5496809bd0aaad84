package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aaxconv/internal/logging"
	"aaxconv/internal/services"
)

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
	if !strings.HasPrefix(buf.String(), "INFO message without caller") {
		t.Fatalf("expected compact line without timestamp, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller")

	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger := logging.NewComponentLogger(base, "splitter")

	logger.Info("chapter written", logging.Int(logging.FieldChapter, 3), logging.String("path", "My Book/ch 3.mp3"))

	line := buf.String()
	for _, fragment := range []string{"INFO splitter: chapter written", "chapter=3", `path="My Book/ch 3.mp3"`} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as a prefix, got %q", line)
	}
}

func TestJSONLoggerWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "aaxconv.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("converted", logging.String(logging.FieldSource, "book.aax"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, data)
	}
	if entry["msg"] != "converted" || entry["level"] != "info" || entry["source"] != "book.aax" {
		t.Fatalf("unexpected json entry: %#v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", entry)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestOptionsForVerbosity(t *testing.T) {
	cases := []struct {
		verbosity  int
		level      string
		timestamps bool
	}{
		{0, "warn", false},
		{1, "info", false},
		{2, "info", true},
		{3, "debug", true},
		{9, "debug", true},
	}
	for _, tc := range cases {
		opts := logging.OptionsForVerbosity(tc.verbosity, "console", "")
		if opts.Level != tc.level || opts.Timestamps != tc.timestamps {
			t.Fatalf("verbosity %d: got level=%s timestamps=%v", tc.verbosity, opts.Level, opts.Timestamps)
		}
	}
	opts := logging.OptionsForVerbosity(1, "json", "/tmp/a.log")
	if len(opts.OutputPaths) != 2 || opts.OutputPaths[1] != "/tmp/a.log" {
		t.Fatalf("expected log file appended, got %v", opts.OutputPaths)
	}
}

func TestQuietLevelDropsInfo(t *testing.T) {
	var buf bytes.Buffer
	opts := logging.OptionsForVerbosity(0, "console", "")
	opts.Writer = &buf
	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "WARN shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithSource(context.Background(), "book.aax")
	ctx = services.WithStage(ctx, "validate")
	ctx = services.WithRequestID(ctx, "abc")

	logging.WithContext(ctx, base).Info("probing")

	for _, fragment := range []string{"source=book.aax", "stage=validate", "correlation_id=abc"} {
		if !strings.Contains(buf.String(), fragment) {
			t.Fatalf("expected %q in %q", fragment, buf.String())
		}
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(base, "cover embed failed", "cover_embed_failed", logging.String(logging.FieldImpact, "output has no artwork"))

	line := buf.String()
	if !strings.Contains(line, "event_type=cover_embed_failed") || !strings.Contains(line, "error_hint=") {
		t.Fatalf("expected defaults in %q", line)
	}
	if !strings.Contains(line, `impact="output has no artwork"`) {
		t.Fatalf("expected caller-supplied impact to win, got %q", line)
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("ignored")
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
}
