package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"aaxconv/internal/testsupport"
)

const sampleBookDir = "Fantasy/Jane Writer, Sam Reader/The Sample Book"

func TestConvertChapteredWritesBookAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	env.runner.Chapters = testsupport.ChapterListing(60, "Opening", "Middle", "Ending")
	source := testsupport.WriteSource(t, env.sourceDir, "book.aax")

	out, _, err := runCLI(t, []string{"convert", "--mp3", source}, env.configPath, env.withFakeTools())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "book.aax")
	requireContains(t, out, "done")

	bookDir := filepath.Join(env.targetDir, sampleBookDir)
	entries, err := os.ReadDir(bookDir)
	if err != nil {
		t.Fatalf("read book dir: %v", err)
	}
	var mp3s int
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".mp3" {
			mp3s++
		}
	}
	if mp3s != 3 {
		t.Fatalf("expected 3 chapter files, got %d in %v", mp3s, entries)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "The Sample Book")
	requireContains(t, out, "mp3/chaptered")
	requireContains(t, out, "done")

	out, _, err = runCLI(t, []string{"history", "--chapters", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history --chapters: %v", err)
	}
	requireContains(t, out, "The Sample Book-03 Ending.mp3")
}

func TestConvertMissingFileExitsNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	good := testsupport.WriteSource(t, env.sourceDir, "good.aax")
	missing := filepath.Join(env.sourceDir, "missing.aax")

	out, _, err := runCLI(t, []string{"convert", "--single", missing, good}, env.configPath, env.withFakeTools())
	if !errors.Is(err, errFilesAborted) {
		t.Fatalf("expected errFilesAborted, got %v", err)
	}
	requireContains(t, out, "missing.aax")
	requireContains(t, out, "aborted")
	requireContains(t, out, "good.aax")
	requireContains(t, out, "done")
}

func TestConvertRejectsConflictingFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteSource(t, env.sourceDir, "book.aax")

	cases := [][]string{
		{"convert", "--mp3", "--flac", source},
		{"convert", "--codec", "opus", "--m4b", source},
		{"convert", "--single", "--chaptered", source},
		{"convert", "--codec", "wav", source},
	}
	for _, args := range cases {
		if _, _, err := runCLI(t, args, env.configPath, env.withFakeTools()); err == nil {
			t.Fatalf("expected %v to fail", args)
		}
	}
	if calls := env.runner.Calls(); len(calls) != 0 {
		t.Fatalf("expected no tool calls, got %d", len(calls))
	}
}

func TestConvertFlagsOverrideConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteSource(t, env.sourceDir, "book.aax")
	target := filepath.Join(t.TempDir(), "library")

	args := []string{"convert", "--opus", "-s", "-t", target, "-D", "$artist", "-F", "$title", "--author", "Someone Else", source}
	if _, _, err := runCLI(t, args, env.configPath, env.withFakeTools()); err != nil {
		t.Fatalf("convert: %v", err)
	}

	output := filepath.Join(target, "Someone Else", "The Sample Book.opus")
	tags := testsupport.ReadTags(t, output)
	if tags["codec"] != "libopus" {
		t.Fatalf("expected libopus codec, got %q", tags["codec"])
	}
	if tags["artist"] != "Someone Else" {
		t.Fatalf("expected author override, got %q", tags["artist"])
	}
}

func TestValidateCommandDoesNotTranscode(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteSource(t, env.sourceDir, "book.aax")

	out, _, err := runCLI(t, []string{"validate", source}, env.configPath, env.withFakeTools())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "validated")
	if calls := env.runner.CallsTo("ffmpeg"); len(calls) != 0 {
		t.Fatalf("expected no ffmpeg calls, got %v", calls)
	}
	if _, err := os.Stat(filepath.Join(env.targetDir, sampleBookDir)); !os.IsNotExist(err) {
		t.Fatalf("expected no output directory, stat err = %v", err)
	}
}
