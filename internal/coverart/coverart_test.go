package coverart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/toolexec"
)

// fileRunner records calls and writes the last argument as the output file.
type fileRunner struct {
	calls   [][]string
	content []byte
	err     error
}

func (f *fileRunner) Run(_ context.Context, binary string, args []string) (toolexec.Result, error) {
	f.calls = append(f.calls, append([]string{binary}, args...))
	if f.err != nil {
		return toolexec.Result{}, f.err
	}
	if f.content != nil {
		if err := os.WriteFile(args[len(args)-1], f.content, 0o644); err != nil {
			return toolexec.Result{}, err
		}
	}
	return toolexec.Result{}, nil
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	runner := &fileRunner{content: []byte("jpeg")}
	path, ok := New(runner, "ffmpeg", "", nil).Extract(context.Background(), "in.aax", []string{"-activation_bytes", "x"}, dir)
	if !ok || path != filepath.Join(dir, FileName) {
		t.Fatalf("unexpected result %q %v", path, ok)
	}
	got := strings.Join(runner.calls[0], " ")
	if got != "ffmpeg -loglevel error -y -activation_bytes x -i in.aax -an -vcodec copy "+path {
		t.Fatalf("unexpected command %q", got)
	}
}

func TestExtractWithoutArtwork(t *testing.T) {
	dir := t.TempDir()
	if _, ok := New(&fileRunner{}, "", "", nil).Extract(context.Background(), "in.aax", nil, dir); ok {
		t.Fatal("expected no cover when ffmpeg writes nothing")
	}
	runner := &fileRunner{err: &toolexec.ExitError{Binary: "ffmpeg", ExitCode: 1}}
	if _, ok := New(runner, "", "", nil).Extract(context.Background(), "in.aax", nil, dir); ok {
		t.Fatal("expected no cover when ffmpeg fails")
	}
}

func TestEmbedMP4UsesMP4Art(t *testing.T) {
	runner := &fileRunner{}
	m4b := audiobook.NewProfile(audiobook.CodecM4B, audiobook.ModeSingle, audiobook.LevelUnset)
	if err := New(runner, "ffmpeg", "/usr/bin/mp4art", nil).Embed(context.Background(), "book.m4b", "cover.jpg", m4b); err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if got := strings.Join(runner.calls[0], " "); got != "/usr/bin/mp4art --add cover.jpg book.m4b" {
		t.Fatalf("unexpected command %q", got)
	}

	err := New(runner, "ffmpeg", "", nil).Embed(context.Background(), "book.m4b", "cover.jpg", m4b)
	if !errors.Is(err, ErrNoEmbedder) {
		t.Fatalf("expected ErrNoEmbedder, got %v", err)
	}
}

func TestEmbedRemuxReplacesOriginal(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "book.mp3")
	if err := os.WriteFile(audio, []byte("plain"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &fileRunner{content: []byte("covered")}
	mp3 := audiobook.NewProfile(audiobook.CodecMP3, audiobook.ModeSingle, audiobook.LevelUnset)
	if err := New(runner, "ffmpeg", "", nil).Embed(context.Background(), audio, "cover.jpg", mp3); err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	data, _ := os.ReadFile(audio)
	if string(data) != "covered" {
		t.Fatalf("expected remuxed content, got %q", data)
	}
	if _, err := os.Stat(TempPath(audio)); !os.IsNotExist(err) {
		t.Fatalf("temporary file should be gone, stat err=%v", err)
	}
	if !strings.Contains(strings.Join(runner.calls[0], " "), "-disposition:v:0 attached_pic -id3v2_version 3") {
		t.Fatalf("unexpected remux command %v", runner.calls[0])
	}
}

func TestEmbedRemuxFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "book.ogg")
	if err := os.WriteFile(audio, []byte("plain"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &fileRunner{err: errors.New("boom")}
	opus := audiobook.NewProfile(audiobook.CodecOpus, audiobook.ModeSingle, audiobook.LevelUnset)
	if err := New(runner, "ffmpeg", "", nil).Embed(context.Background(), audio, "cover.jpg", opus); err == nil {
		t.Fatal("expected error")
	}
	data, _ := os.ReadFile(audio)
	if string(data) != "plain" {
		t.Fatalf("original must be untouched, got %q", data)
	}
}
