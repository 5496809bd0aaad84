package transcode

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/services"
	"aaxconv/internal/toolexec"
)

type recorder struct {
	binary string
	args   []string
	err    error
}

func (r *recorder) Run(_ context.Context, binary string, args []string) (toolexec.Result, error) {
	r.binary = binary
	r.args = args
	return toolexec.Result{}, r.err
}

func sampleMetadata() audiobook.Metadata {
	md := audiobook.NewMetadata()
	md.Title = "Book"
	md.Artist = "Author"
	md.Narrator = "Reader"
	return md
}

func TestWholeArgs(t *testing.T) {
	p := audiobook.NewProfile(audiobook.CodecMP3, audiobook.ModeSingle, 4)
	got := WholeArgs(p, "in.aax", "out/Book.mp3", []string{"-activation_bytes", "deadbeef"}, sampleMetadata())
	want := []string{
		"-nostats", "-loglevel", "error", "-y",
		"-activation_bytes", "deadbeef",
		"-i", "in.aax",
		"-map", "0:a", "-c:a", "libmp3lame",
		"-q:a", "4",
		"-metadata", "title=Book",
		"-metadata", "artist=Author",
		"-metadata", "composer=Reader",
		"-f", "mp3", "out/Book.mp3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WholeArgs =\n%v\nwant\n%v", got, want)
	}
}

func TestChapterArgs(t *testing.T) {
	p := audiobook.NewProfile(audiobook.CodecOpus, audiobook.ModeChaptered, audiobook.LevelUnset)
	ch := audiobook.Chapter{Number: 3, Start: 18.488, End: 2291.104, Title: "An Unexpected Party"}
	got := strings.Join(ChapterArgs(p, "in.aax", "out.ogg", nil, sampleMetadata(), ch), " ")

	for _, fragment := range []string{
		"-i in.aax -ss 18.488 -to 2291.104 -map 0:a -c:a libopus -metadata",
		"-metadata title=An Unexpected Party",
		"-metadata track=3",
		"-map_chapters -1 -f ogg out.ogg",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %q in %q", fragment, got)
		}
	}
	if strings.Contains(got, "-compression_level") || strings.Contains(got, "title=Book") {
		t.Fatalf("unexpected arguments %q", got)
	}
}

func TestBitrateIsNeverTagged(t *testing.T) {
	p := audiobook.NewProfile(audiobook.CodecM4B, audiobook.ModeSingle, audiobook.LevelUnset)
	got := strings.Join(WholeArgs(p, "in.aax", "out.m4b", nil, sampleMetadata()), " ")
	if strings.Contains(got, "bitrate") || !strings.Contains(got, "-c:a copy") {
		t.Fatalf("unexpected args %q", got)
	}
}

func TestTranscodeFailureIsClassified(t *testing.T) {
	rec := &recorder{err: &toolexec.ExitError{Binary: "ffmpeg", ExitCode: 1}}
	tr := New(rec, "/opt/ffmpeg", audiobook.NewProfile(audiobook.CodecFLAC, audiobook.ModeSingle, 5), nil)
	err := tr.Whole(context.Background(), "in.aax", "out.flac", nil, sampleMetadata())
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected transcode error, got %v", err)
	}
	if rec.binary != "/opt/ffmpeg" {
		t.Fatalf("unexpected binary %q", rec.binary)
	}
	if !strings.Contains(strings.Join(rec.args, " "), "-compression_level 5") {
		t.Fatalf("expected flac level in %v", rec.args)
	}
}
