package ffprobe

import (
	"context"
	"math"
	"reflect"
	"testing"

	"aaxconv/internal/toolexec"
)

type scriptedRunner struct {
	result toolexec.Result
	err    error
	binary string
	args   []string
}

func (r *scriptedRunner) Run(_ context.Context, binary string, args []string) (toolexec.Result, error) {
	r.binary = binary
	r.args = append([]string(nil), args...)
	return r.result, r.err
}

func TestInspectBuildsArgsAndDecodes(t *testing.T) {
	runner := &scriptedRunner{result: toolexec.Result{Stdout: []byte(`{
		"streams": [{"index": 0, "codec_type": "audio", "codec_name": "aac"}, {"index": 1, "codec_type": "video"}],
		"format": {"duration": "3600.5", "format_name": "mov,mp4,m4a,3gp,3g2,mj2", "tags": {"title": "Book"}}
	}`)}}
	p := New(runner, "/usr/bin/ffprobe")

	result, err := p.Inspect(context.Background(), "book.aax", []string{"-activation_bytes", "abcd"})
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	wantArgs := []string{"-loglevel", "warning", "-hide_banner", "-activation_bytes", "abcd",
		"-show_format", "-show_streams", "-of", "json", "-i", "book.aax"}
	if runner.binary != "/usr/bin/ffprobe" || !reflect.DeepEqual(runner.args, wantArgs) {
		t.Fatalf("unexpected invocation %s %v", runner.binary, runner.args)
	}
	if result.AudioStreamCount() != 1 || !result.HasCoverStream() {
		t.Fatalf("unexpected streams %+v", result.Streams)
	}
	if result.DurationSeconds() != 3600.5 || result.Format.Tags["title"] != "Book" {
		t.Fatalf("unexpected format %+v", result.Format)
	}
}

func TestInspectErrors(t *testing.T) {
	p := New(&scriptedRunner{err: &toolexec.ExitError{Binary: "ffprobe", ExitCode: 1}}, "")
	if _, err := p.Inspect(context.Background(), "book.aax", nil); err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	p = New(&scriptedRunner{result: toolexec.Result{Stdout: []byte("not json")}}, "")
	if _, err := p.Inspect(context.Background(), "book.aax", nil); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := p.Inspect(context.Background(), " ", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestChaptersArgsAndDecode(t *testing.T) {
	runner := &scriptedRunner{result: toolexec.Result{Stdout: []byte(`{"chapters": [
		{"id": 0, "start_time": "0.000000", "end_time": "12.5", "tags": {"title": "Opening Credits"}},
		{"id": 1, "start_time": "12.5", "end_time": "99.0", "tags": {}}
	]}`)}}
	p := New(runner, "ffprobe")

	chapters, err := p.Chapters(context.Background(), "book.aax", []string{"-activation_bytes", "abcd"})
	if err != nil {
		t.Fatalf("Chapters returned error: %v", err)
	}
	wantArgs := []string{"-activation_bytes", "abcd", "-i", "book.aax", "-print_format", "json", "-show_chapters", "-loglevel", "error"}
	if !reflect.DeepEqual(runner.args, wantArgs) {
		t.Fatalf("unexpected args %v", runner.args)
	}
	if len(chapters) != 2 || chapters[0].Tags.Title != "Opening Credits" || chapters[1].EndTime != "99.0" {
		t.Fatalf("unexpected chapters %+v", chapters)
	}
}

func TestReportReturnsCombinedOutput(t *testing.T) {
	runner := &scriptedRunner{result: toolexec.Result{Stdout: []byte("a"), Stderr: []byte("title : Book")}}
	out, err := New(runner, "ffprobe").Report(context.Background(), "book.aax", []string{"-activation_bytes", "x"})
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if out != "a\ntitle : Book" {
		t.Fatalf("unexpected report %q", out)
	}
	if !reflect.DeepEqual(runner.args, []string{"-activation_bytes", "x", "-i", "book.aax"}) {
		t.Fatalf("unexpected args %v", runner.args)
	}
}

func TestParseSeconds(t *testing.T) {
	if ParseSeconds("") != 0 || ParseSeconds(" 1.5 ") != 1.5 {
		t.Fatal("unexpected parse result")
	}
	if !math.IsNaN(ParseSeconds("abc")) {
		t.Fatal("expected NaN for garbage")
	}
	if (Result{Format: Format{Duration: "N/A"}}).DurationSeconds() != 0 {
		t.Fatal("expected 0 duration for unparsable value")
	}
}
