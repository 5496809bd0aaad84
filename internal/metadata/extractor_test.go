package metadata

import (
	"context"
	"errors"
	"testing"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/services"
	"aaxconv/internal/toolexec"
)

type stubReporter struct {
	text    string
	err     error
	decrypt []string
}

func (s *stubReporter) Report(_ context.Context, _ string, decrypt []string) (string, error) {
	s.decrypt = decrypt
	return s.text, s.err
}

type stubRunner struct {
	result toolexec.Result
	err    error
	calls  int
}

func (s *stubRunner) Run(context.Context, string, []string) (toolexec.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestExtractMergesMediaInfo(t *testing.T) {
	reporter := &stubReporter{text: readFixture(t, "ffprobe_aax.txt")}
	runner := &stubRunner{result: toolexec.Result{Stdout: []byte(readFixture(t, "mediainfo.txt"))}}
	e := NewExtractor(reporter, runner, "/usr/bin/mediainfo", nil)

	md, err := e.Extract(context.Background(), audiobook.NewSourceFile("book.aax"), []string{"-activation_bytes", "x"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if md.Title != "The Hobbit" || md.Narrator != "Andy Serkis" || md.Publisher == "" {
		t.Fatalf("unexpected metadata %+v", md)
	}
	if len(reporter.decrypt) != 2 {
		t.Fatalf("expected decrypt params forwarded, got %v", reporter.decrypt)
	}
}

func TestExtractSkipsMediaInfoFailures(t *testing.T) {
	reporter := &stubReporter{text: readFixture(t, "ffprobe_aax.txt")}
	runner := &stubRunner{err: errors.New("boom")}
	md, err := NewExtractor(reporter, runner, "mediainfo", nil).Extract(context.Background(), audiobook.NewSourceFile("book.aax"), nil)
	if err != nil {
		t.Fatalf("mediainfo failure must not fail extraction: %v", err)
	}
	if md.Narrator != "" || runner.calls != 1 {
		t.Fatalf("unexpected result %+v calls=%d", md, runner.calls)
	}
}

func TestExtractWithoutMediaInfo(t *testing.T) {
	runner := &stubRunner{}
	_, err := NewExtractor(&stubReporter{text: "title : X"}, runner, "", nil).Extract(context.Background(), audiobook.NewSourceFile("book.aax"), nil)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if runner.calls != 0 {
		t.Fatal("mediainfo should not run when unavailable")
	}
}

func TestExtractProbeFailure(t *testing.T) {
	reporter := &stubReporter{err: &toolexec.ExitError{Binary: "ffprobe", ExitCode: 1}}
	_, err := NewExtractor(reporter, nil, "", nil).Extract(context.Background(), audiobook.NewSourceFile("book.aax"), nil)
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}
