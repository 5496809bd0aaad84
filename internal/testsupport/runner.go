package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"aaxconv/internal/toolexec"
)

// SampleReport is an ffprobe banner with a full tag block.
const SampleReport = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'book.aax':
  Metadata:
    title           : The Sample Book
    artist          : Jane Writer, Sam Reader
    album_artist    : Jane Writer
    album           : The Sample Book
    date            : 2020
    genre           : Fantasy
    copyright       : (c)2020 Sample House
  Duration: 00:10:00.00, start: 0.000000, bitrate: 64 kb/s
`

// SampleMediaInfo carries the narrator and publisher lines.
const SampleMediaInfo = `General
Narrator                                 : Sam Reader
Publisher                                : Sample House
`

const defaultStreams = `{"streams":[{"index":0,"codec_type":"audio","codec_name":"aac"},{"index":1,"codec_type":"video","codec_name":"mjpeg"}],"format":{"duration":"600.0"}}`

// Call is one recorded invocation.
type Call struct {
	Binary string
	Args   []string
}

// Joined returns the argv as one space-separated string.
func (c Call) Joined() string {
	return strings.Join(c.Args, " ")
}

// FakeRunner is a toolexec.Runner that answers like the real tools without
// running them. ffmpeg outputs are fabricated as text files holding one
// "key=value" line per -metadata pair, which ReadTags parses back.
type FakeRunner struct {
	// Report is the ffprobe banner; SampleReport when empty.
	Report string
	// Streams is the -show_streams JSON; one audio plus one cover stream when empty.
	Streams string
	// Chapters is the -show_chapters JSON; no chapters when empty.
	Chapters string
	// MediaInfo is the mediainfo output; SampleMediaInfo when empty.
	MediaInfo string
	// NoCover makes cover extraction produce nothing.
	NoCover bool
	// Fail, when set, can fail any call before it is answered.
	Fail func(binary string, args []string) error

	mu    sync.Mutex
	calls []Call
}

// Run implements toolexec.Runner.
func (f *FakeRunner) Run(ctx context.Context, binary string, args []string) (toolexec.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Binary: binary, Args: slices.Clone(args)})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return toolexec.Result{}, err
	}
	if f.Fail != nil {
		if err := f.Fail(binary, args); err != nil {
			return toolexec.Result{ExitCode: 1}, err
		}
	}

	switch tool := filepath.Base(binary); {
	case strings.Contains(tool, "ffprobe"):
		return f.probe(args), nil
	case strings.Contains(tool, "ffmpeg"):
		return toolexec.Result{}, f.ffmpeg(args)
	case strings.Contains(tool, "mediainfo"):
		return toolexec.Result{Stdout: []byte(valueOr(f.MediaInfo, SampleMediaInfo))}, nil
	default:
		return toolexec.Result{}, nil
	}
}

// Calls returns every recorded invocation.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsTo returns invocations whose binary base name contains name.
func (f *FakeRunner) CallsTo(name string) []Call {
	var out []Call
	for _, call := range f.Calls() {
		if strings.Contains(filepath.Base(call.Binary), name) {
			out = append(out, call)
		}
	}
	return out
}

func (f *FakeRunner) probe(args []string) toolexec.Result {
	switch {
	case slices.Contains(args, "-show_chapters"):
		return toolexec.Result{Stdout: []byte(valueOr(f.Chapters, `{"chapters":[]}`))}
	case slices.Contains(args, "-show_streams"):
		return toolexec.Result{Stdout: []byte(valueOr(f.Streams, defaultStreams))}
	default:
		return toolexec.Result{Stderr: []byte(valueOr(f.Report, SampleReport))}
	}
}

func (f *FakeRunner) ffmpeg(args []string) error {
	dest := args[len(args)-1]
	switch {
	case dest == "-":
		return nil
	case slices.Contains(args, "-vcodec"):
		if f.NoCover {
			return nil
		}
		return os.WriteFile(dest, []byte("jpeg"), 0o644)
	case slices.Contains(args, "attached_pic"):
		input := args[slices.Index(args, "-i")+1]
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, append(data, []byte("cover=attached\n")...), 0o644)
	}

	var b strings.Builder
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-metadata" {
			b.WriteString(args[i+1])
			b.WriteByte('\n')
		}
	}
	if i := slices.Index(args, "-c:a"); i >= 0 {
		fmt.Fprintf(&b, "codec=%s\n", args[i+1])
	}
	return os.WriteFile(dest, []byte(b.String()), 0o644)
}

// ChapterListing builds -show_chapters JSON with one entry of seconds
// length per title. An empty title leaves the entry untitled.
func ChapterListing(seconds float64, titles ...string) string {
	type tags struct {
		Title string `json:"title,omitempty"`
	}
	type entry struct {
		ID        int    `json:"id"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Tags      tags   `json:"tags"`
	}
	entries := make([]entry, len(titles))
	for i, title := range titles {
		entries[i] = entry{
			ID:        i,
			StartTime: fmt.Sprintf("%.6f", float64(i)*seconds),
			EndTime:   fmt.Sprintf("%.6f", float64(i+1)*seconds),
			Tags:      tags{Title: title},
		}
	}
	data, _ := json.Marshal(map[string]any{"chapters": entries})
	return string(data)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
