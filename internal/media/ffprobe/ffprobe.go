package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"aaxconv/internal/toolexec"
)

// Result represents the parsed stream and format report.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	Duration   string            `json:"duration"`
	BitRate    string            `json:"bit_rate"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// ChapterEntry is one element of the -show_chapters listing. Times are kept
// as strings so callers decide how to treat unparsable values.
type ChapterEntry struct {
	ID        int64  `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Tags      struct {
		Title string `json:"title"`
	} `json:"tags"`
}

type chapterListing struct {
	Chapters []ChapterEntry `json:"chapters"`
}

// Prober runs ffprobe through a toolexec.Runner. Decrypt tokens are placed
// before -i on every call.
type Prober struct {
	runner toolexec.Runner
	binary string
}

// New returns a Prober for the given binary path.
func New(runner toolexec.Runner, binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{runner: runner, binary: binary}
}

// Inspect decodes the stream and format report for path. ffprobe must exit
// zero, which also proves the decrypt tokens were accepted.
func (p *Prober) Inspect(ctx context.Context, path string, decrypt []string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	args := []string{"-loglevel", "warning", "-hide_banner"}
	args = append(args, decrypt...)
	args = append(args, "-show_format", "-show_streams", "-of", "json", "-i", path)

	res, err := p.runner.Run(ctx, p.binary, args)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	var result Result
	if err := json.Unmarshal(res.Stdout, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Report returns the plain-text banner ffprobe prints for path. The banner
// carries the tag block and the bitrate line.
func (p *Prober) Report(ctx context.Context, path string, decrypt []string) (string, error) {
	args := append(append([]string(nil), decrypt...), "-i", path)
	res, err := p.runner.Run(ctx, p.binary, args)
	if err != nil {
		return "", fmt.Errorf("ffprobe report: %w", err)
	}
	return res.Combined(), nil
}

// Chapters returns the raw chapter listing for path.
func (p *Prober) Chapters(ctx context.Context, path string, decrypt []string) ([]ChapterEntry, error) {
	args := append([]string(nil), decrypt...)
	args = append(args, "-i", path, "-print_format", "json", "-show_chapters", "-loglevel", "error")
	res, err := p.runner.Run(ctx, p.binary, args)
	if err != nil {
		return nil, fmt.Errorf("ffprobe chapters: %w", err)
	}
	var listing chapterListing
	if err := json.Unmarshal(res.Stdout, &listing); err != nil {
		return nil, fmt.Errorf("ffprobe chapters parse: %w", err)
	}
	return listing.Chapters, nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// HasCoverStream reports whether a video stream (embedded artwork) is present.
func (r Result) HasCoverStream() bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return true
		}
	}
	return false
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	d := ParseSeconds(r.Format.Duration)
	if math.IsNaN(d) {
		return 0
	}
	return d
}

// ParseSeconds parses an ffprobe time value. Blank input is 0; anything else
// unparsable is NaN.
func ParseSeconds(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
