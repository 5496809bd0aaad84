// Package coverart pulls the embedded artwork out of a source and attaches it
// to finished output files. Every failure here is a warning for the caller;
// a book without a cover is still a finished book.
package coverart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/logging"
	"aaxconv/internal/services"
	"aaxconv/internal/toolexec"
)

// FileName is the name of the extracted artwork inside the output directory.
const FileName = "cover.jpg"

// ErrNoEmbedder is returned for MP4 outputs when mp4art is unavailable.
var ErrNoEmbedder = errors.New("mp4art not available; install mp4v2 utilities to embed covers in mp4 outputs")

// Manager extracts and embeds artwork. An empty mp4art path disables
// embedding into MP4-family outputs.
type Manager struct {
	runner toolexec.Runner
	ffmpeg string
	mp4art string
	logger *slog.Logger
}

// New returns a Manager.
func New(runner toolexec.Runner, ffmpeg, mp4art string, logger *slog.Logger) *Manager {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	return &Manager{
		runner: runner,
		ffmpeg: ffmpeg,
		mp4art: strings.TrimSpace(mp4art),
		logger: logging.NewComponentLogger(logger, "coverart"),
	}
}

// Extract copies the first video stream of source into outputDir/cover.jpg.
// ok is false when ffmpeg fails or produces no file.
func (m *Manager) Extract(ctx context.Context, source string, decrypt []string, outputDir string) (string, bool) {
	dest := filepath.Join(outputDir, FileName)
	args := []string{"-loglevel", "error", "-y"}
	args = append(args, decrypt...)
	args = append(args, "-i", source, "-an", "-vcodec", "copy", dest)

	if _, err := m.runner.Run(ctx, m.ffmpeg, args); err != nil {
		logging.WarnWithContext(m.logger, "cover art not extracted", "cover_extract_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "outputs will have no embedded cover"),
		)
		_ = os.Remove(dest)
		return "", false
	}
	info, err := os.Stat(dest)
	if err != nil || info.Size() == 0 {
		m.logger.Info("source has no cover art")
		return "", false
	}
	return dest, true
}

// Embed attaches cover to audioFile. MP4-family outputs go through mp4art;
// everything else is remuxed by ffmpeg into a hidden temporary file that
// replaces the original on success.
func (m *Manager) Embed(ctx context.Context, audioFile, cover string, profile audiobook.Profile) error {
	if profile.IsMP4() {
		return m.embedMP4(ctx, audioFile, cover)
	}
	return m.embedRemux(ctx, audioFile, cover, profile)
}

func (m *Manager) embedMP4(ctx context.Context, audioFile, cover string) error {
	if m.mp4art == "" {
		return ErrNoEmbedder
	}
	if _, err := m.runner.Run(ctx, m.mp4art, []string{"--add", cover, audioFile}); err != nil {
		return services.Wrap(services.ErrExternalTool, "cover_art", "mp4art", audioFile, err)
	}
	return nil
}

func (m *Manager) embedRemux(ctx context.Context, audioFile, cover string, profile audiobook.Profile) error {
	tmp := TempPath(audioFile)
	args := []string{
		"-loglevel", "error", "-nostats", "-y",
		"-i", audioFile,
		"-i", cover,
		"-map", "0:a:0", "-map", "1:v:0",
		"-c:a", "copy", "-c:v", "copy",
		"-disposition:v:0", "attached_pic",
		"-id3v2_version", "3",
		"-metadata:s:v", "title=Album cover",
		"-metadata:s:v", "comment=Cover (front)",
		"-f", profile.Container,
		tmp,
	}
	if _, err := m.runner.Run(ctx, m.ffmpeg, args); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrExternalTool, "cover_art", "remux", audioFile, err)
	}
	if err := os.Rename(tmp, audioFile); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s with covered copy: %w", audioFile, err)
	}
	return nil
}

// TempPath is the remux target for audioFile: ".cover-<base>.tmp" in the same
// directory so the final rename stays on one filesystem.
func TempPath(audioFile string) string {
	return filepath.Join(filepath.Dir(audioFile), ".cover-"+filepath.Base(audioFile)+".tmp")
}
