package chapters

import (
	"bufio"
	"fmt"
	"os"
)

// Playlist is an extended M3U file written incrementally, one entry per
// successfully produced chapter.
type Playlist struct {
	path string
	file *os.File
	w    *bufio.Writer
}

// CreatePlaylist truncates path and writes the #EXTM3U header.
func CreatePlaylist(path string) (*Playlist, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	p := &Playlist{path: path, file: file, w: bufio.NewWriter(file)}
	if _, err := p.w.WriteString("#EXTM3U\n"); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write playlist header: %w", err)
	}
	if err := p.w.Flush(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write playlist header: %w", err)
	}
	return p, nil
}

// Path returns the playlist location.
func (p *Playlist) Path() string { return p.path }

// Add appends one entry. The duration is truncated to whole seconds.
func (p *Playlist) Add(bookTitle, chapterTitle string, seconds float64, file string) error {
	if _, err := fmt.Fprintf(p.w, "#EXTINF:%d,%s - %s\n%s\n", int(seconds), bookTitle, chapterTitle, file); err != nil {
		return fmt.Errorf("write playlist entry: %w", err)
	}
	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("write playlist entry: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (p *Playlist) Close() error {
	if err := p.w.Flush(); err != nil {
		_ = p.file.Close()
		return err
	}
	return p.file.Close()
}
