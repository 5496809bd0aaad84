package audiobook

import (
	"path/filepath"
	"strings"
)

// Kind identifies the encrypted container variant.
type Kind int

const (
	// KindAAX is unlocked with the account activation bytes.
	KindAAX Kind = iota
	// KindAAXC is unlocked with a key/IV pair from a voucher file.
	KindAAXC
)

func (k Kind) String() string {
	if k == KindAAXC {
		return "aaxc"
	}
	return "aax"
}

// SourceFile is one input container. It is never mutated after NewSourceFile.
type SourceFile struct {
	Path        string
	Kind        Kind
	VoucherPath string
}

// NewSourceFile classifies path by extension. AAXC sources get the voucher
// path that sits next to them with the same stem.
func NewSourceFile(path string) SourceFile {
	src := SourceFile{Path: path, Kind: KindAAX}
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".aaxc") {
		src.Kind = KindAAXC
		src.VoucherPath = strings.TrimSuffix(path, ext) + ".voucher"
	}
	return src
}

// Base returns the file name without directories.
func (s SourceFile) Base() string {
	return filepath.Base(s.Path)
}
