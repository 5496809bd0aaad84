package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile fills path with size bytes of a repeating pattern, creating
// parent directories. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("B", int(size))), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSource creates a placeholder source file named name under dir and
// returns its path.
func WriteSource(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	WriteFile(t, path, 64)
	return path
}

// WriteVoucher writes the companion voucher for an .aaxc source.
func WriteVoucher(t testing.TB, aaxcPath, key, iv string) string {
	t.Helper()
	voucher := map[string]any{
		"content_license": map[string]any{
			"license_response": map[string]string{"key": key, "iv": iv},
		},
	}
	data, err := json.Marshal(voucher)
	if err != nil {
		t.Fatalf("marshal voucher: %v", err)
	}
	path := strings.TrimSuffix(aaxcPath, filepath.Ext(aaxcPath)) + ".voucher"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write voucher: %v", err)
	}
	return path
}

// ReadTags parses a file produced by FakeRunner back into its tag map.
func ReadTags(t testing.TB, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	tags := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if key, value, ok := strings.Cut(line, "="); ok {
			tags[key] = value
		}
	}
	return tags
}
