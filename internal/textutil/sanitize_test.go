package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "The Hobbit", "The Hobbit"},
		{"unsafe characters", `a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"trims spaces and dots", "  ..Title..  ", "Title"},
		{"only dots", "...", ""},
		{"keeps inner dots", "Vol. 2. The End", "Vol. 2. The End"},
		{"nfc", "Café", "Café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeSegment(tt.in); got != tt.want {
				t.Errorf("SanitizeSegment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeSegmentProperties(t *testing.T) {
	inputs := []string{
		strings.Repeat("a?", 400),
		" " + strings.Repeat("é", 300) + ". ",
		`<>:"/\|?*`,
		strings.Repeat("x", 254) + " .y",
	}
	for _, in := range inputs {
		got := SanitizeSegment(in)
		if strings.ContainsAny(got, `<>:"/\|?*`) {
			t.Fatalf("unsafe character survived in %q", got)
		}
		if n := utf8.RuneCountInString(got); n > MaxSegmentLength {
			t.Fatalf("segment too long: %d", n)
		}
		if got != "" && (strings.HasPrefix(got, " ") || strings.HasPrefix(got, ".") ||
			strings.HasSuffix(got, " ") || strings.HasSuffix(got, ".")) {
			t.Fatalf("segment has leading/trailing space or dot: %q", got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("Truncate = %q", got)
	}
}

func TestCollapseInitials(t *testing.T) {
	tests := map[string]string{
		"C. S. Lewis":      "C.S. Lewis",
		"J. R. R. Tolkien": "J.R.R. Tolkien",
		"C.S. Lewis":       "C.S. Lewis",
		"Dr. A. Smith":     "Dr. A. Smith",
		"Jane Smith":       "Jane Smith",
	}
	for in, want := range tests {
		if got := CollapseInitials(in); got != want {
			t.Errorf("CollapseInitials(%q) = %q, want %q", in, got, want)
		}
	}
}
