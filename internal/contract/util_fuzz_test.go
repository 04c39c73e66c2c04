package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateLabel fuzzes TruncateLabel with random labels and widths.
func FuzzTruncateLabel(f *testing.F) {
	seeds := []struct {
		label string
		width int
	}{
		{"UnitedHealth Group, Inc.", 10},
		{"H1234", 3},
		{"", 0},
		{"Elevance Health, Inc.", -1},
		{"Blue Cross Blue Shield of Michigan Mutual Insurance Company", 40},
	}
	for _, seed := range seeds {
		f.Add(seed.label, seed.width)
	}

	f.Fuzz(func(t *testing.T, label string, width int) {
		out := TruncateLabel(label, width)
		if width > 3 && utf8.RuneCountInString(label) > width && utf8.RuneCountInString(out) != width {
			t.Fatalf("TruncateLabel(%q, %d) = %q", label, width, out)
		}
	})
}

// FuzzParseSeriesRef fuzzes ParseSeriesRef with random inputs.
func FuzzParseSeriesRef(f *testing.F) {
	for _, seed := range []string{"contract:H1234", "parent:Humana Inc.", "all_ma", "market:x", ":", "parent:"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		ref, err := ParseSeriesRef(s)
		if err == nil && ref.EntityKey == "" {
			t.Fatalf("ParseSeriesRef(%q) returned an empty entity", s)
		}
	})
}
