package schema

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FormatNumber renders v with at most digits decimals, dropping trailing zeros.
// Absent values render as "".
func FormatNumber(v NullFloat, digits int) string {
	if !v.Valid {
		return ""
	}
	if digits <= 0 {
		digits = 4
	}
	s := strconv.FormatFloat(v.Float64, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// newCollator returns a locale-aware comparator for display labels.
// Collators are not safe for concurrent use, so callers get their own.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// SortLabels sorts labels using locale-aware collation.
func SortLabels(labels []string) {
	c := newCollator()
	sort.SliceStable(labels, func(i, j int) bool {
		return c.CompareString(labels[i], labels[j]) < 0
	})
}

// LabelComparer returns a three-way comparison function for display labels.
func LabelComparer() func(a, b string) int {
	c := newCollator()
	return c.CompareString
}
