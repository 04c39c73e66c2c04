package schema

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NullFloat is a numeric field that may be absent. Source shards carry numbers,
// numeric strings, blanks and nulls interchangeably; anything that does not parse
// to a finite number decodes to an invalid value rather than an error.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid NullFloat holding v, or an invalid one if v is not finite.
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// Null is the absent value.
var Null = NullFloat{}

// ParseNumber coerces a raw string to a NullFloat.
func ParseNumber(s string) NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NullFloat{}
	}
	return Float(v)
}

// Truthy reports whether the value is present and non-zero.
func (n NullFloat) Truthy() bool {
	return n.Valid && n.Float64 != 0
}

// Or returns n when it is truthy, otherwise fallback.
func (n NullFloat) Or(fallback NullFloat) NullFloat {
	if n.Truthy() {
		return n
	}
	return fallback
}

// Ptr returns a pointer to the value, or nil when absent.
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// String renders the shortest decimal form, or "" when absent.
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	*n = NullFloat{}
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return nil
	case bytes.Equal(data, []byte("true")):
		*n = Float(1)
		return nil
	case bytes.Equal(data, []byte("false")):
		*n = Float(0)
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*n = ParseNumber(s)
		return nil
	case data[0] == '{' || data[0] == '[':
		return nil
	}
	*n = ParseNumber(string(data))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// Year is a rating year. It decodes from a JSON number or numeric string;
// anything else decodes to 0, which falls outside every year window.
type Year int

// UnmarshalJSON implements json.Unmarshaler.
func (y *Year) UnmarshalJSON(data []byte) error {
	var n NullFloat
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	*y = 0
	if n.Valid && n.Float64 == math.Trunc(n.Float64) && math.Abs(n.Float64) < math.MaxInt32 {
		*y = Year(n.Float64)
	}
	return nil
}

// YearWindow is a closed, inclusive range of rating years.
type YearWindow struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Width returns the number of years in the window.
func (w YearWindow) Width() int {
	if w.Max < w.Min {
		return 0
	}
	return w.Max - w.Min + 1
}

// Contains reports whether year lies within the window.
func (w YearWindow) Contains(year Year) bool {
	return int(year) >= w.Min && int(year) <= w.Max
}

// Years returns every year in the window in ascending order.
func (w YearWindow) Years() []int {
	years := make([]int, 0, w.Width())
	for y := w.Min; y <= w.Max; y++ {
		years = append(years, y)
	}
	return years
}
