// Package style derives per-feature display attributes for map datasets.
//
// Each styler is a pure function from a raw feature collection to a styled
// one: it reads whichever source columns are present, writes derived columns
// (colors, radii, widths, tooltip text) onto copies of the features, and
// leaves the input untouched. Styling an already styled collection yields
// identical output.
package style

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// RGBA is a display color: red, green, blue, alpha, each in 0-255.
// It marshals as a plain JSON array, the form deck.gl expects.
type RGBA [4]int

// Valid reports whether every channel is within 0-255.
func (c RGBA) Valid() bool {
	for _, ch := range c {
		if ch < 0 || ch > 255 {
			return false
		}
	}
	return true
}

// Column reads a property value coerced to the type of def, falling back to
// def when the property is missing, null, or not coercible. Numeric coercion
// accepts JSON numbers and numeric strings; fractional values are truncated
// for int columns.
func Column[T string | float64 | int](p geojson.Properties, key string, def T) T {
	switch d := any(def).(type) {
	case string:
		return any(stringValue(p[key], d)).(T)
	case float64:
		return any(floatValue(p[key], d)).(T)
	case int:
		return any(int(floatValue(p[key], float64(d)))).(T)
	}
	return def
}

func stringValue(v any, def string) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return def
	}
}

func floatValue(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// Thousands renders v with comma grouping ("24,650") for tooltips and
// captions.
func Thousands(v int) string {
	s := strconv.Itoa(v)
	start := 0
	if s[0] == '-' {
		start = 1
	}
	n := len(s) - start
	if n <= 3 {
		return s
	}
	var b strings.Builder
	b.WriteString(s[:start])
	first := start + n%3
	if first == start {
		first += 3
	}
	b.WriteString(s[start:first])
	for i := first; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func cloneProperties(p geojson.Properties) geojson.Properties {
	out := make(geojson.Properties, len(p)+8)
	for k, v := range p {
		out[k] = v
	}
	return out
}
