package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// RampMidpoint is the normalized volume at which the traffic ramp switches
// from green-to-yellow to yellow-to-red interpolation.
const RampMidpoint = 0.5

const (
	trafficWidthScale = 14
	trafficWidthBase  = 1.5
)

// Traffic styles the traffic volume dataset from its AADT column
// (lowercase "aadt" accepted as a fallback; missing or unparsable values
// count as 0). Volumes are min-max normalized across the collection and
// mapped onto a green-yellow-red ramp; line widths grow with the square
// root of the normalized volume so low-volume segments stay visible.
// Derived columns: aadt_val, aadt_norm, line_color, line_width,
// tooltip_html.
func Traffic(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		g := geojson.NewFeature(f.Geometry)
		g.Properties = cloneProperties(f.Properties)
		g.Properties["aadt_val"] = volumeOf(g.Properties)
		out.Append(g)
	}
	if len(out.Features) == 0 {
		return out
	}

	min, max := volumeRange(out)
	denom := max - min
	if denom == 0 {
		denom = 1.0
	}
	for _, f := range out.Features {
		v := f.Properties["aadt_val"].(float64)
		n := (v - min) / denom
		f.Properties["aadt_norm"] = n
		f.Properties["line_color"] = rampColor(n)
		f.Properties["line_width"] = round2(math.Sqrt(n)*trafficWidthScale + trafficWidthBase)
		f.Properties["tooltip_html"] = fmt.Sprintf("<b>AADT:</b> %s", Thousands(int(v)))
	}
	return out
}

// volumeOf coerces the feature's traffic volume. The uppercase column wins
// even when unparsable, matching the source data's precedence.
func volumeOf(p geojson.Properties) float64 {
	if _, ok := p["AADT"]; ok {
		return Column(p, "AADT", 0.0)
	}
	return Column(p, "aadt", 0.0)
}

// TrafficRange reports the observed volume range across the collection,
// counting only features with a parsable volume; ok is false when none
// parse. Legends use this, so unparsable values drop out instead of
// flattening the minimum to zero.
func TrafficRange(fc *geojson.FeatureCollection) (minAADT, maxAADT int, ok bool) {
	if fc == nil {
		return 0, 0, false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		v, found := rawVolume(f.Properties)
		if !found {
			continue
		}
		ok = true
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if !ok {
		return 0, 0, false
	}
	return int(lo), int(hi), true
}

func rawVolume(p geojson.Properties) (float64, bool) {
	if _, present := p["AADT"]; present {
		return numericProp(p, "AADT")
	}
	return numericProp(p, "aadt")
}

func numericProp(p geojson.Properties, key string) (float64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func volumeRange(fc *geojson.FeatureCollection) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, f := range fc.Features {
		v := f.Properties["aadt_val"].(float64)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// rampColor maps a normalized volume in [0,1] onto the traffic ramp:
// green at 0, yellow at RampMidpoint, red at 1.
func rampColor(n float64) RGBA {
	if n <= RampMidpoint {
		return RGBA{int(255 * n / RampMidpoint), 255, 0, 255}
	}
	return RGBA{255, int(255 - 255*(n-RampMidpoint)/RampMidpoint), 0, 255}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
