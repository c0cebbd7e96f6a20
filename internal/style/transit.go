package style

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TransitMode classifies a stop by its source TYPE value.
type TransitMode int

const (
	ModeOther TransitMode = iota
	ModeMetro
	ModeBus
)

// modeFor maps the source vocabulary onto the closed mode set. Unknown
// values classify as ModeOther.
var modeFor = map[string]TransitMode{
	"METRO STATION": ModeMetro,
	"BUS STOP":      ModeBus,
}

var modeColors = map[TransitMode]RGBA{
	ModeMetro: {0, 102, 204, 210},
	ModeBus:   {255, 140, 0, 200},
	ModeOther: {120, 120, 120, 180},
}

const (
	stopRadius      = 10 // every non-metro stop
	metroBaseRadius = 30
	metroRadiusStep = 8 // per line serving the station
	metroRadiusCap  = 6 // lines beyond this no longer grow the circle
)

// Color returns the marker fill for the mode.
func (m TransitMode) Color() RGBA { return modeColors[m] }

// Radius returns the marker radius for a stop served by lines lines.
func (m TransitMode) Radius(lines int) int {
	if m != ModeMetro {
		return stopRadius
	}
	if lines > metroRadiusCap {
		lines = metroRadiusCap
	}
	return metroBaseRadius + lines*metroRadiusStep
}

// Transit styles the public transportation dataset. MultiPoint features are
// exploded into one feature per point and non-point geometries are dropped.
// Derived columns: lon, lat, mode, lines_count, label, lines, radius, color,
// tooltip_html.
func Transit(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			out.Append(styleStop(f, g))
		case orb.MultiPoint:
			for _, pt := range g {
				out.Append(styleStop(f, pt))
			}
		}
	}
	return out
}

func styleStop(src *geojson.Feature, pt orb.Point) *geojson.Feature {
	f := geojson.NewFeature(pt)
	f.Properties = cloneProperties(src.Properties)

	// Position columns come from the geometry unless the source already
	// carries them.
	if _, ok := f.Properties["lon"]; !ok {
		f.Properties["lon"] = pt[0]
	}
	if _, ok := f.Properties["lat"]; !ok {
		f.Properties["lat"] = pt[1]
	}

	modeName := Column(f.Properties, "TYPE", "Other")
	lines := Column(f.Properties, "NUM_LINES", 1)
	label := Column(f.Properties, "NAME", "Unknown")
	lineList := Column(f.Properties, "LINE", "Unknown")
	mode := modeFor[modeName]

	f.Properties["mode"] = modeName
	f.Properties["lines_count"] = lines
	f.Properties["label"] = label
	f.Properties["lines"] = lineList
	f.Properties["radius"] = mode.Radius(lines)
	f.Properties["color"] = mode.Color()
	f.Properties["tooltip_html"] = stopTooltip(mode, label, modeName, lines, lineList)
	return f
}

func stopTooltip(mode TransitMode, label, modeName string, lines int, lineList string) string {
	if mode == ModeMetro {
		return fmt.Sprintf("<b>%s</b><br/>Type: %s<br/>Num of Lines: %d<br/>Lines: %s",
			label, modeName, lines, lineList)
	}
	return fmt.Sprintf("<b>%s</b><br/>Type: %s", label, modeName)
}
