package deck

import (
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/opencurb/curbmap/internal/style"
)

func TestLayerIDSlugs(t *testing.T) {
	is := is.New(t)

	cases := map[string]string{
		"Traffic Volume":            "traffic-volume",
		"  Public  Transportation ": "public-transportation",
		"DC Boundary":               "dc-boundary",
		"parking":                   "parking",
	}
	for name, want := range cases {
		is.Equal(LayerID(name), want)
	}
}

func TestTransitLayerUsesStyledProperties(t *testing.T) {
	is := is.New(t)

	data := geojson.NewFeatureCollection()
	l := TransitLayer("Public Transportation", data)

	is.Equal(l.Type, ScatterplotLayer)
	is.Equal(l.ID, "public-transportation")
	is.True(l.Data == data)
	is.True(l.Pickable)
	is.True(l.AutoHighlight)
	is.Equal(l.FillColorProp, "color")
	is.Equal(l.RadiusProp, "radius")
	is.Equal(l.RadiusMin, 1.0)
	is.Equal(l.RadiusMax, 30.0)
}

func TestTrafficLayerRampAccessors(t *testing.T) {
	is := is.New(t)

	l := TrafficLayer("Traffic Volume", geojson.NewFeatureCollection())

	is.Equal(l.Type, GeoJSONLayer)
	is.True(l.Stroked)
	is.True(!l.Filled)
	is.Equal(l.LineColorProp, "line_color")
	is.Equal(l.LineWidthProp, "line_width")
	is.Equal(l.LineWidthMin, 1.0)
	is.Equal(l.LineWidthMax, 20.0)
	is.Equal(*l.HighlightColor, style.RGBA{255, 255, 0, 255})
}

func TestParkingLayerRestrictionAccessors(t *testing.T) {
	is := is.New(t)

	l := ParkingLayer("Parking Zones", geojson.NewFeatureCollection())

	is.Equal(l.LineColorProp, "restriction_color")
	is.Equal(l.LineWidthProp, "line_width")
	is.Equal(l.LineWidthMin, 2.0)
	is.Equal(l.LineWidthMax, 12.0)
	is.True(!l.Filled)
}

func TestGenericLayerCarriesRegistryColors(t *testing.T) {
	is := is.New(t)

	fill := style.RGBA{255, 215, 0, 120}
	line := style.RGBA{255, 215, 0, 255}
	l := GenericLayer("Neighborhood Labels", geojson.NewFeatureCollection(), fill, line)

	is.Equal(l.ID, "neighborhood-labels")
	is.True(l.Filled)
	is.True(l.Stroked)
	is.Equal(*l.FillColor, fill)
	is.Equal(*l.LineColor, line)
	is.Equal(l.LineColorProp, "")
	is.Equal(l.Opacity, 0.6)
}

func TestMaskLayerWrapsPolygon(t *testing.T) {
	is := is.New(t)

	mask := orb.Polygon{
		{{-1, -1}, {2, -1}, {2, 2}, {-1, 2}, {-1, -1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}},
	}
	l := MaskLayer(mask)

	is.Equal(l.ID, "boundary-mask")
	is.True(!l.Pickable)
	is.True(l.Filled)
	is.Equal(*l.FillColor, style.RGBA{0, 0, 0, 160})
	is.Equal(len(l.Data.Features), 1)

	got, ok := l.Data.Features[0].Geometry.(orb.Polygon)
	is.True(ok)
	is.Equal(len(got), 2)
}

func TestHighlightLayerMarksStop(t *testing.T) {
	is := is.New(t)

	l := HighlightLayer(-77.03, 38.89)

	is.Equal(l.ID, "stop-highlight")
	is.Equal(l.Type, ScatterplotLayer)
	is.Equal(l.Radius, 80.0)
	is.Equal(*l.FillColor, style.RGBA{255, 255, 0, 220})
	is.Equal(len(l.Data.Features), 1)

	f := l.Data.Features[0]
	is.Equal(f.Geometry, orb.Geometry(orb.Point{-77.03, 38.89}))
	is.Equal(f.Properties["lon"], -77.03)
	is.Equal(f.Properties["lat"], 38.89)
}

func TestCityViewDefaults(t *testing.T) {
	is := is.New(t)

	v := CityView()
	is.Equal(v, ViewState{Latitude: 38.9072, Longitude: -77.0369, Zoom: 10})
}

func TestOverviewViewCentersOnExtent(t *testing.T) {
	is := is.New(t)

	b := orb.Bound{Min: orb.Point{-77.1, 38.8}, Max: orb.Point{-76.9, 39.0}}
	v := OverviewView(b)

	is.True(math.Abs(v.Latitude-38.9) < 1e-9)
	is.True(math.Abs(v.Longitude-(-77.0)) < 1e-9)
	is.Equal(v.Zoom, 11.0)
	is.Equal(v.Pitch, 0.0)
	is.Equal(v.Bearing, 0.0)
}

func TestFocusViewZoomsToStop(t *testing.T) {
	is := is.New(t)

	v := FocusView(38.9012, -77.0512)
	is.Equal(v.Latitude, 38.9012)
	is.Equal(v.Longitude, -77.0512)
	is.Equal(v.Zoom, 14.0)
}

func TestTrafficLegendReportsObservedRange(t *testing.T) {
	is := is.New(t)

	l := TrafficLegend(1200, 98000)
	is.Equal(l.Note, "AADT range: 1,200 – 98,000")
	is.Equal(l.Ramp.Stops[0], style.RGBA{0, 200, 83, 255})
	is.Equal(l.Ramp.Stops[2], style.RGBA{213, 0, 0, 255})
}

func TestTransitLegendListsModes(t *testing.T) {
	is := is.New(t)

	l := TransitLegend()
	is.Equal(len(l.Items), 2)
	is.Equal(l.Items[0].Label, "Metro Station")
	is.Equal(l.Items[1].Label, "Bus Stop")
}

func TestParkingLegendGradient(t *testing.T) {
	is := is.New(t)

	l := ParkingLegend()
	is.Equal(l.Ramp.Stops[0], style.RGBA{255, 255, 255, 255})
	is.Equal(l.Ramp.Stops[1], style.RGBA{0, 166, 255, 255})
	is.Equal(l.Ramp.MinLabel, "Low")
}

func TestSelectionLegend(t *testing.T) {
	is := is.New(t)

	l := SelectionLegend([]LegendItem{{Label: "Traffic Volume", Color: style.RGBA{255, 99, 71, 140}}})
	is.Equal(l.Title, "Selected Layers")
	is.Equal(len(l.Items), 1)
}
