package style

import (
	"testing"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func roadFeature(props geojson.Properties) *geojson.Feature {
	f := geojson.NewFeature(orb.LineString{{-77.0, 38.9}, {-77.01, 38.91}})
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

func trafficCollection(volumes ...any) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, v := range volumes {
		fc.Append(roadFeature(geojson.Properties{"AADT": v}))
	}
	return fc
}

func TestTrafficEqualVolumesCollapseToGreen(t *testing.T) {
	is := is.New(t)

	styled := Traffic(trafficCollection(5000, 5000, 5000))
	for _, f := range styled.Features {
		is.Equal(f.Properties["aadt_norm"], 0.0)
		is.Equal(f.Properties["line_color"], RGBA{0, 255, 0, 255})
		is.Equal(f.Properties["line_width"], 1.5)
	}
}

func TestTrafficRampEndpoints(t *testing.T) {
	is := is.New(t)

	styled := Traffic(trafficCollection(0, 1000))

	low := styled.Features[0].Properties
	is.Equal(low["aadt_norm"], 0.0)
	is.Equal(low["line_color"], RGBA{0, 255, 0, 255})
	is.Equal(low["line_width"], 1.5)

	high := styled.Features[1].Properties
	is.Equal(high["aadt_norm"], 1.0)
	is.Equal(high["line_color"], RGBA{255, 0, 0, 255})
	is.Equal(high["line_width"], 15.5) // sqrt(1)*14 + 1.5
}

func TestTrafficMidpointIsYellow(t *testing.T) {
	is := is.New(t)

	styled := Traffic(trafficCollection(0, 500, 1000))
	mid := styled.Features[1].Properties
	is.Equal(mid["aadt_norm"], 0.5)
	is.Equal(mid["line_color"], RGBA{255, 255, 0, 255})
}

func TestTrafficNormalizedRangeAndTooltip(t *testing.T) {
	is := is.New(t)

	styled := Traffic(trafficCollection(120, 4800, 24650, 98000))
	for _, f := range styled.Features {
		n := f.Properties["aadt_norm"].(float64)
		is.True(n >= 0 && n <= 1)
	}
	is.Equal(styled.Features[2].Properties["tooltip_html"], "<b>AADT:</b> 24,650")
}

func TestTrafficCoercesStringsAndMissingValues(t *testing.T) {
	is := is.New(t)

	fc := geojson.NewFeatureCollection()
	fc.Append(roadFeature(geojson.Properties{"AADT": "250"}))
	fc.Append(roadFeature(geojson.Properties{"AADT": "n/a"}))
	fc.Append(roadFeature(nil))

	styled := Traffic(fc)
	is.Equal(styled.Features[0].Properties["aadt_val"], 250.0)
	is.Equal(styled.Features[1].Properties["aadt_val"], 0.0)
	is.Equal(styled.Features[2].Properties["aadt_val"], 0.0)
}

func TestTrafficLowercaseColumnFallback(t *testing.T) {
	is := is.New(t)

	fc := geojson.NewFeatureCollection()
	fc.Append(roadFeature(geojson.Properties{"aadt": 300}))
	fc.Append(roadFeature(geojson.Properties{"aadt": 900}))

	styled := Traffic(fc)
	is.Equal(styled.Features[0].Properties["aadt_val"], 300.0)
	is.Equal(styled.Features[1].Properties["aadt_norm"], 1.0)
}

func TestTrafficEmptyCollection(t *testing.T) {
	is := is.New(t)

	styled := Traffic(geojson.NewFeatureCollection())
	is.Equal(len(styled.Features), 0)
}

func TestTrafficRangeSkipsUnparsableValues(t *testing.T) {
	is := is.New(t)

	fc := geojson.NewFeatureCollection()
	fc.Append(roadFeature(geojson.Properties{"AADT": 1200}))
	fc.Append(roadFeature(geojson.Properties{"AADT": "not a number"}))
	fc.Append(roadFeature(geojson.Properties{"AADT": "98000"}))
	fc.Append(roadFeature(nil))

	lo, hi, ok := TrafficRange(fc)
	is.True(ok)
	is.Equal(lo, 1200)
	is.Equal(hi, 98000)
}

func TestTrafficRangeWithoutVolumes(t *testing.T) {
	is := is.New(t)

	fc := geojson.NewFeatureCollection()
	fc.Append(roadFeature(geojson.Properties{"name": "Rock Creek Pkwy"}))

	_, _, ok := TrafficRange(fc)
	is.True(!ok)

	_, _, ok = TrafficRange(nil)
	is.True(!ok)
}
