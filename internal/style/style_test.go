package style

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
	"github.com/paulmach/orb/geojson"
)

func TestColumnDefaults(t *testing.T) {
	is := is.New(t)

	p := geojson.Properties{
		"name":   "Anacostia",
		"count":  7.0,
		"badnum": "seven",
		"strnum": " 42 ",
		"isnull": nil,
	}

	is.Equal(Column(p, "name", "Unknown"), "Anacostia")
	is.Equal(Column(p, "missing", "Unknown"), "Unknown")
	is.Equal(Column(p, "isnull", "Unknown"), "Unknown")
	is.Equal(Column(p, "count", 0), 7)
	is.Equal(Column(p, "count", 0.0), 7.0)
	is.Equal(Column(p, "strnum", 0), 42)
	is.Equal(Column(p, "badnum", 0), 0)
	is.Equal(Column(p, "missing", 3), 3)
	is.Equal(Column(p, "count", "none"), "7") // numbers stringify
}

func TestThousands(t *testing.T) {
	is := is.New(t)

	is.Equal(Thousands(0), "0")
	is.Equal(Thousands(950), "950")
	is.Equal(Thousands(24650), "24,650")
	is.Equal(Thousands(1234567), "1,234,567")
	is.Equal(Thousands(-4200), "-4,200")
}

func TestStylersAreIdempotent(t *testing.T) {
	is := is.New(t)

	cases := []struct {
		name  string
		style func(*geojson.FeatureCollection) *geojson.FeatureCollection
		input *geojson.FeatureCollection
	}{
		{"transit", Transit, transitSample()},
		{"traffic", Traffic, trafficCollection(0, 800, 4500)},
		{"parking", Parking, parkingSample()},
	}

	for _, tc := range cases {
		once := tc.style(tc.input)
		twice := tc.style(once)

		a, err := json.Marshal(once)
		is.NoErr(err)
		b, err := json.Marshal(twice)
		is.NoErr(err)
		if string(a) != string(b) {
			t.Fatalf("%s styler is not idempotent", tc.name)
		}
	}
}

func TestStyledColorsHaveFourValidChannels(t *testing.T) {
	is := is.New(t)

	styled := []*geojson.FeatureCollection{
		Transit(transitSample()),
		Traffic(trafficCollection(120, 4800, 98000)),
		Parking(parkingSample()),
	}
	colorCols := []string{"color", "line_color", "restriction_color"}

	seen := 0
	for _, fc := range styled {
		for _, f := range fc.Features {
			for _, col := range colorCols {
				v, ok := f.Properties[col]
				if !ok {
					continue
				}
				c, ok := v.(RGBA)
				is.True(ok)
				is.True(c.Valid())
				seen++
			}
		}
	}
	is.True(seen > 0)
}

func transitSample() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(stopFeature(geojson.Properties{"TYPE": "METRO STATION", "NAME": "Metro Center", "NUM_LINES": 3}))
	fc.Append(stopFeature(geojson.Properties{"TYPE": "BUS STOP", "NAME": "H St & 8th St"}))
	fc.Append(stopFeature(geojson.Properties{"NAME": "Unmarked"}))
	return fc
}

func parkingSample() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(zoneFeature(geojson.Properties{"PARKINGGROUP": "RPP Zone 1", "UNRESTRICTED_HOURS_PER_WEEK": 20}))
	fc.Append(zoneFeature(geojson.Properties{"PARKINGGROUP": "Metered", "UNRESTRICTED_HOURS_PER_WEEK": 150, "ESTIMATED_MAX_CARS": 40}))
	return fc
}
