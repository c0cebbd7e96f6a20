package geo

import (
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func collectionOf(geoms ...orb.Geometry) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, g := range geoms {
		fc.Append(geojson.NewFeature(g))
	}
	return fc
}

func TestParseCRSName(t *testing.T) {
	is := is.New(t)

	cases := []struct {
		name string
		code int
		ok   bool
	}{
		{"EPSG:4326", 4326, true},
		{"epsg:3857", 3857, true},
		{"urn:ogc:def:crs:EPSG::26918", 26918, true},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", 4326, true},
		{"CRS84", 4326, true},
		{"banana", 0, false},
		{"EPSG:banana", 0, false},
	}
	for _, tc := range cases {
		code, err := parseCRSName(tc.name)
		if tc.ok {
			is.NoErr(err)
			is.Equal(code, tc.code)
		} else {
			is.True(err != nil)
		}
	}
}

func TestInferEPSG(t *testing.T) {
	is := is.New(t)

	is.Equal(inferEPSG(collectionOf(orb.Point{-77.03, 38.9})), epsgWGS84)
	is.Equal(inferEPSG(collectionOf(orb.Point{-8575708.5, 4708387.5})), epsgWebMercator)
	is.Equal(inferEPSG(collectionOf(orb.Point{25000000, 4308450.76})), epsgUTM18N)
	// empty collections default to geographic
	is.Equal(inferEPSG(geojson.NewFeatureCollection()), epsgWGS84)
	// the extent bound itself still counts as Web Mercator
	is.Equal(inferEPSG(collectionOf(orb.Point{webMercatorExtent, 0})), epsgWebMercator)
}

func TestUTM18Inverse(t *testing.T) {
	is := is.New(t)

	cases := []struct {
		easting, northing float64
		lon, lat          float64
	}{
		{323383.1542, 4308450.7583, -77.0369, 38.9072},
		{326148.6546, 4296486.3736, -77.002, 38.8},
		{331139.2279, 4318585.3220, -76.95, 39.0},
		{316029.4733, 4302266.6681, -77.12, 38.85},
	}
	for _, tc := range cases {
		pt := utm18ToWGS84(orb.Point{tc.easting, tc.northing})
		is.True(math.Abs(pt[0]-tc.lon) < 1e-6)
		is.True(math.Abs(pt[1]-tc.lat) < 1e-6)
	}
}
