package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/geo"
	"github.com/opencurb/curbmap/internal/style"
)

const trafficFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "LineString", "coordinates": [[-77.05, 38.90], [-77.03, 38.91]]},
     "properties": {"AADT": 1200, "ROUTENAME": "M ST NW"}},
    {"type": "Feature",
     "geometry": {"type": "LineString", "coordinates": [[-77.02, 38.89], [-77.00, 38.93]]},
     "properties": {"AADT": 98000, "ROUTENAME": "I-395"}}
  ]
}`

const transitFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [-77.0326, 38.8983]},
     "properties": {"NAME": "METRO CENTER", "TYPE": "METRO STATION", "NUM_LINES": 3, "LINE": "red, blue, orange"}},
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [-77.0441, 38.9021]},
     "properties": {"NAME": "K ST + 19TH ST NW", "TYPE": "BUS STOP", "LINE": "D6"}},
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [-77.0327, 38.8984]},
     "properties": {"NAME": "METRO CENTER", "TYPE": "METRO STATION", "NUM_LINES": 3, "LINE": "red, blue, orange"}}
  ]
}`

const parkingFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Polygon", "coordinates": [[[-77.04, 38.90], [-77.03, 38.90], [-77.03, 38.91], [-77.04, 38.91], [-77.04, 38.90]]]},
     "properties": {"RESTRICTION_TYPE": "Resident Only", "UNRESTRICTED_HOURS": 40, "ESTIMATED_MAX_CARS": 120}}
  ]
}`

const hoodsFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Polygon", "coordinates": [[[-77.06, 38.90], [-77.05, 38.90], [-77.05, 38.91], [-77.06, 38.91], [-77.06, 38.90]]]},
     "properties": {"NAME": "Georgetown"}}
  ]
}`

const boundaryFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Polygon", "coordinates": [[[-77.12, 38.80], [-76.90, 38.80], [-76.90, 39.00], [-77.12, 39.00], [-77.12, 38.80]]]},
     "properties": {"NAME": "City Boundary"}}
  ]
}`

// testEnv writes the fixture datasets into a temp directory and returns
// a registry over them. "Ghost Dataset" points at a file that does not
// exist.
func testEnv(t *testing.T) (*catalog.Registry, *geo.Loader) {
	t.Helper()
	is := is.New(t)

	dir := t.TempDir()
	files := map[string]string{
		"traffic.geojson":  trafficFixture,
		"transit.geojson":  transitFixture,
		"parking.geojson":  parkingFixture,
		"hoods.geojson":    hoodsFixture,
		"boundary.geojson": boundaryFixture,
	}
	for name, body := range files {
		is.NoErr(os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	reg, err := catalog.New([]catalog.Dataset{
		{Name: "Traffic Volume", File: "traffic.geojson", Kind: catalog.KindTraffic,
			Fill: style.RGBA{255, 99, 71, 140}, Line: style.RGBA{255, 99, 71, 255}, Tooltip: "Traffic: {AADT}"},
		{Name: "Public Transportation", File: "transit.geojson", Kind: catalog.KindTransit,
			Fill: style.RGBA{138, 43, 226, 140}, Line: style.RGBA{138, 43, 226, 255}, Tooltip: "Transit: {NAME}"},
		{Name: "Parking Zones", File: "parking.geojson", Kind: catalog.KindParking,
			Fill: style.RGBA{34, 139, 34, 110}, Line: style.RGBA{34, 139, 34, 255}, Tooltip: "Zone: {ZONE}"},
		{Name: "Neighborhood Labels", File: "hoods.geojson", Kind: catalog.KindGeneric,
			Fill: style.RGBA{255, 215, 0, 120}, Line: style.RGBA{255, 215, 0, 255}, Tooltip: "Hood: {NAME}"},
		{Name: "Ghost Dataset", File: "missing.geojson", Kind: catalog.KindGeneric},
		{Name: "City Boundary", File: "boundary.geojson", Kind: catalog.KindBoundary,
			Line: style.RGBA{0, 0, 0, 255}, Tooltip: "City Boundary"},
	})
	is.NoErr(err)

	return reg, geo.NewLoader(dir, 8, nil)
}
