package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/opencurb/curbmap/internal/style"
)

func TestDefaultRegistry(t *testing.T) {
	is := is.New(t)

	r := Default()
	is.Equal(r.Len(), 6)
	is.Equal(r.Names(), []string{
		"Traffic Volume",
		"Parking Zones",
		"Neighborhood Labels",
		"Public Transportation",
		"Census Tracts",
		"DC Boundary",
	})

	traffic, ok := r.Get("Traffic Volume")
	is.True(ok)
	is.Equal(traffic.Kind, KindTraffic)
	is.Equal(traffic.Fill, style.RGBA{255, 99, 71, 140})
	is.Equal(traffic.Tooltip, "Traffic: {AADT}")

	boundary, ok := r.Boundary()
	is.True(ok)
	is.Equal(boundary.Name, "DC Boundary")
	is.Equal(boundary.File, "Washington_DC_Boundary_Stone_Area.geojson")

	_, ok = r.Get("Bike Lanes")
	is.Equal(ok, false)
}

func TestNewValidation(t *testing.T) {
	is := is.New(t)

	_, err := New(nil)
	is.True(err != nil)

	_, err = New([]Dataset{{Name: "A", File: "a.geojson"}, {Name: "A", File: "b.geojson"}})
	is.True(err != nil) // duplicate name

	_, err = New([]Dataset{{Name: "A"}})
	is.True(err != nil) // missing file

	_, err = New([]Dataset{{Name: "A", File: "a.geojson", Kind: "hexbin"}})
	is.True(err != nil) // unknown kind

	r, err := New([]Dataset{{Name: "A", File: "a.geojson"}})
	is.NoErr(err)
	d, _ := r.Get("A")
	is.Equal(d.Kind, KindGeneric) // empty kind defaults
}

func TestLoadYAML(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `datasets:
  - name: Bike Lanes
    file: bike_lanes.geojson
    fill: [20, 180, 60, 120]
    line: [20, 180, 60, 255]
    tooltip: "Lane: {ROUTE}"
  - name: City Boundary
    file: boundary.geojson
    kind: boundary
    line: [0, 0, 0, 255]
    tooltip: City Boundary
`
	is.NoErr(os.WriteFile(path, []byte(body), 0o644))

	r, err := Load(path)
	is.NoErr(err)
	is.Equal(r.Len(), 2)

	lanes, ok := r.Get("Bike Lanes")
	is.True(ok)
	is.Equal(lanes.Kind, KindGeneric)
	is.Equal(lanes.Fill, style.RGBA{20, 180, 60, 120})

	boundary, ok := r.Boundary()
	is.True(ok)
	is.Equal(boundary.Name, "City Boundary")
}

func TestLoadMissingFile(t *testing.T) {
	is := is.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	is.True(err != nil)
}
