package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/matryer/is"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/geo"
	"github.com/opencurb/curbmap/internal/service"
	"github.com/opencurb/curbmap/internal/style"
	"github.com/opencurb/curbmap/internal/templates"
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
     "properties": {"NAME": "K ST + 19TH ST NW", "TYPE": "BUS STOP", "LINE": "D6"}}
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

// newDashboardAPI wires the dashboard handlers over fixture datasets
// and the real web/ templates. "Ghost Dataset" has no file so its
// failures surface in the status banner.
func newDashboardAPI(t *testing.T) humatest.TestAPI {
	t.Helper()
	is := is.New(t)

	dir := t.TempDir()
	files := map[string]string{
		"traffic.geojson":  trafficFixture,
		"transit.geojson":  transitFixture,
		"boundary.geojson": boundaryFixture,
	}
	for name, body := range files {
		is.NoErr(os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	registry, err := catalog.New([]catalog.Dataset{
		{Name: "Traffic Volume", File: "traffic.geojson", Kind: catalog.KindTraffic,
			Fill: style.RGBA{255, 99, 71, 140}, Line: style.RGBA{255, 99, 71, 255}, Tooltip: "Traffic: {AADT}"},
		{Name: "Public Transportation", File: "transit.geojson", Kind: catalog.KindTransit,
			Fill: style.RGBA{138, 43, 226, 140}, Line: style.RGBA{138, 43, 226, 255}, Tooltip: "Transit: {NAME}"},
		{Name: "Ghost Dataset", File: "missing.geojson"},
		{Name: "City Boundary", File: "boundary.geojson", Kind: catalog.KindBoundary,
			Line: style.RGBA{0, 0, 0, 255}, Tooltip: "City Boundary"},
	})
	is.NoErr(err)

	loader := geo.NewLoader(dir, 8, nil)
	datasets := service.NewDatasetService(registry, loader)
	transit := service.NewTransitService(registry, loader)
	maps := service.NewMapService(registry, loader, transit, nil)

	renderer, err := templates.New(filepath.Join("..", "..", "..", "web"))
	is.NoErr(err)

	_, api := humatest.New(t)
	NewDashboardHandler(registry, datasets, transit, maps, renderer).RegisterRoutes(api)
	return api
}

func TestDatasetTogglesStream(t *testing.T) {
	is := is.New(t)
	api := newDashboardAPI(t)

	resp := api.Get("/dashboard/datasets")
	is.Equal(resp.Code, 200)

	body := resp.Body.String()
	is.True(strings.Contains(body, `data-bind="sel_traffic_volume"`))
	is.True(strings.Contains(body, `data-bind="sel_public_transportation"`))
	is.True(strings.Contains(body, `data-bind="sel_ghost_dataset"`))
	// The boundary never becomes a toggle.
	is.True(!strings.Contains(body, `<span class="toggle-name">City Boundary</span>`))

	// Defaults: first available dataset on, the rest off.
	is.True(strings.Contains(body, "datastar-patch-signals"))
	is.True(strings.Contains(body, `"sel_traffic_volume":true`))
	is.True(strings.Contains(body, `"sel_ghost_dataset":false`))

	// The initial map rides along in the same stream.
	is.True(strings.Contains(body, `id="map-bundle"`))
	is.True(strings.Contains(body, "map-updated"))
}

func TestRenderMapStream(t *testing.T) {
	is := is.New(t)
	api := newDashboardAPI(t)

	resp := api.Post("/dashboard/map", map[string]any{
		"sel_traffic_volume":        true,
		"sel_public_transportation": false,
		"stop":                      "",
	})
	is.Equal(resp.Code, 200)

	body := resp.Body.String()
	is.True(strings.Contains(body, `"type":"GeoJsonLayer"`))
	is.True(strings.Contains(body, "Traffic Volume (AADT)")) // legend ramp
	is.True(strings.Contains(body, "map-updated"))
	is.True(!strings.Contains(body, "ScatterplotLayer")) // transit not selected
}

func TestRenderMapShowsLoadFailures(t *testing.T) {
	is := is.New(t)
	api := newDashboardAPI(t)

	resp := api.Post("/dashboard/map", map[string]any{"sel_ghost_dataset": true})
	is.Equal(resp.Code, 200)

	body := resp.Body.String()
	is.True(strings.Contains(body, "Some layers failed to load"))
	is.True(strings.Contains(body, "Ghost Dataset"))
}

func TestRenderMapRejectsBadSignals(t *testing.T) {
	is := is.New(t)
	api := newDashboardAPI(t)

	resp := api.Post("/dashboard/map", strings.NewReader("not json"))
	is.Equal(resp.Code, 400)
}

func TestSearchStopsStream(t *testing.T) {
	is := is.New(t)
	api := newDashboardAPI(t)

	resp := api.Post("/dashboard/stops", map[string]any{"stopquery": "metro"})
	is.Equal(resp.Code, 200)

	body := resp.Body.String()
	is.True(strings.Contains(body, `<option value="">-- Select a stop --</option>`))
	is.True(strings.Contains(body, `<option value="METRO CENTER">METRO CENTER (METRO STATION)</option>`))
	is.True(!strings.Contains(body, "K ST"))
}

func TestResetStream(t *testing.T) {
	is := is.New(t)
	api := newDashboardAPI(t)

	resp := api.Post("/dashboard/reset", map[string]any{
		"resetTick": 4,
		"stop":      "METRO CENTER",
	})
	is.Equal(resp.Code, 200)

	body := resp.Body.String()
	is.True(strings.Contains(body, `"stop":""`))
	is.True(strings.Contains(body, `"resetTick":5`)) // counter advances every reset
	is.True(strings.Contains(body, `"sel_traffic_volume":true`))
	is.True(strings.Contains(body, `<option value="METRO CENTER">`)) // picker rebuilt with the full list
	is.True(strings.Contains(body, `id="map-bundle"`))
}

func TestSignalNames(t *testing.T) {
	is := is.New(t)

	is.Equal(signalFor("Traffic Volume"), "sel_traffic_volume")
	is.Equal(signalFor("Public Transportation"), "sel_public_transportation")
	is.Equal(signalFor("DC-Boundary (2024)"), "sel_dc_boundary_2024")
}
