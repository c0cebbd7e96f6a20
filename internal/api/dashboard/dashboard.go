// Package dashboard serves the Datastar-driven map UI: dataset
// toggles, the rendered map bundle, stop search, and selection reset.
// All routes speak SSE and patch fragments into the dashboard page.
package dashboard

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/humastar"
	"github.com/opencurb/curbmap/internal/service"
	"github.com/opencurb/curbmap/internal/templates"
)

// DashboardHandler renders the interactive map dashboard.
type DashboardHandler struct {
	humastar.Handler
	registry *catalog.Registry
	datasets *service.DatasetService
	transit  *service.TransitService
	maps     *service.MapService
}

func NewDashboardHandler(
	registry *catalog.Registry,
	datasets *service.DatasetService,
	transit *service.TransitService,
	maps *service.MapService,
	renderer *templates.Renderer,
) *DashboardHandler {
	return &DashboardHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		registry: registry,
		datasets: datasets,
		transit:  transit,
		maps:     maps,
	}
}

func (h *DashboardHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/dashboard/datasets", h.DatasetToggles, huma.OperationTags("dashboard"))
	huma.Post(api, "/dashboard/map", h.RenderMap, huma.OperationTags("dashboard"))
	huma.Post(api, "/dashboard/stops", h.SearchStops, huma.OperationTags("dashboard"))
	huma.Post(api, "/dashboard/reset", h.Reset, huma.OperationTags("dashboard"))
}

// signalFor maps a dataset name to its checkbox signal. Datastar
// expressions cannot contain dashes, so slugs use underscores.
func signalFor(dataset string) string {
	var b strings.Builder
	b.WriteString("sel_")
	pending := false
	for _, r := range strings.ToLower(dataset) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if pending && b.Len() > 4 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
