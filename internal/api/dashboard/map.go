package dashboard

import (
	"context"
	"encoding/json"
	"html/template"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/deck"
	"github.com/opencurb/curbmap/internal/humastar"
	"github.com/opencurb/curbmap/internal/service"
)

// MapViewData feeds the map-view fragment; BundleJSON is the full
// render bundle handed to the deck.gl glue.
type MapViewData struct {
	BundleJSON template.JS
}

// RenderMap reads the selection signals and patches the map, legends,
// and status panels. Checkbox and stop changes all land here.
func (h *DashboardHandler) RenderMap(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	sel := h.selectionFrom(signals)
	return h.Stream(func(sse humastar.SSE) {
		h.patchMap(ctx, sse, sel)
	}), nil
}

// selectionFrom rebuilds the Selection from checkbox signals, keeping
// registry order so layer stacking stays stable.
func (h *DashboardHandler) selectionFrom(signals humastar.Signals) service.Selection {
	var sel service.Selection
	for _, ds := range h.registry.All() {
		if ds.Kind == catalog.KindBoundary {
			continue
		}
		if signals.Bool(signalFor(ds.Name)) {
			sel.Datasets = append(sel.Datasets, ds.Name)
		}
	}
	sel.Stop = strings.TrimSpace(signals.String("stop"))
	return sel
}

func (h *DashboardHandler) patchMap(ctx context.Context, sse humastar.SSE, sel service.Selection) {
	bundle := h.maps.Bundle(ctx, sel)

	payload, err := json.Marshal(bundle)
	if err != nil {
		sse.Error("Failed to encode map bundle")
		return
	}

	sse.Patch(h.Render("map-view", MapViewData{BundleJSON: template.JS(payload)}), "#map-panel")
	sse.Patch(h.renderLegends(bundle.Legends), "#legend-panel")
	sse.Patch(h.renderStatus(bundle.Errors), "#status-panel")
	sse.DispatchCustomEvent("map-updated", map[string]any{"layers": len(bundle.Layers)})
}

func (h *DashboardHandler) renderLegends(legends []deck.Legend) string {
	items := make([]any, len(legends))
	for i, l := range legends {
		items[i] = l
	}
	return h.RenderList("legend-block", items,
		"No layers selected", "Pick a dataset to see its legend.")
}

func (h *DashboardHandler) renderStatus(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	return h.Render("status-banner", map[string]any{"Errors": errs})
}
