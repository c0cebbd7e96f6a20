package dashboard

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/humastar"
	"github.com/opencurb/curbmap/internal/service"
)

// DatasetToggleData feeds the dataset-toggle fragment.
type DatasetToggleData struct {
	Name      string
	Signal    string
	Size      string
	Features  int
	Available bool
}

// DatasetToggles renders the dataset checkboxes, seeds the default
// signals, and draws the initial map. The page calls it once on load.
func (h *DashboardHandler) DatasetToggles(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		infos := h.datasets.List(ctx)
		sse.Patch(h.renderToggles(infos), "#dataset-panel")
		sse.Signals(h.defaultSignals(infos, 0))
		h.patchMap(ctx, sse, h.defaultSelection(infos))
	}), nil
}

func (h *DashboardHandler) renderToggles(infos []service.DatasetInfo) string {
	var items []any
	for _, info := range infos {
		if info.Kind == string(catalog.KindBoundary) {
			continue
		}
		items = append(items, DatasetToggleData{
			Name:      info.Name,
			Signal:    signalFor(info.Name),
			Size:      info.Size,
			Features:  info.Features,
			Available: info.Available,
		})
	}
	return h.RenderList("dataset-toggle", items,
		"No datasets registered", "Add entries to the catalog file and restart.")
}

// defaultSignals seeds one selection signal per toggleable dataset,
// with the first available one switched on, plus the shared UI signals.
// resetTick is a client-held generation counter; the stop picker stamps
// it onto itself so each reset rebuilds the control.
func (h *DashboardHandler) defaultSignals(infos []service.DatasetInfo, tick int) map[string]any {
	signals := map[string]any{
		"stop":      "",
		"stopquery": "",
		"resetTick": tick,
		"error":     "",
		"success":   "",
	}
	picked := false
	for _, info := range infos {
		if info.Kind == string(catalog.KindBoundary) {
			continue
		}
		on := !picked && info.Available
		if on {
			picked = true
		}
		signals[signalFor(info.Name)] = on
	}
	return signals
}

// defaultSelection mirrors defaultSignals: the first available
// toggleable dataset, nothing focused.
func (h *DashboardHandler) defaultSelection(infos []service.DatasetInfo) service.Selection {
	for _, info := range infos {
		if info.Kind == string(catalog.KindBoundary) || !info.Available {
			continue
		}
		return service.Selection{Datasets: []string{info.Name}}
	}
	return service.Selection{}
}

// Reset restores the default selection, bumps the reset counter, and
// redraws the map and the stop picker.
func (h *DashboardHandler) Reset(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	tick := signals.Int("resetTick") + 1
	return h.Stream(func(sse humastar.SSE) {
		infos := h.datasets.List(ctx)
		sse.Signals(h.defaultSignals(infos, tick))
		if stops, err := h.transit.Search(ctx, ""); err == nil {
			opts := make([]humastar.SelectOptionData, len(stops))
			for i, s := range stops {
				opts[i] = humastar.SelectOptionData{
					Value: s.Label,
					Label: fmt.Sprintf("%s (%s)", s.Label, s.Mode),
				}
			}
			sse.Patch(h.RenderSelect("-- Select a stop --", opts), "#stop-select")
		}
		h.patchMap(ctx, sse, h.defaultSelection(infos))
	}), nil
}
