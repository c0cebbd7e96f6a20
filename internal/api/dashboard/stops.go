package dashboard

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/opencurb/curbmap/internal/humastar"
)

// SearchStops filters the transit stop picker by the stopquery signal.
func (h *DashboardHandler) SearchStops(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	query := signals.String("stopquery")

	return h.Stream(func(sse humastar.SSE) {
		stops, err := h.transit.Search(ctx, query)
		if err != nil {
			sse.Error("Stop search failed: " + err.Error())
			return
		}

		opts := make([]humastar.SelectOptionData, len(stops))
		for i, s := range stops {
			opts[i] = humastar.SelectOptionData{
				Value: s.Label,
				Label: fmt.Sprintf("%s (%s)", s.Label, s.Mode),
			}
		}
		sse.Patch(h.RenderSelect("-- Select a stop --", opts), "#stop-select")
	}), nil
}
