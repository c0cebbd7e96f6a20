package service

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/deck"
	"github.com/opencurb/curbmap/internal/geo"
	"github.com/opencurb/curbmap/internal/style"
)

// Metrics receives bundle-level observations. A nil Metrics disables
// instrumentation.
type Metrics interface {
	BundleBuilt(layers int, elapsed time.Duration)
	DatasetError(dataset string)
}

// MapService assembles everything the map client renders for one
// selection: ordered layers, camera, tooltip wiring, and legends.
// Failures stay per-dataset: a missing file drops that layer and lands
// in the bundle's Errors, the rest of the map renders.
type MapService struct {
	registry *catalog.Registry
	loader   *geo.Loader
	transit  *TransitService
	metrics  Metrics
}

// NewMapService creates a map service. transit resolves stop focus
// requests; metrics may be nil.
func NewMapService(registry *catalog.Registry, loader *geo.Loader, transit *TransitService, metrics Metrics) *MapService {
	return &MapService{registry: registry, loader: loader, transit: transit, metrics: metrics}
}

// Bundle builds the full render bundle for a selection.
func (s *MapService) Bundle(ctx context.Context, sel Selection) *MapBundle {
	start := time.Now()
	layers, errs := s.BuildLayers(ctx, sel.Datasets)

	var focus *Stop
	if sel.Stop != "" {
		st, ok, err := s.transit.Find(ctx, sel.Stop)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("stop %q: %v", sel.Stop, err))
		case !ok:
			errs = append(errs, fmt.Sprintf("stop %q not found", sel.Stop))
		default:
			focus = &st
			// the marker draws above every data layer
			layers = append(layers, deck.HighlightLayer(st.Lon, st.Lat))
		}
	}

	b := &MapBundle{
		Layers:  layers,
		View:    s.ResolveView(ctx, sel.Datasets, focus),
		Tooltip: s.tooltip(sel.Datasets),
		Legends: s.legends(ctx, sel.Datasets),
		Errors:  errs,
	}
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.BundleBuilt(len(b.Layers), elapsed)
	}
	log.Debug().
		Int("layers", len(b.Layers)).
		Int("errors", len(b.Errors)).
		Dur("elapsed", elapsed).
		Msg("bundle built")
	return b
}

// BuildLayers loads and styles the selected datasets in order. The
// boundary mask, when available, comes first so every data layer draws
// above it; later selections draw above earlier ones. Unknown names and
// failed loads become error strings instead of failing the whole map.
func (s *MapService) BuildLayers(ctx context.Context, names []string) ([]deck.Layer, []string) {
	layers := make([]deck.Layer, 0, len(names)+1)
	var errs []string

	mask, ok, err := s.boundaryMask(ctx)
	if err != nil {
		errs = append(errs, err.Error())
	} else if ok {
		layers = append(layers, deck.MaskLayer(mask))
	}

	for _, name := range names {
		ds, ok := s.registry.Get(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: %v", name, ErrUnknownDataset))
			continue
		}
		fc, err := s.loader.Load(ctx, ds.File)
		if err != nil {
			s.fail(ds.Name, err)
			errs = append(errs, fmt.Sprintf("%s: %v", ds.Name, err))
			continue
		}
		layers = append(layers, s.layerFor(ds, fc))
	}
	return layers, errs
}

// ResolveView picks the camera: a focused stop wins, then the extent
// midpoint of the first selected dataset, then the citywide default.
func (s *MapService) ResolveView(ctx context.Context, names []string, focus *Stop) deck.ViewState {
	if focus != nil {
		return deck.FocusView(focus.Lat, focus.Lon)
	}
	if len(names) > 0 {
		if ds, ok := s.registry.Get(names[0]); ok {
			if fc, err := s.loader.Load(ctx, ds.File); err == nil {
				if b, ok := geo.CollectionBound(fc); ok {
					return deck.OverviewView(b)
				}
			}
		}
	}
	return deck.CityView()
}

func (s *MapService) boundaryMask(ctx context.Context) (orb.Polygon, bool, error) {
	b, ok := s.registry.Boundary()
	if !ok {
		return nil, false, nil
	}
	fc, err := s.loader.Load(ctx, b.File)
	if err != nil {
		s.fail(b.Name, err)
		return nil, false, fmt.Errorf("%s: %w", b.Name, err)
	}
	mask, ok := geo.OutsideMask(fc)
	return mask, ok, nil
}

// layerFor dispatches on the dataset kind: styled kinds run their
// styler over the loaded collection, everything else renders with the
// registry's static colors.
func (s *MapService) layerFor(ds catalog.Dataset, fc *geojson.FeatureCollection) deck.Layer {
	switch ds.Kind {
	case catalog.KindTransit:
		return deck.TransitLayer(ds.Name, style.Transit(fc))
	case catalog.KindTraffic:
		return deck.TrafficLayer(ds.Name, style.Traffic(fc))
	case catalog.KindParking:
		return deck.ParkingLayer(ds.Name, style.Parking(fc))
	default:
		return deck.GenericLayer(ds.Name, fc, ds.Fill, ds.Line)
	}
}

// tooltip wires hover captions: any styled dataset in the selection
// switches the whole map to per-feature HTML, otherwise the first
// registered selection's attribute template applies.
func (s *MapService) tooltip(names []string) *deck.Tooltip {
	for _, name := range names {
		if ds, ok := s.registry.Get(name); ok && styledKind(ds.Kind) {
			return &deck.Tooltip{HTML: "{tooltip_html}"}
		}
	}
	for _, name := range names {
		if ds, ok := s.registry.Get(name); ok {
			return &deck.Tooltip{Text: ds.Tooltip}
		}
	}
	return nil
}

// legends builds the sidebar blocks: selected-layer swatches first,
// then one block per styled kind present in the selection.
func (s *MapService) legends(ctx context.Context, names []string) []deck.Legend {
	var items []deck.LegendItem
	kinds := make(map[catalog.Kind]catalog.Dataset)
	for _, name := range names {
		ds, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		items = append(items, deck.LegendItem{Label: ds.Name, Color: ds.Fill})
		if _, seen := kinds[ds.Kind]; !seen {
			kinds[ds.Kind] = ds
		}
	}

	var legends []deck.Legend
	if len(items) > 0 {
		legends = append(legends, deck.SelectionLegend(items))
	}
	if ds, ok := kinds[catalog.KindTraffic]; ok {
		lo, hi := 0, 0
		if fc, err := s.loader.Load(ctx, ds.File); err == nil {
			if a, b, found := style.TrafficRange(fc); found {
				lo, hi = a, b
			}
		}
		legends = append(legends, deck.TrafficLegend(lo, hi))
	}
	if _, ok := kinds[catalog.KindTransit]; ok {
		legends = append(legends, deck.TransitLegend())
	}
	if _, ok := kinds[catalog.KindParking]; ok {
		legends = append(legends, deck.ParkingLegend())
	}
	return legends
}

func (s *MapService) fail(dataset string, err error) {
	if s.metrics != nil {
		s.metrics.DatasetError(dataset)
	}
	log.Warn().Str("dataset", dataset).Err(err).Msg("dataset unavailable")
}

func styledKind(k catalog.Kind) bool {
	return k == catalog.KindTransit || k == catalog.KindTraffic || k == catalog.KindParking
}
