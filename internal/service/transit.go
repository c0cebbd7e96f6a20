package service

import (
	"context"
	"errors"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/geo"
	"github.com/opencurb/curbmap/internal/style"
)

// ErrNoTransitDataset reports a registry without a transit entry.
var ErrNoTransitDataset = errors.New("no transit dataset registered")

// TransitService resolves stop listings and searches against the
// registry's transit dataset.
type TransitService struct {
	registry *catalog.Registry
	loader   *geo.Loader
}

// NewTransitService creates a transit service over the registry and
// loader.
func NewTransitService(registry *catalog.Registry, loader *geo.Loader) *TransitService {
	return &TransitService{registry: registry, loader: loader}
}

// Stops lists the searchable stops in data order, one per distinct
// label.
func (s *TransitService) Stops(ctx context.Context) ([]Stop, error) {
	styled, err := s.styled(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(styled.Features))
	stops := make([]Stop, 0, len(styled.Features))
	for _, f := range styled.Features {
		st := stopFrom(f)
		if st.Label == "" {
			continue
		}
		if _, dup := seen[st.Label]; dup {
			continue
		}
		seen[st.Label] = struct{}{}
		stops = append(stops, st)
	}
	return stops, nil
}

// Find returns the first stop whose label matches exactly.
func (s *TransitService) Find(ctx context.Context, label string) (Stop, bool, error) {
	styled, err := s.styled(ctx)
	if err != nil {
		return Stop{}, false, err
	}
	for _, f := range styled.Features {
		if style.Column(f.Properties, "label", "") == label {
			return stopFrom(f), true, nil
		}
	}
	return Stop{}, false, nil
}

// Search filters stops by case-insensitive substring match on the
// label. An empty query returns every stop.
func (s *TransitService) Search(ctx context.Context, query string) ([]Stop, error) {
	stops, err := s.Stops(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return stops, nil
	}
	matched := make([]Stop, 0, len(stops))
	for _, st := range stops {
		if strings.Contains(strings.ToLower(st.Label), q) {
			matched = append(matched, st)
		}
	}
	return matched, nil
}

func (s *TransitService) styled(ctx context.Context) (*geojson.FeatureCollection, error) {
	ds, ok := s.dataset()
	if !ok {
		return nil, ErrNoTransitDataset
	}
	fc, err := s.loader.Load(ctx, ds.File)
	if err != nil {
		return nil, err
	}
	return style.Transit(fc), nil
}

func (s *TransitService) dataset() (catalog.Dataset, bool) {
	for _, ds := range s.registry.All() {
		if ds.Kind == catalog.KindTransit {
			return ds, true
		}
	}
	return catalog.Dataset{}, false
}

func stopFrom(f *geojson.Feature) Stop {
	return Stop{
		Label: style.Column(f.Properties, "label", ""),
		Mode:  style.Column(f.Properties, "mode", "Other"),
		Lon:   style.Column(f.Properties, "lon", 0.0),
		Lat:   style.Column(f.Properties, "lat", 0.0),
		Lines: style.Column(f.Properties, "lines_count", 0),
	}
}
