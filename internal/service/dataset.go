package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/geo"
)

// ErrUnknownDataset reports a name with no registry entry.
var ErrUnknownDataset = errors.New("unknown dataset")

const (
	defaultPreviewRows = 5
	maxPreviewRows     = 50
)

// DatasetService answers questions about registered datasets: their
// descriptors, availability on disk, and attribute previews.
type DatasetService struct {
	registry *catalog.Registry
	loader   *geo.Loader
}

// NewDatasetService creates a dataset service over the registry and
// loader.
func NewDatasetService(registry *catalog.Registry, loader *geo.Loader) *DatasetService {
	return &DatasetService{registry: registry, loader: loader}
}

// List describes every registered dataset in registry order. Datasets
// whose file is missing or unparsable stay in the list with Available
// false.
func (s *DatasetService) List(ctx context.Context) []DatasetInfo {
	infos := make([]DatasetInfo, 0, s.registry.Len())
	for _, ds := range s.registry.All() {
		infos = append(infos, s.describe(ctx, ds))
	}
	return infos
}

// Get describes one dataset by name.
func (s *DatasetService) Get(ctx context.Context, name string) (DatasetInfo, error) {
	ds, ok := s.registry.Get(name)
	if !ok {
		return DatasetInfo{}, fmt.Errorf("%s: %w", name, ErrUnknownDataset)
	}
	return s.describe(ctx, ds), nil
}

// Collection returns the named dataset normalized to WGS84.
func (s *DatasetService) Collection(ctx context.Context, name string) (*geojson.FeatureCollection, error) {
	ds, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownDataset)
	}
	return s.loader.Load(ctx, ds.File)
}

// Preview returns the attribute rows of the first limit features,
// geometry omitted. limit <= 0 falls back to a small default and large
// values are clamped.
func (s *DatasetService) Preview(ctx context.Context, name string, limit int) ([]geojson.Properties, error) {
	if limit <= 0 {
		limit = defaultPreviewRows
	}
	if limit > maxPreviewRows {
		limit = maxPreviewRows
	}
	fc, err := s.Collection(ctx, name)
	if err != nil {
		return nil, err
	}
	rows := make([]geojson.Properties, 0, limit)
	for _, f := range fc.Features {
		if len(rows) == limit {
			break
		}
		if f == nil {
			continue
		}
		row := maps.Clone(f.Properties)
		if row == nil {
			row = geojson.Properties{}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *DatasetService) describe(ctx context.Context, ds catalog.Dataset) DatasetInfo {
	info := DatasetInfo{
		Name:    ds.Name,
		File:    ds.File,
		Kind:    string(ds.Kind),
		Fill:    ds.Fill,
		Line:    ds.Line,
		Tooltip: ds.Tooltip,
	}
	if st, err := os.Stat(s.loader.Resolve(ds.File)); err == nil {
		info.Size = formatSize(st.Size())
	}
	fc, err := s.loader.Load(ctx, ds.File)
	if err != nil {
		return info
	}
	info.Available = true
	info.Features = len(fc.Features)
	return info
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
