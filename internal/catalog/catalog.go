// Package catalog defines the dataset registry: which GeoJSON sources the
// map knows about, in what order they are offered, and how each one is
// styled and captioned.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opencurb/curbmap/internal/style"
)

// Kind selects the styling path for a dataset.
type Kind string

const (
	// KindGeneric renders a filled and stroked polygon layer with the
	// dataset's static colors.
	KindGeneric Kind = "generic"
	// KindTransit renders styled stop points.
	KindTransit Kind = "transit"
	// KindTraffic renders volume-ramped road lines.
	KindTraffic Kind = "traffic"
	// KindParking renders intensity-colored zone outlines.
	KindParking Kind = "parking"
	// KindBoundary marks the city boundary used for the outside mask.
	KindBoundary Kind = "boundary"
)

func (k Kind) valid() bool {
	switch k {
	case KindGeneric, KindTransit, KindTraffic, KindParking, KindBoundary:
		return true
	}
	return false
}

// Dataset describes one registered GeoJSON source.
type Dataset struct {
	Name    string     `yaml:"name" json:"name"`
	File    string     `yaml:"file" json:"file"`
	Kind    Kind       `yaml:"kind" json:"kind"`
	Fill    style.RGBA `yaml:"fill,flow" json:"fill"`
	Line    style.RGBA `yaml:"line,flow" json:"line"`
	Tooltip string     `yaml:"tooltip" json:"tooltip"`
}

// Registry is an ordered, immutable set of datasets. Order is the order
// layers are offered and drawn.
type Registry struct {
	datasets []Dataset
	byName   map[string]int
}

// New builds a registry from an ordered dataset list. Names must be
// unique and files non-empty; an empty kind becomes KindGeneric.
func New(datasets []Dataset) (*Registry, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("catalog: no datasets defined")
	}
	r := &Registry{
		datasets: make([]Dataset, 0, len(datasets)),
		byName:   make(map[string]int, len(datasets)),
	}
	for _, d := range datasets {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog: dataset with empty name")
		}
		if d.File == "" {
			return nil, fmt.Errorf("catalog: dataset %q has no file", d.Name)
		}
		if d.Kind == "" {
			d.Kind = KindGeneric
		}
		if !d.Kind.valid() {
			return nil, fmt.Errorf("catalog: dataset %q has unknown kind %q", d.Name, d.Kind)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate dataset %q", d.Name)
		}
		r.byName[d.Name] = len(r.datasets)
		r.datasets = append(r.datasets, d)
	}
	return r, nil
}

// Load reads a registry from a YAML file with a top-level datasets list.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var file struct {
		Datasets []Dataset `yaml:"datasets"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	r, err := New(file.Datasets)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return r, nil
}

// All returns the datasets in registry order.
func (r *Registry) All() []Dataset {
	out := make([]Dataset, len(r.datasets))
	copy(out, r.datasets)
	return out
}

// Get returns the dataset registered under name.
func (r *Registry) Get(name string) (Dataset, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Dataset{}, false
	}
	return r.datasets[i], true
}

// Names returns the dataset names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.datasets))
	for i, d := range r.datasets {
		out[i] = d.Name
	}
	return out
}

// Boundary returns the first dataset marked KindBoundary.
func (r *Registry) Boundary() (Dataset, bool) {
	for _, d := range r.datasets {
		if d.Kind == KindBoundary {
			return d, true
		}
	}
	return Dataset{}, false
}

// Len returns the number of registered datasets.
func (r *Registry) Len() int { return len(r.datasets) }

// Default returns the built-in registry: the six municipal datasets the
// dashboard ships with.
func Default() *Registry {
	r, err := New([]Dataset{
		{
			Name:    "Traffic Volume",
			File:    "traffic_data.geojson",
			Kind:    KindTraffic,
			Fill:    style.RGBA{255, 99, 71, 140},
			Line:    style.RGBA{255, 99, 71, 255},
			Tooltip: "Traffic: {AADT}",
		},
		{
			Name:    "Parking Zones",
			File:    "cleaned_parking_zones.geojson",
			Kind:    KindParking,
			Fill:    style.RGBA{34, 139, 34, 110},
			Line:    style.RGBA{34, 139, 34, 255},
			Tooltip: "Zone: {ZONE}",
		},
		{
			Name:    "Neighborhood Labels",
			File:    "neighborhood_labels.geojson",
			Kind:    KindGeneric,
			Fill:    style.RGBA{255, 215, 0, 120},
			Line:    style.RGBA{255, 215, 0, 255},
			Tooltip: "Neighborhood: {NAME}",
		},
		{
			Name:    "Public Transportation",
			File:    "public_transportation.geojson",
			Kind:    KindTransit,
			Fill:    style.RGBA{138, 43, 226, 140},
			Line:    style.RGBA{138, 43, 226, 255},
			Tooltip: "Transit: {NAME}",
		},
		{
			Name:    "Census Tracts",
			File:    "census_tracts_with_labels.geojson",
			Kind:    KindGeneric,
			Fill:    style.RGBA{112, 128, 144, 80},
			Line:    style.RGBA{112, 128, 144, 255},
			Tooltip: "Tract: {GEOID}",
		},
		{
			Name:    "DC Boundary",
			File:    "Washington_DC_Boundary_Stone_Area.geojson",
			Kind:    KindBoundary,
			Fill:    style.RGBA{0, 0, 0, 0},
			Line:    style.RGBA{0, 0, 0, 255},
			Tooltip: "DC Boundary",
		},
	})
	if err != nil {
		panic(err) // the built-in registry is statically valid
	}
	return r
}
