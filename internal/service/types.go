// Package service assembles the map presentation for handlers: dataset
// descriptors, transit stop lookups, and the render bundle the client
// draws. Services hold the registry and loader; transport stays thin.
//
// Huma reads the struct tags below for OpenAPI schemas and validation,
// so the same types travel from service to wire unchanged.
package service

import (
	"github.com/opencurb/curbmap/internal/deck"
	"github.com/opencurb/curbmap/internal/style"
)

// Selection is one map request: which datasets to draw, in draw order,
// and optionally a transit stop to focus on.
type Selection struct {
	Datasets []string `json:"datasets" doc:"Dataset names in draw order"`
	Stop     string   `json:"stop,omitempty" doc:"Transit stop label to focus"`
}

// DatasetInfo describes a registered dataset and whether its file
// currently loads.
type DatasetInfo struct {
	Name      string     `json:"name" doc:"Display name" example:"Traffic Volume"`
	File      string     `json:"file" doc:"Source file name" example:"traffic_data.geojson"`
	Kind      string     `json:"kind" enum:"generic,transit,traffic,parking,boundary" doc:"Styling kind"`
	Fill      style.RGBA `json:"fill" doc:"Fill color, RGBA channels 0-255"`
	Line      style.RGBA `json:"line" doc:"Line color, RGBA channels 0-255"`
	Tooltip   string     `json:"tooltip,omitempty" doc:"Hover template over raw attributes" example:"Traffic: {AADT}"`
	Size      string     `json:"size,omitempty" doc:"Human-readable file size" example:"1.2 MB"`
	Available bool       `json:"available" doc:"Whether the file loads and parses"`
	Features  int        `json:"features" doc:"Feature count after normalization"`
}

// Stop is one searchable transit stop.
type Stop struct {
	Label string  `json:"label" doc:"Stop name" example:"METRO CENTER"`
	Mode  string  `json:"mode" doc:"Source TYPE value" example:"METRO STATION"`
	Lon   float64 `json:"lon" doc:"Longitude (WGS84)"`
	Lat   float64 `json:"lat" doc:"Latitude (WGS84)"`
	Lines int     `json:"lines" doc:"Number of lines serving the stop"`
}

// MapBundle is everything the client renders for one selection. Errors
// carries per-dataset failures as display strings; the map still shows
// whatever loaded.
type MapBundle struct {
	Layers  []deck.Layer   `json:"layers" doc:"Renderable layers, bottom to top"`
	View    deck.ViewState `json:"view" doc:"Initial camera"`
	Tooltip *deck.Tooltip  `json:"tooltip,omitempty" doc:"Hover caption wiring"`
	Legends []deck.Legend  `json:"legends,omitempty" doc:"Sidebar legend blocks"`
	Errors  []string       `json:"errors,omitempty" doc:"Datasets that failed to load"`
}
