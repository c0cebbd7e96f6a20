// Package deck builds renderable layer descriptors and camera state for
// the map client. Descriptors carry the styled feature collections plus
// everything a deck.gl-style renderer needs: layer class, accessor
// property names for per-feature styling, constant colors, and pixel
// clamps. The package computes, it does not render.
package deck

import (
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/opencurb/curbmap/internal/style"
)

// LayerType names the renderer layer class a descriptor maps to.
type LayerType string

const (
	// ScatterplotLayer renders point features as circles; position comes
	// from the feature geometry.
	ScatterplotLayer LayerType = "ScatterplotLayer"
	// GeoJSONLayer renders any feature geometry with fill and stroke.
	GeoJSONLayer LayerType = "GeoJsonLayer"
)

// Layer is one renderable map layer. Colors and sizes are either
// constant (the value fields) or per-feature (the *Prop fields naming a
// property written by a styler); a descriptor never sets both for the
// same channel.
type Layer struct {
	Type          LayerType                  `json:"type"`
	ID            string                     `json:"id"`
	Data          *geojson.FeatureCollection `json:"data"`
	Pickable      bool                       `json:"pickable"`
	AutoHighlight bool                       `json:"autoHighlight"`
	Stroked       bool                       `json:"stroked"`
	Filled        bool                       `json:"filled"`
	Opacity       float64                    `json:"opacity"`

	FillColor     *style.RGBA `json:"fillColor,omitempty"`
	FillColorProp string      `json:"fillColorProp,omitempty"`

	LineColor     *style.RGBA `json:"lineColor,omitempty"`
	LineColorProp string      `json:"lineColorProp,omitempty"`
	LineWidthProp string      `json:"lineWidthProp,omitempty"`
	LineWidthMin  float64     `json:"lineWidthMinPixels,omitempty"`
	LineWidthMax  float64     `json:"lineWidthMaxPixels,omitempty"`

	Radius     float64 `json:"radius,omitempty"`
	RadiusProp string  `json:"radiusProp,omitempty"`
	RadiusMin  float64 `json:"radiusMinPixels,omitempty"`
	RadiusMax  float64 `json:"radiusMaxPixels,omitempty"`

	HighlightColor *style.RGBA `json:"highlightColor,omitempty"`
}

// Tooltip tells the renderer how to caption hovered features. Exactly
// one field is set: HTML fills from a per-feature property template,
// Text from a dataset-level template over raw attributes.
type Tooltip struct {
	HTML string `json:"html,omitempty"`
	Text string `json:"text,omitempty"`
}

// LayerID derives a stable renderer id from a dataset name
// ("Traffic Volume" becomes "traffic-volume").
func LayerID(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
