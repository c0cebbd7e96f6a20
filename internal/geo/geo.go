// Package geo loads municipal GeoJSON datasets and normalizes them to
// WGS84 longitude/latitude. It also derives the dimming mask that covers
// the area outside the city boundary.
package geo

import (
	"errors"

	"github.com/paulmach/orb"
)

// Loader failure modes. Wrapped errors carry the dataset path.
var (
	ErrNotFound   = errors.New("dataset file not found")
	ErrEmptyFile  = errors.New("dataset file is empty")
	ErrBadGeoJSON = errors.New("invalid geojson")
	ErrNoFeatures = errors.New("no usable features")
	ErrBadCRS     = errors.New("unsupported coordinate reference system")
)

// emptyGeometry reports whether g carries no coordinates at all.
func emptyGeometry(g orb.Geometry) bool {
	switch g := g.(type) {
	case nil:
		return true
	case orb.MultiPoint:
		return len(g) == 0
	case orb.LineString:
		return len(g) == 0
	case orb.MultiLineString:
		return len(g) == 0
	case orb.Ring:
		return len(g) == 0
	case orb.Polygon:
		return len(g) == 0
	case orb.MultiPolygon:
		return len(g) == 0
	case orb.Collection:
		return len(g) == 0
	default:
		return false
	}
}
