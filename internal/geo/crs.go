package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

// EPSG codes the loader understands.
const (
	epsgWGS84       = 4326
	epsgNAD83       = 4269
	epsgWebMercator = 3857
	epsgUTM18N      = 26918
)

// webMercatorExtent is the equatorial extent of Web Mercator in meters,
// the magnitude cutoff for the projection heuristic.
const webMercatorExtent = 20037508

// declaredEPSG reads the legacy GeoJSON "crs" member if the file carries
// one. It understands "EPSG:n", OGC EPSG URNs, and the CRS84 spelling of
// WGS84. The bool reports whether a declaration was present at all.
func declaredEPSG(fc *geojson.FeatureCollection) (int, bool, error) {
	raw, ok := fc.ExtraMembers["crs"]
	if !ok || raw == nil {
		return 0, false, nil
	}
	crs, ok := raw.(map[string]interface{})
	if !ok {
		return 0, true, fmt.Errorf("%w: crs member is not an object", ErrBadCRS)
	}
	props, _ := crs["properties"].(map[string]interface{})
	name, _ := props["name"].(string)
	if name == "" {
		return 0, true, fmt.Errorf("%w: crs declaration has no name", ErrBadCRS)
	}
	code, err := parseCRSName(name)
	if err != nil {
		return 0, true, err
	}
	return code, true, nil
}

func parseCRSName(name string) (int, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch n {
	case "URN:OGC:DEF:CRS:OGC:1.3:CRS84", "OGC:CRS84", "CRS84", "WGS84":
		return epsgWGS84, nil
	}
	if i := strings.LastIndex(n, ":"); i >= 0 && strings.Contains(n, "EPSG") {
		if code, err := strconv.Atoi(n[i+1:]); err == nil {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadCRS, name)
}

// inferEPSG guesses the source projection from raw coordinate magnitudes.
// This is a best-effort fallback for the handful of projections seen in
// the city's open data, not a general CRS detector: lon/lat-sized values
// mean geographic, values within the Web Mercator extent mean EPSG:3857,
// anything larger means the region's UTM zone (EPSG:26918).
func inferEPSG(fc *geojson.FeatureCollection) int {
	bound, ok := CollectionBound(fc)
	if !ok {
		return epsgWGS84
	}
	minX, minY := bound.Min[0], bound.Min[1]
	maxX, maxY := bound.Max[0], bound.Max[1]
	if minX >= -180 && maxX <= 180 && minY >= -90 && maxY <= 90 {
		return epsgWGS84
	}
	maxAbs := math.Max(
		math.Max(math.Abs(minX), math.Abs(minY)),
		math.Max(math.Abs(maxX), math.Abs(maxY)),
	)
	if maxAbs <= webMercatorExtent {
		return epsgWebMercator
	}
	return epsgUTM18N
}

// CollectionBound unions the bounds of every non-empty geometry in the
// collection; ok is false when there is nothing to bound.
func CollectionBound(fc *geojson.FeatureCollection) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if !found {
			bound = b
			found = true
			continue
		}
		bound = bound.Union(b)
	}
	return bound, found
}

// toWGS84 reprojects every feature in place. Geographic sources pass
// through untouched.
func toWGS84(fc *geojson.FeatureCollection, epsg int) error {
	switch epsg {
	case epsgWGS84, epsgNAD83:
		return nil
	case epsgWebMercator:
		for _, f := range fc.Features {
			f.Geometry = project.Geometry(f.Geometry, project.Mercator.ToWGS84)
		}
		return nil
	case epsgUTM18N:
		for _, f := range fc.Features {
			f.Geometry = project.Geometry(f.Geometry, utm18ToWGS84)
		}
		return nil
	default:
		return fmt.Errorf("%w: EPSG:%d is not supported", ErrBadCRS, epsg)
	}
}

// GRS80 ellipsoid and UTM zone 18N parameters.
const (
	grs80A       = 6378137.0
	grs80F       = 1 / 298.257222101
	utmScale     = 0.9996
	utmFalseEast = 500000.0
	utm18Lon0    = -75.0 * math.Pi / 180
)

// utm18ToWGS84 converts an EPSG:26918 easting/northing to lon/lat with
// the standard inverse transverse Mercator series on GRS80. Series error
// is far below coordinate precision for coordinates within the zone.
func utm18ToWGS84(p orb.Point) orb.Point {
	e2 := grs80F * (2 - grs80F)
	ep2 := e2 / (1 - e2)
	sq := math.Sqrt(1 - e2)
	e1 := (1 - sq) / (1 + sq)

	x := p[0] - utmFalseEast
	m := p[1] / utmScale
	mu := m / (grs80A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu)

	sin1, cos1 := math.Sincos(phi1)
	tan1 := sin1 / cos1
	c1 := ep2 * cos1 * cos1
	t1 := tan1 * tan1
	n1 := grs80A / math.Sqrt(1-e2*sin1*sin1)
	r1 := grs80A * (1 - e2) / math.Pow(1-e2*sin1*sin1, 1.5)
	d := x / (n1 * utmScale)

	lat := phi1 - (n1*tan1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lon := utm18Lon0 + (d-
		(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cos1

	return orb.Point{lon * 180 / math.Pi, lat * 180 / math.Pi}
}
