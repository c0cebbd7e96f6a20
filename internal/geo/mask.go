package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	// maskPadding is the fraction of the boundary extent added on each
	// side of the dimming rectangle.
	maskPadding = 0.5
	// maskBufferDeg pushes the cutout slightly past the boundary edge so
	// no seam shows between mask and boundary.
	maskBufferDeg = 0.002
)

// OutsideMask builds the polygon that dims everything around the city: a
// rectangle covering the boundary's extent padded by half its size per
// axis, with the boundary itself (buffered outward by maskBufferDeg) cut
// out as holes. The bool is false when the collection holds no polygonal
// geometry, in which case no mask should be drawn.
func OutsideMask(boundary *geojson.FeatureCollection) (orb.Polygon, bool) {
	if boundary == nil {
		return nil, false
	}
	rings := outerRings(boundary)
	if len(rings) == 0 {
		return nil, false
	}

	bound, ok := CollectionBound(boundary)
	if !ok {
		return nil, false
	}
	padX := (bound.Max[0] - bound.Min[0]) * maskPadding
	padY := (bound.Max[1] - bound.Min[1]) * maskPadding
	outer := orb.Ring{
		{bound.Min[0] - padX, bound.Min[1] - padY},
		{bound.Max[0] + padX, bound.Min[1] - padY},
		{bound.Max[0] + padX, bound.Max[1] + padY},
		{bound.Min[0] - padX, bound.Max[1] + padY},
		{bound.Min[0] - padX, bound.Min[1] - padY},
	}

	mask := orb.Polygon{outer}
	for _, r := range rings {
		hole := offsetRing(r, maskBufferDeg)
		if len(hole) < 4 {
			continue
		}
		// holes wind opposite the shell
		if hole.Orientation() == orb.CCW {
			hole.Reverse()
		}
		mask = append(mask, hole)
	}
	return mask, true
}

// outerRings collects the exterior ring of every polygonal geometry.
func outerRings(fc *geojson.FeatureCollection) []orb.Ring {
	var rings []orb.Ring
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) > 0 && len(g[0]) >= 4 {
				rings = append(rings, g[0])
			}
		case orb.MultiPolygon:
			for _, p := range g {
				if len(p) > 0 && len(p[0]) >= 4 {
					rings = append(rings, p[0])
				}
			}
		}
	}
	return rings
}

// offsetRing pushes every vertex outward to where its two neighboring
// edges would sit after moving dist along their normals (a miter join).
// For the small offsets the mask needs this tracks a true buffer closely
// enough that the seam stays hidden.
func offsetRing(r orb.Ring, dist float64) orb.Ring {
	n := len(r) - 1 // rings repeat the first point
	if n < 3 {
		return nil
	}
	sign := 1.0
	if r.Orientation() == orb.CW {
		sign = -1
	}
	out := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		prev := r[(i-1+n)%n]
		cur := r[i]
		next := r[(i+1)%n]
		n1 := rightNormal(prev, cur)
		n2 := rightNormal(cur, next)
		mx, my := n1[0]+n2[0], n1[1]+n2[1]
		mm := mx*mx + my*my
		if mm < 1e-12 {
			// near-opposite normals would miter to a spike; fall back to
			// the incoming edge's normal
			out = append(out, orb.Point{
				cur[0] + sign*dist*n1[0],
				cur[1] + sign*dist*n1[1],
			})
			continue
		}
		scale := 2 * dist / mm
		out = append(out, orb.Point{
			cur[0] + sign*scale*mx,
			cur[1] + sign*scale*my,
		})
	}
	out = append(out, out[0])
	return out
}

// rightNormal returns the unit normal pointing right of the edge a→b.
// For a counterclockwise ring that is the outward direction.
func rightNormal(a, b orb.Point) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return orb.Point{}
	}
	return orb.Point{dy / length, -dx / length}
}
