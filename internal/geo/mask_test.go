package geo

import (
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func squareRing(minX, minY, maxX, maxY float64) orb.Ring {
	return orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}
}

func TestOutsideMaskEmptyBoundary(t *testing.T) {
	is := is.New(t)

	_, ok := OutsideMask(nil)
	is.Equal(ok, false)

	_, ok = OutsideMask(geojson.NewFeatureCollection())
	is.Equal(ok, false)

	// points are not a boundary
	_, ok = OutsideMask(collectionOf(orb.Point{-77, 38.9}))
	is.Equal(ok, false)
}

func TestOutsideMaskPadsAndCutsOut(t *testing.T) {
	is := is.New(t)

	boundary := collectionOf(orb.Polygon{squareRing(0, 0, 1, 1)})
	mask, ok := OutsideMask(boundary)
	is.True(ok)
	is.Equal(len(mask), 2) // shell plus one hole

	shell := mask[0].Bound()
	is.Equal(shell.Min, orb.Point{-0.5, -0.5}) // half the extent per side
	is.Equal(shell.Max, orb.Point{1.5, 1.5})
	is.Equal(mask[0].Orientation(), orb.CCW)

	hole := mask[1]
	is.Equal(hole.Orientation(), orb.CW) // holes wind opposite the shell
	hb := hole.Bound()
	is.True(math.Abs(hb.Min[0]-(-maskBufferDeg)) < 1e-9)
	is.True(math.Abs(hb.Min[1]-(-maskBufferDeg)) < 1e-9)
	is.True(math.Abs(hb.Max[0]-(1+maskBufferDeg)) < 1e-9)
	is.True(math.Abs(hb.Max[1]-(1+maskBufferDeg)) < 1e-9)
}

func TestOutsideMaskMultiPolygonBoundary(t *testing.T) {
	is := is.New(t)

	boundary := collectionOf(orb.MultiPolygon{
		{squareRing(0, 0, 1, 1)},
		{squareRing(2, 0, 3, 1)},
	})
	mask, ok := OutsideMask(boundary)
	is.True(ok)
	is.Equal(len(mask), 3) // shell plus a hole per part

	shell := mask[0].Bound()
	is.Equal(shell.Min, orb.Point{-1.5, -0.5}) // 50% of a 3-wide extent
	is.Equal(shell.Max, orb.Point{4.5, 1.5})
}

func TestOutsideMaskIgnoresInteriorRings(t *testing.T) {
	is := is.New(t)

	withHole := orb.Polygon{
		squareRing(0, 0, 10, 10),
		{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}}, // courtyard, not a boundary part
	}
	mask, ok := OutsideMask(collectionOf(withHole))
	is.True(ok)
	is.Equal(len(mask), 2) // only the exterior ring becomes a cutout
}
