package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjection(t *testing.T) {
	origin := orb.Point{-60, -3}

	for _, name := range []string{"", "equirectangular", "local"} {
		proj, err := NewProjection(name, origin)
		require.NoError(t, err)
		assert.Equal(t, "equirectangular", proj.Name())
	}
	for _, name := range []string{"mercator", "3857"} {
		proj, err := NewProjection(name, origin)
		require.NoError(t, err)
		assert.Equal(t, "mercator", proj.Name())
	}

	_, err := NewProjection("utm", origin)
	assert.Error(t, err)
}

func TestEquirectangularRoundTrip(t *testing.T) {
	proj := NewEquirectangular(orb.Point{-60, -3})

	points := []orb.Point{
		{-60, -3},
		{-60.01, -3.01},
		{-59.95, -2.98},
	}
	for _, p := range points {
		back := proj.Inverse(proj.Forward(p))
		assert.InDelta(t, p[0], back[0], 1e-9)
		assert.InDelta(t, p[1], back[1], 1e-9)
	}
}

func TestEquirectangularDistances(t *testing.T) {
	proj := NewEquirectangular(orb.Point{-60, -3})

	// One degree of latitude is ~111.2km regardless of longitude.
	a := proj.Forward(orb.Point{-60, -3})
	b := proj.Forward(orb.Point{-60, -2})
	assert.InDelta(t, 111194.9, planar.Distance(a, b), 10)

	// One degree of longitude shrinks with cos(latitude).
	c := proj.Forward(orb.Point{-59, -3})
	assert.InDelta(t, 111194.9*math.Cos(3*math.Pi/180), planar.Distance(a, c), 10)
}

func TestWebMercatorRoundTrip(t *testing.T) {
	proj, err := NewProjection("mercator", orb.Point{})
	require.NoError(t, err)

	p := orb.Point{-60.123, -3.456}
	back := proj.Inverse(proj.Forward(p))
	assert.InDelta(t, p[0], back[0], 1e-6)
	assert.InDelta(t, p[1], back[1], 1e-6)
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, orb.Point{}, Centroid(nil))
	assert.Equal(t, orb.Point{2, 3}, Centroid([]orb.Point{{1, 2}, {3, 4}}))
}

func TestConvexHull(t *testing.T) {
	// Square plus interior point: the hull drops the interior.
	points := []orb.Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2}}

	hull := ConvexHull(points)
	require.Len(t, hull, 5, "closed ring over the four corners")
	assert.Equal(t, hull[0], hull[len(hull)-1], "ring is closed")

	for _, corner := range []orb.Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}} {
		assert.Contains(t, []orb.Point(hull), corner)
	}
	assert.NotContains(t, []orb.Point(hull[:4]), orb.Point{2, 2})
}

func TestConvexHullDegenerate(t *testing.T) {
	assert.Nil(t, ConvexHull(nil))

	single := ConvexHull([]orb.Point{{1, 1}})
	assert.Equal(t, orb.Ring{{1, 1}}, single, "a single point closes onto itself")

	pair := ConvexHull([]orb.Point{{0, 0}, {1, 1}})
	assert.Equal(t, orb.Point{0, 0}, pair[0])
	assert.Equal(t, pair[0], pair[len(pair)-1])
}

func TestConvexHullOrientation(t *testing.T) {
	hull := ConvexHull([]orb.Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}})

	// Shoelace area is positive for counter-clockwise winding.
	var area float64
	for i := 0; i < len(hull)-1; i++ {
		area += hull[i][0]*hull[i+1][1] - hull[i+1][0]*hull[i][1]
	}
	assert.Greater(t, area, 0.0)
}

func TestBufferExpandsHull(t *testing.T) {
	hull := ConvexHull([]orb.Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}})

	buffered := Buffer(hull, 50)
	require.Len(t, buffered, 1)

	// All original vertices are strictly inside the buffered polygon,
	// and a point 50+ units outside any edge is not.
	for _, v := range hull {
		assert.True(t, planar.PolygonContains(buffered, v))
	}
	assert.True(t, planar.PolygonContains(buffered, orb.Point{-30, 50}),
		"point within the buffer distance of an edge")
	assert.False(t, planar.PolygonContains(buffered, orb.Point{-80, 50}),
		"point beyond the buffer distance")
}

func TestBufferSinglePoint(t *testing.T) {
	buffered := Buffer(orb.Ring{{10, 10}}, 5)
	require.Len(t, buffered, 1)

	assert.True(t, planar.PolygonContains(buffered, orb.Point{10, 10}))
	assert.True(t, planar.PolygonContains(buffered, orb.Point{14, 10}))
	assert.False(t, planar.PolygonContains(buffered, orb.Point{16, 10}))
}

func TestBufferZeroDistance(t *testing.T) {
	hull := ConvexHull([]orb.Point{{0, 0}, {10, 0}, {5, 8}})
	assert.Equal(t, orb.Polygon{hull}, Buffer(hull, 0))
}
