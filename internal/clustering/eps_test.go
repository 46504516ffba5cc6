package clustering

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestSuggestEpsDegenerate(t *testing.T) {
	assert.Zero(t, SuggestEps(nil, 3))
	assert.Zero(t, SuggestEps([]orb.Point{{1, 2}}, 3))
}

func TestSuggestEpsCoincidentPoints(t *testing.T) {
	points := []orb.Point{{5, 5}, {5, 5}, {5, 5}}
	assert.Zero(t, SuggestEps(points, 2), "a flat zero curve suggests zero")
}

func TestSuggestEpsUniformGrid(t *testing.T) {
	// On a square every 2-distance is the side length, so the flat
	// curve returns that distance directly.
	points := []orb.Point{{0, 0}, {10, 0}, {0, 10}, {10, 10}}
	assert.InDelta(t, 10.0, SuggestEps(points, 2), 1e-9)
}

func TestSuggestEpsSeparatesDenseFromOutlier(t *testing.T) {
	// Dense cloud with spacing ~1 plus a far outlier: the knee lands
	// between the dense distances and the outlier's, so DBSCAN at the
	// suggested eps keeps the cloud and drops the outlier.
	points := []orb.Point{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0.5, 0.5},
		{500, 500},
	}

	eps := SuggestEps(points, 3)
	assert.Greater(t, eps, 0.0)
	assert.Less(t, eps, 400.0)

	labels := dbscan(points, eps, 3)
	assert.Equal(t, noiseLabel, labels[5])
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0, labels[i])
	}
}

func TestSuggestEpsDeterministic(t *testing.T) {
	points := []orb.Point{{0, 0}, {3, 4}, {6, 0}, {3, -4}, {100, 100}}
	first := SuggestEps(points, 2)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, SuggestEps(points, 2))
	}
}
