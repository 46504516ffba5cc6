package domain

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureSet(t *testing.T) {
	fs := NewFeatureSet(map[string]any{
		"ndvi":      0.42,
		"elevation": 120,
		"slope":     "3.5",
		"name":      "terra preta",
		"bad":       math.NaN(),
		"worse":     math.Inf(1),
	})

	v, ok := fs.Get("ndvi")
	require.True(t, ok)
	assert.Equal(t, 0.42, v)

	v, ok = fs.Get("elevation")
	require.True(t, ok)
	assert.Equal(t, 120.0, v)

	v, ok = fs.Get("slope")
	require.True(t, ok, "numeric strings are coerced")
	assert.Equal(t, 3.5, v)

	_, ok = fs.Get("name")
	assert.False(t, ok, "non-numeric strings are absent")
	_, ok = fs.Get("bad")
	assert.False(t, ok, "NaN never enters the set")
	_, ok = fs.Get("worse")
	assert.False(t, ok, "infinities never enter the set")
}

func TestFeatureSetAbsentVsZero(t *testing.T) {
	fs := NewFeatureSet(map[string]any{"carbon": 0.0})

	v, ok := fs.Get("carbon")
	require.True(t, ok, "a zero observation is present")
	assert.Zero(t, v)

	_, ok = fs.Get("moisture")
	assert.False(t, ok, "an unsampled feature is absent")
}

func TestFeatureSetSetDropsNonFinite(t *testing.T) {
	fs := make(FeatureSet)
	fs.Set("ok", 1.5)
	fs.Set("nan", math.NaN())

	_, ok := fs.Get("ok")
	assert.True(t, ok)
	_, ok = fs.Get("nan")
	assert.False(t, ok)
}

func TestFeatureSetNamesSorted(t *testing.T) {
	fs := NewFeatureSet(map[string]any{"b": 1.0, "a": 2.0, "c": 3.0})
	assert.Equal(t, []string{"a", "b", "c"}, fs.Names())
}

func TestNewSite(t *testing.T) {
	site, err := NewSite("site_001", orb.Point{-60, -3}, nil)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{-60, -3}, site.Location)

	_, ok := site.Score()
	assert.False(t, ok, "fresh sites carry no score")

	site.SetScore(0.7)
	score, ok := site.Score()
	require.True(t, ok)
	assert.Equal(t, 0.7, score)
}

func TestNewSitePolygonCentroid(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}

	site, err := NewSite("poly", square, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, site.Location[0], 1e-9)
	assert.InDelta(t, 1.0, site.Location[1], 1e-9)
}

func TestNewSiteValidation(t *testing.T) {
	_, err := NewSite("", orb.Point{}, nil)
	assert.Error(t, err)

	_, err = NewSite("x", nil, nil)
	assert.Error(t, err)
}
