package domain

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteUnitPromptContext(t *testing.T) {
	site, err := NewSite("site_007", orb.Point{-60.12345, -3.54321},
		NewFeatureSet(map[string]any{"ndvi": 0.42, "slope": 3.0}))
	require.NoError(t, err)
	site.SetScore(0.876)

	unit := &SiteUnit{Site: site, Region: "Upper Xingu", FeatureKeys: []string{"ndvi", "carbon"}}
	assert.Equal(t, "site_007", unit.SubjectID())

	ctx, err := unit.PromptContext()
	require.NoError(t, err)

	assert.Equal(t, "site_007", ctx["site_id"])
	assert.Equal(t, "-60.12345, -3.54321", ctx["coordinates"])
	assert.Equal(t, "Upper Xingu", ctx["region_name"])
	assert.Equal(t, "0.876", ctx["site_score"])
	assert.Equal(t, "0.42", ctx["ndvi"])
	assert.Equal(t, "3", ctx["slope"])
	assert.Equal(t, "n/a", ctx["carbon"], "requested but unsampled features render n/a")
}

func TestSiteUnitDefaults(t *testing.T) {
	site, err := NewSite("s", orb.Point{-60, -3}, nil)
	require.NoError(t, err)

	unit := &SiteUnit{Site: site}
	ctx, err := unit.PromptContext()
	require.NoError(t, err)

	assert.Equal(t, "Amazonia", ctx["region_name"])
	assert.Equal(t, "n/a", ctx["site_score"], "unscored sites render n/a, not zero")
}

func TestSiteUnitMalformed(t *testing.T) {
	unit := &SiteUnit{}
	assert.Empty(t, unit.SubjectID())

	_, err := unit.PromptContext()
	var malformed *MalformedUnitError
	require.ErrorAs(t, err, &malformed)
}

func TestClusterUnitPromptContext(t *testing.T) {
	cluster := &Cluster{
		ID:      3,
		SiteIDs: []string{"a", "b", "c"},
		Polygon: orb.Polygon{{{-60.01, -3.01}, {-59.99, -3.01}, {-59.99, -2.99}, {-60.01, -2.99}, {-60.01, -3.01}}},
		Stats: ClusterStats{
			Mean: 0.8, Q25: 0.75, Q75: 0.85, IQR: 0.1,
			Min: 0.7, Max: 0.9, Count: 3,
		},
	}

	unit := &ClusterUnit{Cluster: cluster}
	assert.Equal(t, "cluster_003", unit.SubjectID())

	ctx, err := unit.PromptContext()
	require.NoError(t, err)

	assert.Equal(t, "3", ctx["cluster_id"])
	assert.Equal(t, "Amazonia", ctx["region_name"])
	assert.Equal(t, "3", ctx["point_count"])
	assert.Equal(t, "0.800", ctx["mean_score"])
	assert.Equal(t, "0.100", ctx["iqr"])
	assert.Equal(t, "0.700", ctx["min_score"])
	assert.Equal(t, "0.900", ctx["max_score"])

	// ~2.2km x 2.2km square.
	assert.NotEqual(t, "0.0", ctx["area_km2"])
}

func TestClusterUnitMalformed(t *testing.T) {
	empty := &ClusterUnit{Cluster: &Cluster{ID: 1}}
	_, err := empty.PromptContext()
	var malformed *MalformedUnitError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "cluster_001", malformed.SubjectID)

	nilCluster := &ClusterUnit{}
	_, err = nilCluster.PromptContext()
	assert.True(t, errors.As(err, &malformed))
}
