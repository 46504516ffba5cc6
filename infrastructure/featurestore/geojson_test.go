package featurestore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prospect/internal/domain"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-60.0, -3.0]},
      "properties": {"site_id": "anomaly_a", "ndvi": 0.42, "slope": "2.5", "notes": "levee?"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-60.1, -3.1]},
      "properties": {"site_id": 7, "ndvi": 0.38}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-60.2, -3.2]},
      "properties": {"ndvi": 0.5}
    }
  ]
}`

func TestReadSites(t *testing.T) {
	sites, err := ReadSites(strings.NewReader(sampleCollection))
	require.NoError(t, err)
	require.Len(t, sites, 3)

	first := sites[0]
	assert.Equal(t, "anomaly_a", first.ID, "string site_id wins")
	assert.Equal(t, orb.Point{-60.0, -3.0}, first.Location)

	ndvi, ok := first.Features.Get("ndvi")
	require.True(t, ok)
	assert.InDelta(t, 0.42, ndvi, 1e-9)

	slope, ok := first.Features.Get("slope")
	require.True(t, ok, "numeric strings are coerced")
	assert.InDelta(t, 2.5, slope, 1e-9)

	_, ok = first.Features.Get("notes")
	assert.False(t, ok, "non-numeric properties are dropped")
	_, ok = first.Features.Get("site_id")
	assert.False(t, ok, "identity is not a feature")

	assert.Equal(t, "site_007", sites[1].ID, "numeric site_id is formatted")
	assert.Equal(t, "site_002", sites[2].ID, "positional fallback")
}

func TestReadSitesEmptyCollection(t *testing.T) {
	_, err := ReadSites(strings.NewReader(`{"type": "FeatureCollection", "features": []}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyInput))

	var emptyErr *domain.EmptyInputError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, "featurestore", emptyErr.Stage)
}

func TestReadSitesMissingGeometry(t *testing.T) {
	_, err := ReadSites(strings.NewReader(`{
	  "type": "FeatureCollection",
	  "features": [{"type": "Feature", "geometry": null, "properties": {"ndvi": 0.4}}]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing geometry")
}

func TestReadSitesMalformedJSON(t *testing.T) {
	_, err := ReadSites(strings.NewReader(`{"type": "FeatureColl`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode feature collection")
}

func TestLoadSites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleCollection), 0o644))

	sites, err := LoadSites(path)
	require.NoError(t, err)
	assert.Len(t, sites, 3)
}

func TestLoadSitesMissingFile(t *testing.T) {
	_, err := LoadSites(filepath.Join(t.TempDir(), "nope.geojson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open feature collection")
}
