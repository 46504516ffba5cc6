// Package featurestore loads candidate sites with their sampled
// features from GeoJSON feature collections, the interchange format the
// upstream raster samplers export.
package featurestore

import (
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/ahrav/go-prospect/internal/domain"
)

// LoadSites reads a GeoJSON feature collection from the given path and
// returns one site per feature.
func LoadSites(path string) ([]*domain.Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feature collection: %w", err)
	}
	defer f.Close()

	sites, err := ReadSites(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sites, nil
}

// ReadSites decodes a GeoJSON feature collection into sites. Site
// identity comes from the "site_id" property when present, otherwise
// from the feature's position in the collection. Numeric and
// numeric-string properties become features; everything else is
// dropped.
func ReadSites(r io.Reader) ([]*domain.Site, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feature collection: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, &domain.EmptyInputError{
			Stage:  "featurestore",
			Detail: "feature collection has no features",
		}
	}

	sites := make([]*domain.Site, 0, len(fc.Features))
	for i, feature := range fc.Features {
		if feature.Geometry == nil {
			return nil, fmt.Errorf("feature %d: missing geometry", i)
		}

		id := siteID(feature.Properties, i)
		features := domain.NewFeatureSet(feature.Properties)
		delete(features, "site_id") // identity, not an observation

		site, err := domain.NewSite(id, feature.Geometry, features)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// siteID resolves a feature's identity: an explicit site_id property
// wins, otherwise the positional fallback keeps ids stable for a fixed
// input file.
func siteID(properties map[string]any, index int) string {
	switch v := properties["site_id"].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("site_%03d", int(v))
	}
	return fmt.Sprintf("site_%03d", index)
}
