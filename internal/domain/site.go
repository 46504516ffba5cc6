// Package domain contains the core model types for the prospection
// pipeline: candidate sites, clusters, evaluation units, evaluation
// records, and the error taxonomy shared by the engines.
package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// FeatureSet maps feature names to numeric observations for one site.
// Absence is represented by a missing key, never by a NaN sentinel;
// non-finite values are rejected at construction so they cannot leak
// into score arithmetic.
type FeatureSet map[string]float64

// NewFeatureSet builds a FeatureSet from raw GeoJSON-style properties.
// Numeric values are taken as-is, numeric strings are coerced, and
// everything else (including NaN and infinities) is treated as absent.
// This mirrors the lossy upstream exports where raster samplers emit
// feature columns as strings.
func NewFeatureSet(properties map[string]any) FeatureSet {
	fs := make(FeatureSet, len(properties))
	for name, raw := range properties {
		if v, ok := coerceNumeric(raw); ok {
			fs[name] = v
		}
	}
	return fs
}

// Get returns the value for a feature and whether it is present.
func (fs FeatureSet) Get(name string) (float64, bool) {
	v, ok := fs[name]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Set records a feature value. Non-finite values are dropped so the set
// only ever holds usable observations.
func (fs FeatureSet) Set(name string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	fs[name] = value
}

// Names returns the present feature names in sorted order.
func (fs FeatureSet) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func coerceNumeric(raw any) (float64, bool) {
	var v float64
	switch val := raw.(type) {
	case float64:
		v = val
	case float32:
		v = float64(val)
	case int:
		v = float64(val)
	case int64:
		v = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Site is a single geographic candidate location under evaluation.
// Identity and features are fixed at construction; only the score is
// written later, exactly once per scoring pass.
type Site struct {
	// ID is the stable site identifier, unique within a run and never
	// reused.
	ID string

	// Location is the point position in geographic (lon, lat) coordinates.
	// When the source geometry is not a point this is its centroid.
	Location orb.Point

	// Geometry optionally carries the original source geometry.
	Geometry orb.Geometry

	// Features holds the sampled feature observations for this site.
	Features FeatureSet

	score    float64
	hasScore bool
}

// NewSite creates a Site from a source geometry and its feature
// properties. Point geometries are used directly; any other geometry
// contributes its centroid as the site location.
func NewSite(id string, geometry orb.Geometry, features FeatureSet) (*Site, error) {
	if id == "" {
		return nil, fmt.Errorf("site id cannot be empty")
	}
	if geometry == nil {
		return nil, fmt.Errorf("site %s: geometry cannot be nil", id)
	}

	var location orb.Point
	if pt, ok := geometry.(orb.Point); ok {
		location = pt
	} else {
		centroid, _ := planar.CentroidArea(geometry)
		location = centroid
	}

	if features == nil {
		features = make(FeatureSet)
	}

	return &Site{
		ID:       id,
		Location: location,
		Geometry: geometry,
		Features: features,
	}, nil
}

// Score returns the normalized site score and whether one has been
// assigned yet.
func (s *Site) Score() (float64, bool) {
	return s.score, s.hasScore
}

// SetScore assigns the normalized score. Recomputing from the same
// feature mapping is idempotent, so repeated assignment of the same
// value is permitted.
func (s *Site) SetScore(score float64) {
	s.score = score
	s.hasScore = true
}
