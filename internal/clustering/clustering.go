// Package clustering groups high-scoring candidate sites into named
// geographic regions: quantile filter, planar projection, density
// clustering, convex-hull polygonization with an outward buffer, and
// member score statistics.
package clustering

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-prospect/internal/domain"
	"github.com/ahrav/go-prospect/internal/geo"
)

var validate = validator.New()

// EpsSetting is the DBSCAN neighborhood radius: either a fixed distance
// in meters or "auto", in which case the radius is derived from the
// k-nearest-neighbor distance curve of the data.
type EpsSetting struct {
	// Auto derives eps from the data when true.
	Auto bool

	// Meters is the fixed radius when Auto is false.
	Meters float64
}

// UnmarshalYAML accepts either the literal string "auto" or a number of
// meters.
func (e *EpsSetting) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil && s == "auto" {
		e.Auto = true
		e.Meters = 0
		return nil
	}

	var meters float64
	if err := value.Decode(&meters); err != nil {
		return fmt.Errorf("eps must be a number of meters or \"auto\", got %q", value.Value)
	}
	e.Auto = false
	e.Meters = meters
	return nil
}

// MarshalYAML renders the setting back to its config form.
func (e EpsSetting) MarshalYAML() (any, error) {
	if e.Auto {
		return "auto", nil
	}
	return e.Meters, nil
}

// Params configures a clustering pass. Eps and BufferMeters are
// interpreted in the planar projection's distance unit (meters).
type Params struct {
	// TopQuantile keeps only sites scoring at or above this quantile of
	// all scores before clustering.
	TopQuantile float64 `yaml:"top_quantile" validate:"gte=0,lt=1"`

	// Projection selects the planar coordinate system; see geo.NewProjection.
	Projection string `yaml:"projection"`

	// Eps is the DBSCAN neighborhood radius.
	Eps EpsSetting `yaml:"eps"`

	// MinSamples is the minimum neighborhood population (the point
	// itself included) for a core point.
	MinSamples int `yaml:"min_samples" validate:"min=1"`

	// BufferMeters expands each cluster hull outward.
	BufferMeters float64 `yaml:"buffer_m" validate:"gte=0"`
}

// Engine runs density clustering over scored sites. It is synchronous,
// single-pass, and never mutates its input.
type Engine struct {
	params Params
}

// NewEngine validates params and returns a clustering engine.
func NewEngine(params Params) (*Engine, error) {
	if err := validate.Struct(params); err != nil {
		return nil, domain.NewConfigError("clustering", "invalid params: %v", err)
	}
	if !params.Eps.Auto && params.Eps.Meters <= 0 {
		return nil, domain.NewConfigError("clustering.eps", "must be positive or \"auto\", got %g", params.Eps.Meters)
	}
	return &Engine{params: params}, nil
}

// Cluster groups the high-scoring subset of sites into polygonized
// clusters. Cluster ids ascend with the underlying DBSCAN label order,
// so identical input and eps reproduce identical membership and ids.
func (e *Engine) Cluster(sites []*domain.Site) ([]domain.Cluster, error) {
	if len(sites) == 0 {
		return nil, &domain.EmptyInputError{Stage: "clustering", Detail: "no sites supplied"}
	}

	scores := make([]float64, len(sites))
	for i, site := range sites {
		score, ok := site.Score()
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnscoredSite, site.ID)
		}
		scores[i] = score
	}

	threshold := Quantile(scores, e.params.TopQuantile)
	var top []*domain.Site
	var topScores []float64
	for i, site := range sites {
		if scores[i] >= threshold {
			top = append(top, site)
			topScores = append(topScores, scores[i])
		}
	}
	if len(top) == 0 {
		return nil, &domain.EmptyInputError{
			Stage:  "clustering",
			Detail: fmt.Sprintf("no sites at or above the %.2f quantile (threshold %.3f)", e.params.TopQuantile, threshold),
		}
	}

	locations := make([]orb.Point, len(top))
	for i, site := range top {
		locations[i] = site.Location
	}

	proj, err := geo.NewProjection(e.params.Projection, geo.Centroid(locations))
	if err != nil {
		return nil, domain.NewConfigError("clustering.projection", "%v", err)
	}

	planar := make([]orb.Point, len(top))
	for i, p := range locations {
		planar[i] = proj.Forward(p)
	}

	eps := e.params.Eps.Meters
	if e.params.Eps.Auto {
		eps = SuggestEps(planar, e.params.MinSamples)
	}
	if eps <= 0 {
		return nil, domain.NewConfigError("clustering.eps", "derived radius %.1fm is not positive; supply eps explicitly", eps)
	}

	labels := dbscan(planar, eps, e.params.MinSamples)

	byLabel := make(map[int][]int)
	maxLabel := -1
	for i, label := range labels {
		if label == noiseLabel {
			continue
		}
		byLabel[label] = append(byLabel[label], i)
		if label > maxLabel {
			maxLabel = label
		}
	}
	if maxLabel < 0 {
		return nil, fmt.Errorf("%w: eps=%.1fm min_samples=%d classified all %d points as noise",
			domain.ErrNoClusters, eps, e.params.MinSamples, len(top))
	}

	clusters := make([]domain.Cluster, 0, maxLabel+1)
	for label := 0; label <= maxLabel; label++ {
		members := byLabel[label]

		memberPoints := make([]orb.Point, len(members))
		memberScores := make([]float64, len(members))
		siteIDs := make([]string, len(members))
		for i, idx := range members {
			memberPoints[i] = planar[idx]
			memberScores[i] = topScores[idx]
			siteIDs[i] = top[idx].ID
		}

		hull := geo.ConvexHull(memberPoints)
		buffered := geo.Buffer(hull, e.params.BufferMeters)

		polygon := make(orb.Polygon, len(buffered))
		for r, ring := range buffered {
			geographic := make(orb.Ring, len(ring))
			for p, pt := range ring {
				geographic[p] = proj.Inverse(pt)
			}
			polygon[r] = geographic
		}

		clusters = append(clusters, domain.Cluster{
			ID:      label,
			SiteIDs: siteIDs,
			Polygon: polygon,
			Stats:   SummarizeScores(memberScores),
		})
	}

	return clusters, nil
}
