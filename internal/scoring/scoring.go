// Package scoring converts per-site feature observations into a single
// normalized score per site using a weighted, missing-data-aware
// aggregation: each present feature contributes its clipped sub-score
// times its weight, and the total is renormalized over only the weights
// that were actually present.
package scoring

import (
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-prospect/internal/domain"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Rule defines the normalization for one feature: a non-negative weight
// plus exactly one of four sub-score forms.
type Rule struct {
	// Weight is the feature's contribution weight. Zero-weight features
	// are validated but never change a score.
	Weight float64 `yaml:"weight" json:"weight" validate:"gte=0"`

	// Ideal and Range select the band form:
	// sub = clip(1 - |value - ideal| / range, 0, 1).
	Ideal *float64 `yaml:"ideal,omitempty" json:"ideal,omitempty"`
	Range *float64 `yaml:"range,omitempty" json:"range,omitempty"`

	// MaxDeg selects the decreasing form: sub = clip(1 - value/max_deg, 0, 1).
	MaxDeg *float64 `yaml:"max_deg,omitempty" json:"max_deg,omitempty"`

	// NormDiv selects the increasing form: sub = clip(value/norm_div, 0, 1).
	NormDiv *float64 `yaml:"norm_div,omitempty" json:"norm_div,omitempty"`

	// Preferred selects the membership form: sub = 1 when the value is in
	// the set, 0 otherwise. Used for categorical rasters like landcover
	// class codes.
	Preferred []float64 `yaml:"preferred,omitempty" json:"preferred,omitempty"`
}

// Config maps feature names to their scoring rules.
type Config map[string]Rule

// Validate checks every rule: non-negative weight, exactly one sub-score
// form, and positive divisors (a zero range or divisor would divide by
// zero during scoring).
func (c Config) Validate() error {
	if len(c) == 0 {
		return domain.NewConfigError("features", "no features configured")
	}

	for _, name := range c.featureNames() {
		rule := c[name]
		if err := validate.Struct(rule); err != nil {
			return domain.NewConfigError(name, "invalid rule: %v", err)
		}

		forms := 0
		if rule.Ideal != nil || rule.Range != nil {
			if rule.Ideal == nil || rule.Range == nil {
				return domain.NewConfigError(name, "ideal and range must be set together")
			}
			if *rule.Range <= 0 {
				return domain.NewConfigError(name, "range must be positive, got %g", *rule.Range)
			}
			forms++
		}
		if rule.MaxDeg != nil {
			if *rule.MaxDeg <= 0 {
				return domain.NewConfigError(name, "max_deg must be positive, got %g", *rule.MaxDeg)
			}
			forms++
		}
		if rule.NormDiv != nil {
			if *rule.NormDiv <= 0 {
				return domain.NewConfigError(name, "norm_div must be positive, got %g", *rule.NormDiv)
			}
			forms++
		}
		if len(rule.Preferred) > 0 {
			forms++
		}
		if forms != 1 {
			return domain.NewConfigError(name, "exactly one of ideal/range, max_deg, norm_div, preferred is required")
		}
	}

	return nil
}

func (c Config) featureNames() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Engine scores candidate sites against a validated configuration.
type Engine struct {
	cfg Config
}

// NewEngine validates the configuration and returns a scoring engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Score computes the normalized score for each site, assigns it to the
// site, and returns the scores aligned index-for-index with the input.
// Scoring a site in isolation yields the same value as scoring it within
// a batch, and re-invocation over the same feature mappings is
// idempotent.
//
// A configured feature that is absent from every site is a setup
// mistake and fails with a ConfigError; a feature absent from some
// sites simply drops out of both the numerator and the weight sum for
// those sites. A site with no present weighted features scores exactly
// zero.
func (e *Engine) Score(sites []*domain.Site) ([]float64, error) {
	if err := e.checkCoverage(sites); err != nil {
		return nil, err
	}

	scores := make([]float64, len(sites))
	weightSums := make([]float64, len(sites))

	// Feature-major accumulation, mirroring vectorized per-column passes.
	// Sorted iteration keeps the arithmetic order deterministic.
	for _, name := range e.cfg.featureNames() {
		rule := e.cfg[name]
		for i, site := range sites {
			value, ok := site.Features.Get(name)
			if !ok {
				continue
			}
			scores[i] += rule.Weight * subScore(rule, value)
			weightSums[i] += rule.Weight
		}
	}

	for i, site := range sites {
		if weightSums[i] > 0 {
			scores[i] /= weightSums[i]
		} else {
			scores[i] = 0
		}
		site.SetScore(scores[i])
	}

	return scores, nil
}

// checkCoverage fails when a configured feature is missing from every
// site: there is nothing to score and the run is almost certainly
// pointed at the wrong input.
func (e *Engine) checkCoverage(sites []*domain.Site) error {
	for _, name := range e.cfg.featureNames() {
		present := false
		for _, site := range sites {
			if _, ok := site.Features.Get(name); ok {
				present = true
				break
			}
		}
		if !present {
			return domain.NewConfigError(name, "feature is absent from every site")
		}
	}
	return nil
}

// subScore computes the clipped [0,1] sub-score for one present value.
// Clipping before weighting guarantees the aggregate stays in [0,1]
// given non-negative weights.
func subScore(rule Rule, value float64) float64 {
	switch {
	case rule.Ideal != nil:
		return clip01(1 - abs(value-*rule.Ideal)/(*rule.Range))
	case rule.MaxDeg != nil:
		return clip01(1 - value/(*rule.MaxDeg))
	case rule.NormDiv != nil:
		return clip01(value / *rule.NormDiv)
	default:
		for _, preferred := range rule.Preferred {
			if value == preferred {
				return 1
			}
		}
		return 0
	}
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
