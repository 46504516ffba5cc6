package domain

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb/geo"
)

// EvaluationUnit is a uniform evaluation subject: either a single site
// or a cluster. Its prompt context is a flat name→text mapping used to
// fill character prompt templates.
type EvaluationUnit interface {
	// SubjectID returns the stable identifier for this unit.
	SubjectID() string

	// PromptContext renders the unit's feature context for template
	// substitution. It returns an error when the unit is malformed and
	// cannot be evaluated at all.
	PromptContext() (map[string]string, error)
}

// SiteUnit adapts a scored Site for evaluation.
type SiteUnit struct {
	// Site is the candidate under evaluation.
	Site *Site

	// Region names the broader area, e.g. "Amazonia".
	Region string

	// FeatureKeys optionally lists feature names that must appear in the
	// context even when absent from the site (rendered as "n/a"), so that
	// templates referencing them still resolve.
	FeatureKeys []string
}

var _ EvaluationUnit = (*SiteUnit)(nil)

// SubjectID returns the site identifier.
func (u *SiteUnit) SubjectID() string {
	if u.Site == nil {
		return ""
	}
	return u.Site.ID
}

// PromptContext builds the template context for a site: coordinates,
// region, score, and one entry per feature. Absent features render as
// "n/a" rather than a zero that could be mistaken for data.
func (u *SiteUnit) PromptContext() (map[string]string, error) {
	if u.Site == nil {
		return nil, &MalformedUnitError{Err: fmt.Errorf("nil site")}
	}
	if u.Site.ID == "" {
		return nil, &MalformedUnitError{Err: fmt.Errorf("site has no id")}
	}

	ctx := map[string]string{
		"site_id":     u.Site.ID,
		"coordinates": fmt.Sprintf("%.5f, %.5f", u.Site.Location[0], u.Site.Location[1]),
		"region_name": regionOrDefault(u.Region),
	}

	if score, ok := u.Site.Score(); ok {
		ctx["site_score"] = formatScore(score)
	} else {
		ctx["site_score"] = "n/a"
	}

	for _, name := range u.Site.Features.Names() {
		v, _ := u.Site.Features.Get(name)
		ctx[name] = formatValue(v)
	}
	for _, name := range u.FeatureKeys {
		if _, ok := ctx[name]; !ok {
			ctx[name] = "n/a"
		}
	}

	return ctx, nil
}

// ClusterUnit adapts a Cluster for evaluation.
type ClusterUnit struct {
	// Cluster is the polygonized group under evaluation.
	Cluster *Cluster

	// Region names the broader area.
	Region string
}

var _ EvaluationUnit = (*ClusterUnit)(nil)

// SubjectID returns a stable identifier derived from the cluster id.
func (u *ClusterUnit) SubjectID() string {
	if u.Cluster == nil {
		return ""
	}
	return fmt.Sprintf("cluster_%03d", u.Cluster.ID)
}

// PromptContext builds the template context for a cluster: identity,
// geodesic area, and the member score statistics.
func (u *ClusterUnit) PromptContext() (map[string]string, error) {
	if u.Cluster == nil {
		return nil, &MalformedUnitError{Err: fmt.Errorf("nil cluster")}
	}
	if len(u.Cluster.SiteIDs) == 0 {
		return nil, &MalformedUnitError{
			SubjectID: u.SubjectID(),
			Err:       fmt.Errorf("cluster has no member sites"),
		}
	}

	stats := u.Cluster.Stats
	areaKm2 := geo.Area(u.Cluster.Polygon) / 1e6

	return map[string]string{
		"cluster_id":  strconv.Itoa(u.Cluster.ID),
		"region_name": regionOrDefault(u.Region),
		"point_count": strconv.Itoa(stats.Count),
		"area_km2":    fmt.Sprintf("%.1f", areaKm2),
		"mean_score":  formatScore(stats.Mean),
		"q25":         formatScore(stats.Q25),
		"q75":         formatScore(stats.Q75),
		"iqr":         formatScore(stats.IQR),
		"min_score":   formatScore(stats.Min),
		"max_score":   formatScore(stats.Max),
	}, nil
}

func regionOrDefault(region string) string {
	if region == "" {
		return "Amazonia"
	}
	return region
}

func formatScore(v float64) string { return fmt.Sprintf("%.3f", v) }

func formatValue(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
