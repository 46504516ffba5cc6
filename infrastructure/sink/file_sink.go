// Package sink persists pipeline artifacts to the filesystem: scored
// site and cluster GeoJSON collections, per-unit evaluation records,
// the failure ledger, and the human-readable report.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"

	"github.com/ahrav/go-prospect/internal/domain"
	"github.com/ahrav/go-prospect/internal/ports"
)

// Artifact filenames within a run directory.
const (
	scoredSitesFile = "scored_sites.geojson"
	clustersFile    = "clusters.geojson"
	recordsDir      = "evaluations"
	ledgerFile      = "failures.json"
	reportMarkdown  = "report.md"
	reportCSV       = "report.csv"
)

// FileSink writes all artifacts under a per-run directory so repeated
// runs never clobber each other.
type FileSink struct {
	dir string
}

var _ ports.ArtifactSink = (*FileSink)(nil)

// NewFileSink creates the run directory outDir/runID and returns a sink
// writing into it.
func NewFileSink(outDir, runID string) (*FileSink, error) {
	if outDir == "" {
		return nil, domain.NewConfigError("output.dir", "output directory is required")
	}
	dir := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Dir returns the run directory artifacts are written into.
func (s *FileSink) Dir() string { return s.dir }

// WriteScoredSites persists the scored sites as a GeoJSON feature
// collection. Each feature carries the original feature values plus the
// assigned score.
func (s *FileSink) WriteScoredSites(sites []*domain.Site) error {
	fc := geojson.NewFeatureCollection()
	for _, site := range sites {
		feature := geojson.NewFeature(site.Geometry)
		feature.Properties["site_id"] = site.ID
		for _, name := range site.Features.Names() {
			v, _ := site.Features.Get(name)
			feature.Properties[name] = v
		}
		if score, ok := site.Score(); ok {
			feature.Properties["score"] = score
		}
		fc.Append(feature)
	}
	return s.writeJSON(scoredSitesFile, fc)
}

// WriteClusters persists the cluster polygons as a GeoJSON feature
// collection with the member score statistics as properties.
func (s *FileSink) WriteClusters(clusters []domain.Cluster) error {
	fc := geojson.NewFeatureCollection()
	for _, cluster := range clusters {
		feature := geojson.NewFeature(cluster.Polygon)
		feature.Properties["cluster_id"] = cluster.ID
		feature.Properties["site_ids"] = cluster.SiteIDs
		feature.Properties["mean"] = cluster.Stats.Mean
		feature.Properties["q25"] = cluster.Stats.Q25
		feature.Properties["q75"] = cluster.Stats.Q75
		feature.Properties["iqr"] = cluster.Stats.IQR
		feature.Properties["min"] = cluster.Stats.Min
		feature.Properties["max"] = cluster.Stats.Max
		feature.Properties["n_pts"] = cluster.Stats.Count
		fc.Append(feature)
	}
	return s.writeJSON(clustersFile, fc)
}

// WriteRecords persists one JSON document per evaluation record under
// the evaluations subdirectory, named by subject id.
func (s *FileSink) WriteRecords(records []domain.EvaluationRecord) error {
	dir := filepath.Join(s.dir, recordsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create records directory: %w", err)
	}

	for _, record := range records {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", record.SubjectID, err)
		}
		path := filepath.Join(dir, record.SubjectID+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write record %s: %w", record.SubjectID, err)
		}
	}
	return nil
}

// WriteLedger persists the failure ledger. An empty ledger still writes
// a file so a missing artifact is distinguishable from a clean run.
func (s *FileSink) WriteLedger(ledger *domain.FailureLedger) error {
	entries := ledger.Entries()
	if entries == nil {
		entries = []domain.FailureEntry{}
	}
	return s.writeJSON(ledgerFile, entries)
}

func (s *FileSink) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
