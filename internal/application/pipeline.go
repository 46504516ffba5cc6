package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-prospect/infrastructure/llm"
	"github.com/ahrav/go-prospect/infrastructure/sink"
	"github.com/ahrav/go-prospect/internal/clustering"
	"github.com/ahrav/go-prospect/internal/domain"
	"github.com/ahrav/go-prospect/internal/evaluation"
	"github.com/ahrav/go-prospect/internal/ports"
	"github.com/ahrav/go-prospect/internal/scoring"
)

// Pipeline runs the full prospection flow: score, cluster, evaluate,
// persist. Stages are sequential; concurrency lives inside the
// evaluation stage.
type Pipeline struct {
	cfg     *Config
	logger  *slog.Logger
	service ports.EvaluationService
	metrics ports.MetricsCollector
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithEvaluationService injects an evaluation service, replacing the
// provider built from configuration. Used by tests and offline runs.
func WithEvaluationService(service ports.EvaluationService) PipelineOption {
	return func(p *Pipeline) { p.service = service }
}

// WithMetrics attaches a metrics collector to the evaluation stage.
func WithMetrics(collector ports.MetricsCollector) PipelineOption {
	return func(p *Pipeline) { p.metrics = collector }
}

// NewPipeline builds a pipeline from validated configuration.
func NewPipeline(cfg *Config, logger *slog.Logger, opts ...PipelineOption) (*Pipeline, error) {
	if cfg == nil {
		return nil, domain.NewConfigError("config", "configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// buildService constructs the provider-backed evaluation service with
// its middleware chain from configuration. It runs lazily on the first
// Evaluate call so scoring-only invocations never need an API key.
func (p *Pipeline) buildService() (ports.EvaluationService, error) {
	apiKey, err := p.cfg.APIKey()
	if err != nil {
		return nil, err
	}

	var middleware []llm.Middleware
	if rl := p.cfg.Evaluation.RateLimit; rl.RequestsPerSecond > 0 {
		burst := rl.Burst
		if burst < 1 {
			burst = 1
		}
		middleware = append(middleware, llm.RateLimitMiddleware(rate.Limit(rl.RequestsPerSecond), burst))
	}
	if p.cfg.Evaluation.TimeoutSeconds > 0 {
		middleware = append(middleware,
			llm.TimeoutMiddleware(time.Duration(p.cfg.Evaluation.TimeoutSeconds)*time.Second))
	}
	if p.metrics != nil {
		middleware = append(middleware, llm.MetricsMiddleware(p.metrics))
	}
	middleware = append(middleware, llm.TracingMiddleware("prospect"))

	return llm.NewClient(p.cfg.Evaluation.Provider, llm.ClientConfig{
		APIKey:     apiKey,
		Model:      p.cfg.Evaluation.Model,
		Middleware: middleware,
	})
}

// Result aggregates everything a run produced.
type Result struct {
	// RunID identifies the run and names its artifact directory.
	RunID string

	// Scores holds the per-site scores aligned with the loaded sites.
	Scores []float64

	// Clusters are the polygonized site groups.
	Clusters []domain.Cluster

	// Records are the per-unit evaluation records.
	Records []domain.EvaluationRecord

	// Ledger lists permanently failed evaluation tasks.
	Ledger *domain.FailureLedger

	// OutDir is the directory artifacts were written to.
	OutDir string
}

// Run executes the full pipeline over the sites loaded from the input
// collection and persists every artifact through the sink.
func (p *Pipeline) Run(ctx context.Context, sites []*domain.Site) (*Result, error) {
	return p.execute(ctx, sites, true)
}

// EvaluateSites runs scoring and per-site evaluation only, skipping the
// clustering stage. Artifacts are persisted exactly as in a full run.
func (p *Pipeline) EvaluateSites(ctx context.Context, sites []*domain.Site) (*Result, error) {
	return p.execute(ctx, sites, false)
}

func (p *Pipeline) execute(ctx context.Context, sites []*domain.Site, withClusters bool) (*Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	artifacts, err := sink.NewFileSink(p.cfg.Output.Dir, runID)
	if err != nil {
		return nil, err
	}
	result := &Result{RunID: runID, OutDir: artifacts.Dir()}

	// Stage 1: score.
	scores, err := p.Score(sites)
	if err != nil {
		return nil, err
	}
	result.Scores = scores
	logger.Info("scored sites", "count", len(sites))
	if err := artifacts.WriteScoredSites(sites); err != nil {
		return nil, err
	}

	// Stage 2: cluster. An all-noise outcome is a data condition, not a
	// failure: the run continues with site evaluation only.
	if withClusters {
		clusters, err := p.ClusterSites(sites)
		switch {
		case err == nil:
			result.Clusters = clusters
			logger.Info("formed clusters", "count", len(clusters))
			if err := artifacts.WriteClusters(clusters); err != nil {
				return nil, err
			}
		case errors.Is(err, domain.ErrNoClusters):
			logger.Warn("no clusters formed", "reason", err)
		default:
			return nil, err
		}
	}

	// Stage 3: evaluate sites and clusters as one batch.
	units := p.buildUnits(sites, result.Clusters)
	records, ledger, err := p.Evaluate(ctx, units)
	result.Records = records
	result.Ledger = ledger
	if err != nil {
		// Cancellation mid-batch: persist what completed, then surface it.
		if werr := p.persistEvaluation(artifacts, result); werr != nil {
			return result, errors.Join(err, werr)
		}
		return result, err
	}
	logger.Info("evaluated units",
		"records", len(records), "failures", ledger.Len())

	if err := p.persistEvaluation(artifacts, result); err != nil {
		return result, err
	}
	return result, nil
}

// Score runs the scoring engine over the sites.
func (p *Pipeline) Score(sites []*domain.Site) ([]float64, error) {
	engine, err := scoring.NewEngine(p.cfg.Features)
	if err != nil {
		return nil, err
	}
	return engine.Score(sites)
}

// ClusterSites runs the clustering engine over scored sites.
func (p *Pipeline) ClusterSites(sites []*domain.Site) ([]domain.Cluster, error) {
	engine, err := clustering.NewEngine(p.cfg.Clustering)
	if err != nil {
		return nil, err
	}
	return engine.Cluster(sites)
}

// Evaluate fans the units out across the character panel.
func (p *Pipeline) Evaluate(
	ctx context.Context, units []domain.EvaluationUnit,
) ([]domain.EvaluationRecord, *domain.FailureLedger, error) {
	if p.service == nil {
		service, err := p.buildService()
		if err != nil {
			return nil, nil, err
		}
		p.service = service
	}

	orchestrator, err := evaluation.NewOrchestrator(p.service, evaluation.Options{
		Characters: p.cfg.Panel(),
		Summary:    p.cfg.SummaryCharacter(),
		BaseParams: ports.RequestParams{
			MaxTokens:   p.cfg.Evaluation.MaxTokens,
			Temperature: p.cfg.Evaluation.Temperature,
		},
		Retry:          p.cfg.Evaluation.Retry.Policy(),
		MaxConcurrency: p.cfg.Evaluation.MaxConcurrency,
	})
	if err != nil {
		return nil, nil, err
	}
	return orchestrator.EvaluateBatch(ctx, units)
}

// buildUnits adapts scored sites and clusters into evaluation units.
// Feature keys are unioned across sites so a template referencing a
// feature sampled for only some sites still renders (as "n/a") for the
// rest.
func (p *Pipeline) buildUnits(sites []*domain.Site, clusters []domain.Cluster) []domain.EvaluationUnit {
	keys := featureKeyUnion(sites)

	units := make([]domain.EvaluationUnit, 0, len(sites)+len(clusters))
	for _, site := range sites {
		units = append(units, &domain.SiteUnit{
			Site:        site,
			Region:      p.cfg.RegionName,
			FeatureKeys: keys,
		})
	}
	for i := range clusters {
		units = append(units, &domain.ClusterUnit{
			Cluster: &clusters[i],
			Region:  p.cfg.RegionName,
		})
	}
	return units
}

func (p *Pipeline) persistEvaluation(artifacts *sink.FileSink, result *Result) error {
	if err := artifacts.WriteRecords(result.Records); err != nil {
		return err
	}
	if err := artifacts.WriteLedger(result.Ledger); err != nil {
		return err
	}
	if err := artifacts.WriteReport(result.Records); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func featureKeyUnion(sites []*domain.Site) []string {
	seen := make(map[string]struct{})
	for _, site := range sites {
		for _, name := range site.Features.Names() {
			seen[name] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for name := range seen {
		keys = append(keys, name)
	}
	return keys
}
