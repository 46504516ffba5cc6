// Package ports defines the interfaces between the evaluation core and
// the infrastructure layer: the evaluation service boundary, artifact
// persistence, and metrics collection. These interfaces enable
// dependency inversion and make the orchestrator testable with fakes.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-prospect/internal/domain"
)

// RequestParams carries the sampling parameters for one evaluation
// request.
type RequestParams struct {
	// MaxTokens limits the length of the produced text.
	MaxTokens int

	// Temperature controls sampling randomness; character-specific
	// offsets are applied before the request reaches the service.
	Temperature float64
}

// EvaluationService is the boundary to the text-producing backend. An
// implementation must distinguish transient failures (retryable by the
// orchestrator) from fatal ones; see Retryable.
type EvaluationService interface {
	// Request produces an assessment text for the given prompts. The
	// implementation owns per-attempt timeouts; the orchestrator owns
	// retries.
	Request(ctx context.Context, systemPrompt, userPrompt string, params RequestParams) (string, error)
}

// RetryableError is implemented by service errors that are worth
// retrying, such as rate limits and server-side failures.
type RetryableError interface {
	error

	// IsRetryable reports whether the failed request may succeed on a
	// later attempt.
	IsRetryable() bool
}

// ArtifactSink persists finished pipeline outputs. The core never
// writes files itself; it hands completed values to the sink.
type ArtifactSink interface {
	// WriteScoredSites persists the scored site table.
	WriteScoredSites(sites []*domain.Site) error

	// WriteClusters persists the cluster polygon collection.
	WriteClusters(clusters []domain.Cluster) error

	// WriteRecords persists per-unit evaluation records.
	WriteRecords(records []domain.EvaluationRecord) error

	// WriteLedger persists the failure ledger.
	WriteLedger(ledger *domain.FailureLedger) error

	// WriteReport renders the Markdown and CSV summary over the records.
	WriteReport(records []domain.EvaluationRecord) error
}

// MetricsCollector records operational metrics. Implementations
// integrate with monitoring systems such as Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
