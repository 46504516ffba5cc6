package llm

import (
	"context"
	"errors"
	"time"

	"github.com/ahrav/go-prospect/internal/ports"
)

// metricsService records request latency, outcomes, and failure
// classes so batch runs against paid backends are observable.
type metricsService struct {
	next      CoreService
	collector ports.MetricsCollector
}

// MetricsMiddleware collects per-request metrics through the given
// collector. A nil collector disables collection but keeps the chain
// intact.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreService) CoreService {
		return &metricsService{next: next, collector: collector}
	}
}

// Generate executes the request and records latency and outcome labels.
func (m *metricsService) Generate(
	ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams,
) (string, error) {
	start := time.Now()
	response, err := m.next.Generate(ctx, systemPrompt, userPrompt, params)

	if m.collector != nil {
		labels := map[string]string{
			"model":  m.next.Model(),
			"status": statusLabel(ctx, err),
		}
		m.collector.RecordHistogram("evaluation_request_seconds", time.Since(start).Seconds(), labels)
		m.collector.RecordCounter("evaluation_requests_total", 1, labels)
	}

	return response, err
}

func statusLabel(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	default:
		var perr *ProviderError
		if errors.As(err, &perr) && perr.Type == ErrorTypeRateLimit {
			return "rate_limited"
		}
		return "error"
	}
}

// Model returns the model name from the wrapped implementation.
func (m *metricsService) Model() string { return m.next.Model() }
