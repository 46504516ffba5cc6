package llm

import (
	"context"
	"time"

	"github.com/ahrav/go-prospect/internal/ports"
)

// timeoutService bounds each attempt so one hung request cannot stall a
// unit's panel. The deadline is per attempt; the orchestrator's retry
// budget sits above it.
type timeoutService struct {
	next    CoreService
	timeout time.Duration
}

// TimeoutMiddleware enforces a per-request deadline.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next CoreService) CoreService {
		return &timeoutService{next: next, timeout: timeout}
	}
}

// Generate executes the request under a deadline-bound context.
func (t *timeoutService) Generate(
	ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, systemPrompt, userPrompt, params)
}

// Model returns the model name from the wrapped implementation.
func (t *timeoutService) Model() string { return t.next.Model() }
