package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ahrav/go-prospect/internal/ports"
)

// rateLimitedService paces requests with a token bucket so concurrent
// character tasks stay under the provider's rate limits instead of
// tripping them and burning retries.
type rateLimitedService struct {
	next    CoreService
	limiter *rate.Limiter
}

// RateLimitMiddleware enforces a sustained requests-per-second limit
// with a burst allowance.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next CoreService) CoreService {
		return &rateLimitedService{next: next, limiter: limiter}
	}
}

// Generate blocks until a token is available, then forwards the
// request.
func (r *rateLimitedService) Generate(
	ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams,
) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Generate(ctx, systemPrompt, userPrompt, params)
}

// Model returns the model name from the wrapped implementation.
func (r *rateLimitedService) Model() string { return r.next.Model() }
