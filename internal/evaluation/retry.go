package evaluation

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ahrav/go-prospect/internal/ports"
)

// RetryPolicy controls how transient evaluation failures are retried.
// Delays grow exponentially from BaseDelay, are capped at MaxDelay, and
// get a random jitter so concurrent tasks hitting the same rate limit
// do not retry in lockstep.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, the first included.
	MaxAttempts int `yaml:"max_attempts" validate:"min=1,max=20"`

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration `yaml:"base_delay" validate:"min=0"`

	// MaxDelay caps the grown delay.
	MaxDelay time.Duration `yaml:"max_delay" validate:"min=0"`

	// Multiplier is the exponential growth factor between retries.
	Multiplier float64 `yaml:"multiplier" validate:"gte=1"`

	// JitterPercent is the symmetric jitter range as a fraction of the
	// delay, e.g. 0.1 for ±10%.
	JitterPercent float64 `yaml:"jitter_percent" validate:"gte=0,lte=1"`
}

// DefaultRetryPolicy mirrors the usual random-exponential setup for
// rate-limited text backends: five attempts between one and twenty
// seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   5,
		BaseDelay:     time.Second,
		MaxDelay:      20 * time.Second,
		Multiplier:    2.0,
		JitterPercent: 0.1,
	}
}

// Delay returns the jittered backoff before retry number attempt
// (1-based: attempt 1 is the delay after the first failure).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if max := float64(p.MaxDelay); p.MaxDelay > 0 && d > max {
		d = max
	}

	if p.JitterPercent > 0 {
		jitter := d * p.JitterPercent
		d += (rand.Float64()*2 - 1) * jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Sleep blocks for the attempt's backoff delay or until the context is
// done, whichever comes first.
func (p RetryPolicy) Sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryable reports whether a service error is worth another attempt.
// Errors opt in by implementing ports.RetryableError; everything else,
// configuration errors included, fails permanently on the spot.
func isRetryable(err error) bool {
	var r ports.RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return false
}
