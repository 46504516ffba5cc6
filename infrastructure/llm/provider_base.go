package llm

import (
	"fmt"
	"net/url"

	"github.com/ahrav/go-prospect/internal/ports"
)

// Parameter bounds shared across providers.
const (
	// MinTemperature is the lowest accepted sampling temperature.
	MinTemperature = 0.0
	// MaxTemperature is the highest accepted sampling temperature.
	MaxTemperature = 2.0
	// DefaultMaxTokens caps responses when no limit is configured.
	DefaultMaxTokens = 1024
)

// BaseProvider carries the model name shared by all providers.
type BaseProvider struct {
	model string
}

// Model returns the configured model name.
func (b *BaseProvider) Model() string { return b.model }

// normalizeParams applies the shared bounds to request parameters so
// every provider sends values its API accepts.
func normalizeParams(params ports.RequestParams) ports.RequestParams {
	params.Temperature = clampFloat64(params.Temperature, MinTemperature, MaxTemperature)
	if params.MaxTokens <= 0 {
		params.MaxTokens = DefaultMaxTokens
	}
	return params
}

// validateBaseURL checks that an endpoint override is a usable http(s)
// URL. Empty means the provider default and is valid.
func validateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", nil
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must include a host")
	}
	return parsed.String(), nil
}

func clampFloat64(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
