// Package llm connects the evaluation orchestrator to hosted language
// model providers (OpenAI, Anthropic, Google) behind a single service
// boundary. Providers are wrapped by a middleware chain that adds rate
// limiting, per-request timeouts, metrics, and tracing without touching
// provider logic. The orchestrator owns retries; this package only
// classifies failures as transient or fatal so the orchestrator can
// decide.
//
// Basic usage:
//
//	svc, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(4, 8),
//	        llm.TimeoutMiddleware(60 * time.Second),
//	    },
//	})
package llm

import (
	"context"
	"sort"
	"strings"

	"github.com/ahrav/go-prospect/internal/domain"
	"github.com/ahrav/go-prospect/internal/ports"
)

// CoreService is the minimal surface a provider must implement. The
// middleware chain wraps any conforming implementation.
type CoreService interface {
	// Generate produces an assessment text for the given prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Middleware wraps a CoreService to add cross-cutting behavior such as
// rate limiting or metrics. Middleware compose; the first one listed
// in ClientConfig is the outermost.
type Middleware func(CoreService) CoreService

// ClientConfig holds everything needed to build a provider-backed
// evaluation service.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model names the provider model; empty selects the provider default.
	Model string

	// BaseURL overrides the provider's default endpoint when set.
	BaseURL string

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// Client adapts a middleware-wrapped CoreService to the
// ports.EvaluationService boundary.
type Client struct {
	core CoreService
}

var _ ports.EvaluationService = (*Client)(nil)

// NewClient builds an evaluation service for the named provider and
// assembles its middleware chain.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, domain.NewConfigError("evaluation.provider",
			"unknown provider %q (have %s)", providerType, registeredProviders())
	}

	core, err := factory(config)
	if err != nil {
		return nil, err
	}

	// Reverse order so the first configured middleware is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Request implements ports.EvaluationService.
func (c *Client) Request(
	ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams,
) (string, error) {
	return c.core.Generate(ctx, systemPrompt, userPrompt, params)
}

// Model returns the model name of the underlying provider.
func (c *Client) Model() string { return c.core.Model() }

// ProviderFactory builds a CoreService from configuration. The
// signature lets the registry construct providers without knowing
// their concrete types.
type ProviderFactory func(ClientConfig) (CoreService, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a name. Providers
// in this package register themselves in init.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}

func registeredProviders() string {
	names := make([]string, 0, len(providerFactories))
	for name := range providerFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
