package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prospect/internal/domain"
	"github.com/ahrav/go-prospect/internal/ports"
)

// fakeCore is a CoreService stub for middleware and client tests.
type fakeCore struct {
	model    string
	generate func(ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams) (string, error)
}

func (f *fakeCore) Generate(
	ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams,
) (string, error) {
	if f.generate != nil {
		return f.generate(ctx, systemPrompt, userPrompt, params)
	}
	return "ok", nil
}

func (f *fakeCore) Model() string { return f.model }

// taggingMiddleware records the order middleware executes in.
func taggingMiddleware(tag string, order *[]string) Middleware {
	return func(next CoreService) CoreService {
		return &fakeCore{
			model: next.Model(),
			generate: func(ctx context.Context, sys, user string, params ports.RequestParams) (string, error) {
				*order = append(*order, tag)
				return next.Generate(ctx, sys, user, params)
			},
		}
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("openai", ClientConfig{})
	assert.ErrorIs(t, err, ErrEmptyAPIKey)
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient("mystery", ClientConfig{APIKey: "k"})
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, `"mystery"`)
	assert.Contains(t, cfgErr.Reason, "openai", "lists the registered providers")
}

func TestNewClientRegisteredProviders(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "google"} {
		_, ok := providerFactories[name]
		assert.True(t, ok, "%s registers itself in init", name)
	}
}

func TestNewClientMiddlewareOrder(t *testing.T) {
	var order []string
	RegisterProviderFactory("fake-order", func(ClientConfig) (CoreService, error) {
		return &fakeCore{
			model: "fake-model",
			generate: func(context.Context, string, string, ports.RequestParams) (string, error) {
				order = append(order, "core")
				return "done", nil
			},
		}, nil
	})
	t.Cleanup(func() { delete(providerFactories, "fake-order") })

	client, err := NewClient("fake-order", ClientConfig{
		APIKey: "k",
		Middleware: []Middleware{
			taggingMiddleware("outer", &order),
			taggingMiddleware("inner", &order),
		},
	})
	require.NoError(t, err)

	text, err := client.Request(context.Background(), "sys", "user", ports.RequestParams{})
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, []string{"outer", "inner", "core"}, order,
		"first configured middleware is outermost")
	assert.Equal(t, "fake-model", client.Model())
}
