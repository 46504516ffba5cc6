package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prospect/internal/ports"
)

func TestNormalizeParams(t *testing.T) {
	tests := []struct {
		name string
		in   ports.RequestParams
		want ports.RequestParams
	}{
		{
			"within bounds",
			ports.RequestParams{Temperature: 0.7, MaxTokens: 512},
			ports.RequestParams{Temperature: 0.7, MaxTokens: 512},
		},
		{
			"temperature clamped low",
			ports.RequestParams{Temperature: -1, MaxTokens: 512},
			ports.RequestParams{Temperature: MinTemperature, MaxTokens: 512},
		},
		{
			"temperature clamped high",
			ports.RequestParams{Temperature: 3.5, MaxTokens: 512},
			ports.RequestParams{Temperature: MaxTemperature, MaxTokens: 512},
		},
		{
			"zero max tokens defaulted",
			ports.RequestParams{Temperature: 1},
			ports.RequestParams{Temperature: 1, MaxTokens: DefaultMaxTokens},
		},
		{
			"negative max tokens defaulted",
			ports.RequestParams{Temperature: 1, MaxTokens: -5},
			ports.RequestParams{Temperature: 1, MaxTokens: DefaultMaxTokens},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeParams(tt.in))
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	got, err := validateBaseURL("")
	require.NoError(t, err)
	assert.Empty(t, got, "empty means provider default")

	got, err = validateBaseURL("https://proxy.example.com/v1")
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com/v1", got)

	_, err = validateBaseURL("ftp://example.com")
	assert.Error(t, err, "scheme must be http or https")

	_, err = validateBaseURL("https://")
	assert.Error(t, err, "host is required")

	_, err = validateBaseURL("http://\x7f")
	assert.Error(t, err)
}
