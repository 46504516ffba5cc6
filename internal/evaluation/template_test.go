package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prospect/internal/domain"
)

func TestRenderPrompt(t *testing.T) {
	ctx := map[string]string{
		"coordinates": "-60.00000, -3.00000",
		"ndvi":        "0.42",
	}

	out, err := RenderPrompt("explorer", "At {{.coordinates}} the NDVI is {{.ndvi}}.", ctx)
	require.NoError(t, err)
	assert.Equal(t, "At -60.00000, -3.00000 the NDVI is 0.42.", out)
}

func TestRenderPromptMissingKeySuggestsNearest(t *testing.T) {
	ctx := map[string]string{
		"elevation": "120",
		"ndvi":      "0.42",
	}

	_, err := RenderPrompt("explorer", "Height: {{.elevatoin}}", ctx)
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, `"elevatoin"`)
	assert.Contains(t, cfgErr.Reason, `"elevation"`, "suggests the closest context key")
}

func TestRenderPromptMissingKeyNoPlausibleSuggestion(t *testing.T) {
	ctx := map[string]string{"ndvi": "0.42"}

	_, err := RenderPrompt("explorer", "{{.completely_unrelated}}", ctx)
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.NotContains(t, cfgErr.Reason, "did you mean")
}

func TestRenderPromptParseError(t *testing.T) {
	_, err := RenderPrompt("broken", "{{.unclosed", nil)
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Field, "broken")
}
