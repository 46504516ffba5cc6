package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prospect/internal/domain"
	"github.com/ahrav/go-prospect/internal/evaluation"
)

const validConfigYAML = `
region_name: Upper Xingu
input: sites.geojson
output:
  dir: out
features:
  ndvi:
    weight: 2
    ideal: 0.45
    range: 0.25
  slope:
    weight: 1
    max_deg: 10
clustering:
  top_quantile: 0.8
  projection: equirectangular
  eps: auto
  min_samples: 3
  buffer_m: 500
evaluation:
  provider: openai
  model: gpt-4o-mini
  api_key_env: OPENAI_API_KEY
  temperature: 0.7
  max_tokens: 512
  max_concurrency: 4
  timeout_seconds: 60
  rate_limit:
    requests_per_second: 4
    burst: 8
  retry:
    max_attempts: 5
    base_delay_ms: 1000
    max_delay_ms: 20000
    multiplier: 2
    jitter_percent: 0.1
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prospect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "Upper Xingu", cfg.RegionName)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "openai", cfg.Evaluation.Provider)
	assert.True(t, cfg.Clustering.Eps.Auto)
	assert.Equal(t, 3, cfg.Clustering.MinSamples)
	assert.InDelta(t, 0.8, cfg.Clustering.TopQuantile, 1e-12)

	ndvi := cfg.Features["ndvi"]
	require.NotNil(t, ndvi.Ideal)
	assert.InDelta(t, 0.45, *ndvi.Ideal, 1e-12)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, validConfigYAML+"\nunknown_knob: 1\n"))
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "unknown_knob")
}

func TestLoadConfigRejectsBadProvider(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
output:
  dir: out
features:
  ndvi:
    weight: 1
    norm_div: 1
clustering:
  top_quantile: 0.8
  eps: 500
  min_samples: 3
evaluation:
  provider: cohere
  api_key_env: KEY
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Provider")
}

func TestLoadConfigRejectsBadFeatureRule(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
output:
  dir: out
features:
  ndvi:
    weight: 1
clustering:
  top_quantile: 0.8
  eps: 500
  min_samples: 3
evaluation:
  provider: openai
  api_key_env: KEY
`))
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ndvi", cfgErr.Field)
}

func TestRetryConfigPolicy(t *testing.T) {
	rc := RetryConfig{
		MaxAttempts:   4,
		BaseDelayMs:   250,
		MaxDelayMs:    8000,
		JitterPercent: 0.2,
	}
	policy := rc.Policy()

	assert.Equal(t, 4, policy.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, policy.BaseDelay)
	assert.Equal(t, 8*time.Second, policy.MaxDelay)
	assert.Equal(t, 2.0, policy.Multiplier, "zero multiplier defaults to 2")
	assert.InDelta(t, 0.2, policy.JitterPercent, 1e-12)
}

func TestRetryConfigPolicyDefault(t *testing.T) {
	assert.Equal(t, evaluation.DefaultRetryPolicy(), RetryConfig{}.Policy())
}

func TestConfigAPIKey(t *testing.T) {
	cfg := &Config{Evaluation: EvaluationConfig{APIKeyEnv: "PROSPECT_TEST_KEY"}}

	_, err := cfg.APIKey()
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "evaluation.api_key_env", cfgErr.Field)

	t.Setenv("PROSPECT_TEST_KEY", "sk-test")
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}

func TestConfigPanel(t *testing.T) {
	cfg := &Config{}
	assert.Len(t, cfg.Panel(), 5, "defaults to the five-persona panel")

	custom := []evaluation.CharacterSpec{{
		Name: "solo", Role: "r", Instruction: "i", InputTemplate: "{{.ndvi}}",
	}}
	cfg.Evaluation.Characters = custom
	assert.Equal(t, custom, cfg.Panel())
}

func TestConfigSummaryCharacter(t *testing.T) {
	cfg := &Config{}
	require.NotNil(t, cfg.SummaryCharacter(), "summary is on by default")
	assert.Equal(t, evaluation.SummaryCharacterName, cfg.SummaryCharacter().Name)

	enabled := true
	cfg.Evaluation.Summary = &enabled
	assert.NotNil(t, cfg.SummaryCharacter())

	disabled := false
	cfg.Evaluation.Summary = &disabled
	assert.Nil(t, cfg.SummaryCharacter())
}
