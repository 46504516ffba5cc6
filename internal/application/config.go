// Package application wires the pipeline together: configuration
// loading, engine construction, and the end-to-end run that scores
// sites, clusters them, evaluates both, and persists every artifact.
package application

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-prospect/internal/clustering"
	"github.com/ahrav/go-prospect/internal/domain"
	"github.com/ahrav/go-prospect/internal/evaluation"
	"github.com/ahrav/go-prospect/internal/scoring"
)

var validate = validator.New()

// Config is the top-level pipeline configuration loaded from YAML.
type Config struct {
	// RegionName names the broader study area used in prompts.
	RegionName string `yaml:"region_name"`

	// Input is the GeoJSON feature collection of candidate sites. The
	// CLI --input flag overrides it.
	Input string `yaml:"input"`

	// Output controls artifact persistence.
	Output OutputConfig `yaml:"output" validate:"required"`

	// Features maps feature names to scoring rules.
	Features scoring.Config `yaml:"features" validate:"required"`

	// Clustering configures the density clustering pass.
	Clustering clustering.Params `yaml:"clustering" validate:"required"`

	// Evaluation configures the character panel and its backend.
	Evaluation EvaluationConfig `yaml:"evaluation" validate:"required"`
}

// OutputConfig controls where artifacts land.
type OutputConfig struct {
	// Dir is the parent directory; each run writes into a fresh
	// subdirectory named by its run id.
	Dir string `yaml:"dir" validate:"required"`
}

// EvaluationConfig configures the evaluation backend and panel.
type EvaluationConfig struct {
	// Provider selects the backend: openai, anthropic, or google.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google"`

	// Model names the provider model; empty selects the provider default.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key. Keys
	// never appear in config files.
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`

	// MaxTokens caps each response.
	MaxTokens int `yaml:"max_tokens" validate:"omitempty,min=1,max=100000"`

	// Temperature is the base sampling temperature before character
	// offsets.
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`

	// MaxConcurrency bounds concurrently evaluated units; 0 means
	// unbounded.
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=0,max=256"`

	// TimeoutSeconds is the per-request deadline; 0 disables it.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=0,max=3600"`

	// RateLimit paces requests to the provider.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Retry controls backoff for transient request failures.
	Retry RetryConfig `yaml:"retry"`

	// Characters overrides the default panel when non-empty.
	Characters []evaluation.CharacterSpec `yaml:"characters" validate:"omitempty,dive"`

	// Summary disables the synthesis step when explicitly false.
	Summary *bool `yaml:"summary"`
}

// RateLimitConfig paces provider requests with a token bucket.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate; 0 disables rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`

	// Burst allows temporary spikes above the sustained rate.
	Burst int `yaml:"burst" validate:"min=0"`
}

// RetryConfig is the YAML shape of the retry policy. Delays are held in
// milliseconds to keep the file free of duration strings.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, the first included;
	// 0 selects the default policy.
	MaxAttempts int `yaml:"max_attempts" validate:"min=0,max=20"`

	// BaseDelayMs is the delay before the first retry.
	BaseDelayMs int `yaml:"base_delay_ms" validate:"min=0,max=60000"`

	// MaxDelayMs caps the grown delay.
	MaxDelayMs int `yaml:"max_delay_ms" validate:"min=0,max=300000"`

	// Multiplier is the exponential growth factor; 0 selects 2.
	Multiplier float64 `yaml:"multiplier" validate:"omitempty,gte=1"`

	// JitterPercent is the symmetric jitter fraction, e.g. 0.1 for ±10%.
	JitterPercent float64 `yaml:"jitter_percent" validate:"gte=0,lte=1"`
}

// Policy converts the YAML shape into the runtime retry policy,
// falling back to the default policy when unset.
func (rc RetryConfig) Policy() evaluation.RetryPolicy {
	if rc.MaxAttempts == 0 {
		return evaluation.DefaultRetryPolicy()
	}

	multiplier := rc.Multiplier
	if multiplier == 0 {
		multiplier = 2.0
	}
	return evaluation.RetryPolicy{
		MaxAttempts:   rc.MaxAttempts,
		BaseDelay:     time.Duration(rc.BaseDelayMs) * time.Millisecond,
		MaxDelay:      time.Duration(rc.MaxDelayMs) * time.Millisecond,
		Multiplier:    multiplier,
		JitterPercent: rc.JitterPercent,
	}
}

// LoadConfig reads, parses, and validates a pipeline configuration.
// A .env file next to the working directory is loaded first so
// api_key_env lookups work in local development.
func LoadConfig(path string) (*Config, error) {
	// Missing .env is fine; deployed environments set real variables.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, domain.NewConfigError("config", "parse %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural rules plus the engine-specific ones.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return domain.NewConfigError("config", "invalid configuration: %v", err)
	}
	if err := c.Features.Validate(); err != nil {
		return err
	}
	return nil
}

// APIKey resolves the provider credential from the configured
// environment variable.
func (c *Config) APIKey() (string, error) {
	key := os.Getenv(c.Evaluation.APIKeyEnv)
	if key == "" {
		return "", domain.NewConfigError("evaluation.api_key_env",
			"environment variable %s is not set", c.Evaluation.APIKeyEnv)
	}
	return key, nil
}

// Panel resolves the character panel: the configured characters, or the
// default five-persona panel when none are given.
func (c *Config) Panel() []evaluation.CharacterSpec {
	if len(c.Evaluation.Characters) > 0 {
		return c.Evaluation.Characters
	}
	return evaluation.DefaultCharacters()
}

// SummaryCharacter resolves the synthesis character, or nil when the
// summary step is disabled.
func (c *Config) SummaryCharacter() *evaluation.CharacterSpec {
	if c.Evaluation.Summary != nil && !*c.Evaluation.Summary {
		return nil
	}
	summary := evaluation.DefaultSummaryCharacter()
	return &summary
}
