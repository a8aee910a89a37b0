// Package config loads and validates the review engine's configuration
// from a YAML file plus environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI     AIConfig     `yaml:"ai" validate:"required"`
	Review ReviewConfig `yaml:"review" validate:"required"`
}

// AIConfig configures the generation capability. An empty APIKey leaves the
// AI-assisted rules disabled.
type AIConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model" validate:"required"`
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"required,min=10s,max=5m"`

	RateLimit RateLimitConfig `yaml:"rate_limit" validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

// ReviewConfig bounds the engine's runtime behavior.
type ReviewConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window" validate:"required,min=500ms,max=1m"`
	ReportTTL      time.Duration `yaml:"report_ttl" validate:"required,min=1m,max=24h"`
	Workers        int           `yaml:"workers" validate:"required,min=1,max=64"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Model:   "claude-3-5-sonnet-20241022",
			BaseURL: "https://api.anthropic.com/v1",
			Timeout: 2 * time.Minute,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 30,
				BurstSize:         10,
			},
		},
		Review: ReviewConfig{
			DebounceWindow: 3 * time.Second,
			ReportTTL:      10 * time.Minute,
			Workers:        4,
		},
	}
}

// Load reads the config file (if one exists), applies environment
// overrides and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := configPath()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if key := os.Getenv("REVIEW_AI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func configPath() string {
	if path := os.Getenv("REVIEW_CONFIG"); path != "" {
		return path
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "storyreview", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "storyreview", "config.yaml")
}
