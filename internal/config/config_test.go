package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing model", func(c *Config) { c.AI.Model = "" }},
		{"base url is not a url", func(c *Config) { c.AI.BaseURL = "not a url" }},
		{"timeout too short", func(c *Config) { c.AI.Timeout = time.Second }},
		{"zero workers", func(c *Config) { c.Review.Workers = 0 }},
		{"debounce window too short", func(c *Config) { c.Review.DebounceWindow = 100 * time.Millisecond }},
		{"report ttl too long", func(c *Config) { c.Review.ReportTTL = 48 * time.Hour }},
		{"rate limit burst too large", func(c *Config) { c.AI.RateLimit.BurstSize = 500 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := "ai:\n  model: test-model\n  base_url: https://example.com/v1\n  timeout: 30s\n  rate_limit:\n    requests_per_minute: 10\n    burst_size: 2\nreview:\n  debounce_window: 5s\n  report_ttl: 5m\n  workers: 2\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("REVIEW_CONFIG", path)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.AI.Model != "test-model" {
			t.Errorf("Model = %q", cfg.AI.Model)
		}
		if cfg.Review.DebounceWindow != 5*time.Second {
			t.Errorf("DebounceWindow = %v", cfg.Review.DebounceWindow)
		}
		if cfg.Review.Workers != 2 {
			t.Errorf("Workers = %d", cfg.Review.Workers)
		}
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		t.Setenv("REVIEW_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Review.Workers != Default().Review.Workers {
			t.Errorf("Workers = %d, want default %d", cfg.Review.Workers, Default().Review.Workers)
		}
	})

	t.Run("environment supplies the api key", func(t *testing.T) {
		t.Setenv("REVIEW_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		t.Setenv("REVIEW_AI_API_KEY", "sk-review-test")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.AI.APIKey != "sk-review-test" {
			t.Errorf("APIKey = %q", cfg.AI.APIKey)
		}
	})

	t.Run("invalid file values are rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("review:\n  workers: 900\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("REVIEW_CONFIG", path)

		if _, err := Load(); err == nil {
			t.Error("expected validation error for 900 workers")
		}
	})
}
