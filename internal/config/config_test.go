package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Planner.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", cfg.Planner.Currency)
	}

	if cfg.Planner.BufferFraction != 0.10 {
		t.Errorf("expected buffer fraction 0.10, got %v", cfg.Planner.BufferFraction)
	}

	if cfg.Planner.DailyCapacityHours != 10.0 {
		t.Errorf("expected daily capacity 10h, got %v", cfg.Planner.DailyCapacityHours)
	}

	if cfg.Providers.Timeout != 20*time.Second {
		t.Errorf("expected provider timeout 20s, got %v", cfg.Providers.Timeout)
	}

	if cfg.Providers.MaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", cfg.Providers.MaxAttempts)
	}

	if cfg.Providers.Backoff != 500*time.Millisecond {
		t.Errorf("expected backoff 500ms, got %v", cfg.Providers.Backoff)
	}

	if cfg.Data.FlightsPath != "data/flights.csv" {
		t.Errorf("expected default flights path, got %q", cfg.Data.FlightsPath)
	}

	if cfg.Tracing.Endpoint != "" {
		t.Errorf("expected tracing disabled by default, got %q", cfg.Tracing.Endpoint)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
planner:
  currency: EUR
  buffer_fraction: 0.15
  rating_weight: 0.5
  cost_weight: 0.3
  preference_weight: 0.2
providers:
  timeout: 5s
  max_attempts: 2
data:
  flights_path: /tmp/flights.csv
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.Planner.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", cfg.Planner.Currency)
	}
	if cfg.Planner.BufferFraction != 0.15 {
		t.Errorf("buffer_fraction = %v, want 0.15", cfg.Planner.BufferFraction)
	}
	if cfg.Providers.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Providers.Timeout)
	}
	if cfg.Providers.MaxAttempts != 2 {
		t.Errorf("max_attempts = %d, want 2", cfg.Providers.MaxAttempts)
	}
	if cfg.Data.FlightsPath != "/tmp/flights.csv" {
		t.Errorf("flights_path = %q, want /tmp/flights.csv", cfg.Data.FlightsPath)
	}

	// Unset values keep their defaults.
	if cfg.Planner.DailyCapacityHours != 10.0 {
		t.Errorf("daily_capacity_hours = %v, want default 10", cfg.Planner.DailyCapacityHours)
	}
}

func TestLoadFromPath_ExpandsEnvInAPIKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	t.Setenv("TEST_VOYAGENT_KEY", "sk-ant-test1234567890abcd")

	content := `
anthropic:
  api_key: ${TEST_VOYAGENT_KEY}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-test1234567890abcd" {
		t.Errorf("api_key = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"weights not summing to one", func(c *Config) { c.Planner.RatingWeight = 0.9 }, true},
		{"negative buffer fraction", func(c *Config) { c.Planner.BufferFraction = -0.1 }, true},
		{"buffer fraction of one", func(c *Config) { c.Planner.BufferFraction = 1.0 }, true},
		{"zero daily capacity", func(c *Config) { c.Planner.DailyCapacityHours = 0 }, true},
		{"zero max attempts", func(c *Config) { c.Providers.MaxAttempts = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
