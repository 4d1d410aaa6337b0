// Package config handles configuration loading and management for Voyagent.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for Voyagent. It is constructed once at
// process start, immutable thereafter, and passed into the Supervisor.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Data      DataConfig      `mapstructure:"data"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Eval      EvalConfig      `mapstructure:"eval"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// AnthropicConfig holds Anthropic API settings for the intent classifier.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. Optional: without it the
	// deterministic fallback parser is used instead of the model.
	APIKey string `mapstructure:"api_key"`
	// Model is the Claude model name used for intent classification.
	Model string `mapstructure:"model"`
	// UseAWSBedrock routes API calls through AWS Bedrock.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string `mapstructure:"aws_profile"`
}

// DataConfig holds paths to the read-only tabular datasets.
type DataConfig struct {
	// FlightsPath is the flight listings CSV.
	FlightsPath string `mapstructure:"flights_path"`
	// ActivitiesPath is the activity listings CSV.
	ActivitiesPath string `mapstructure:"activities_path"`
	// Watch enables hot-reloading a catalog when its file changes.
	Watch bool `mapstructure:"watch"`
}

// PlannerConfig holds the planning pipeline knobs.
type PlannerConfig struct {
	// Currency is the working currency every amount is normalized to.
	Currency string `mapstructure:"currency"`
	// BufferFraction is the budget fraction reserved as contingency.
	BufferFraction float64 `mapstructure:"buffer_fraction"`
	// DailyCapacityHours is the time budget for a single itinerary day.
	DailyCapacityHours float64 `mapstructure:"daily_capacity_hours"`
	// ClusterKM is the distance threshold for geographic clustering.
	ClusterKM float64 `mapstructure:"cluster_km"`
	// RatingWeight, CostWeight and PreferenceWeight are the ranking
	// weights; they must sum to 1.
	RatingWeight     float64 `mapstructure:"rating_weight"`
	CostWeight       float64 `mapstructure:"cost_weight"`
	PreferenceWeight float64 `mapstructure:"preference_weight"`
	// ForecastHorizonDays bounds how far ahead weather can be requested.
	ForecastHorizonDays int `mapstructure:"forecast_horizon_days"`
}

// ProvidersConfig holds per-provider invocation policy.
type ProvidersConfig struct {
	// Timeout bounds a single provider invocation.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxAttempts is the per-provider retry bound (1 = no retries).
	MaxAttempts int `mapstructure:"max_attempts"`
	// Backoff is the base delay between retries, doubled per attempt.
	Backoff time.Duration `mapstructure:"backoff"`
	// PlanTimeout bounds the whole Plan call.
	PlanTimeout time.Duration `mapstructure:"plan_timeout"`
}

// EvalConfig holds scenario runner settings.
type EvalConfig struct {
	// HistoryPath is the SQLite database recording eval runs.
	HistoryPath string `mapstructure:"history_path"`
	// ScenariosPath optionally adds user-defined scenarios from YAML.
	ScenariosPath string `mapstructure:"scenarios_path"`
}

// TracingConfig reserves optional observability settings. Absence disables
// tracing without affecting the core pipeline.
type TracingConfig struct {
	// Endpoint is the trace collector endpoint. Empty disables tracing.
	Endpoint string `mapstructure:"endpoint"`
	// PublicKey and SecretKey authenticate against the collector.
	PublicKey string `mapstructure:"public_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, VOYAGENT_*)
// 2. Project config (.voyagent.yaml in current directory or parent)
// 3. User config (~/.config/voyagent/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Load user config from XDG path
	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.SetEnvPrefix("VOYAGENT")
	v.AutomaticEnv()

	// Map specific environment variables
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("tracing.endpoint", "VOYAGENT_TRACE_ENDPOINT")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.Tracing.SecretKey = os.ExpandEnv(cfg.Tracing.SecretKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	w := c.Planner.RatingWeight + c.Planner.CostWeight + c.Planner.PreferenceWeight
	if w < 0.999 || w > 1.001 {
		return fmt.Errorf("planner weights must sum to 1, got %.3f", w)
	}
	if c.Planner.BufferFraction < 0 || c.Planner.BufferFraction >= 1 {
		return fmt.Errorf("planner buffer_fraction must be in [0, 1), got %v", c.Planner.BufferFraction)
	}
	if c.Planner.DailyCapacityHours <= 0 {
		return fmt.Errorf("planner daily_capacity_hours must be positive, got %v", c.Planner.DailyCapacityHours)
	}
	if c.Providers.MaxAttempts < 1 {
		return fmt.Errorf("providers max_attempts must be at least 1, got %d", c.Providers.MaxAttempts)
	}
	return nil
}

// Save writes the configuration to the user config path.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("data.flights_path", cfg.Data.FlightsPath)
	v.Set("data.activities_path", cfg.Data.ActivitiesPath)
	v.Set("data.watch", cfg.Data.Watch)
	v.Set("planner.currency", cfg.Planner.Currency)
	v.Set("planner.buffer_fraction", cfg.Planner.BufferFraction)
	v.Set("planner.daily_capacity_hours", cfg.Planner.DailyCapacityHours)
	v.Set("planner.cluster_km", cfg.Planner.ClusterKM)
	v.Set("planner.rating_weight", cfg.Planner.RatingWeight)
	v.Set("planner.cost_weight", cfg.Planner.CostWeight)
	v.Set("planner.preference_weight", cfg.Planner.PreferenceWeight)
	v.Set("planner.forecast_horizon_days", cfg.Planner.ForecastHorizonDays)
	v.Set("providers.timeout", cfg.Providers.Timeout.String())
	v.Set("providers.max_attempts", cfg.Providers.MaxAttempts)
	v.Set("providers.backoff", cfg.Providers.Backoff.String())
	v.Set("providers.plan_timeout", cfg.Providers.PlanTimeout.String())
	v.Set("eval.history_path", cfg.Eval.HistoryPath)
	v.Set("eval.scenarios_path", cfg.Eval.ScenariosPath)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// Anthropic defaults
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	// Dataset defaults
	v.SetDefault("data.flights_path", "data/flights.csv")
	v.SetDefault("data.activities_path", "data/activities.csv")
	v.SetDefault("data.watch", false)

	// Planner defaults
	v.SetDefault("planner.currency", "USD")
	v.SetDefault("planner.buffer_fraction", 0.10)
	v.SetDefault("planner.daily_capacity_hours", 10.0)
	v.SetDefault("planner.cluster_km", 3.0)
	v.SetDefault("planner.rating_weight", 0.4)
	v.SetDefault("planner.cost_weight", 0.4)
	v.SetDefault("planner.preference_weight", 0.2)
	v.SetDefault("planner.forecast_horizon_days", 14)

	// Provider policy defaults
	v.SetDefault("providers.timeout", "20s")
	v.SetDefault("providers.max_attempts", 3)
	v.SetDefault("providers.backoff", "500ms")
	v.SetDefault("providers.plan_timeout", "2m")

	// Eval defaults
	v.SetDefault("eval.history_path", ".voyagent/eval.db")
	v.SetDefault("eval.scenarios_path", "")
}

// getUserConfigDir returns the XDG config directory for Voyagent.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "voyagent")
	}

	// Fall back to ~/.config/voyagent
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "voyagent")
	}
	return filepath.Join(home, ".config", "voyagent")
}

// findProjectConfig searches for .voyagent.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".voyagent.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(cfg)
	return cfg
}
