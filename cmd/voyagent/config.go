package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/voyagent/voyagent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Voyagent configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/voyagent/config.yaml
Project-specific overrides can be placed in .voyagent.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", orUnset(cfg.Anthropic.Model))
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("data.flights_path: %s\n", cfg.Data.FlightsPath)
	fmt.Printf("data.activities_path: %s\n", cfg.Data.ActivitiesPath)
	fmt.Printf("data.watch: %t\n", cfg.Data.Watch)
	fmt.Printf("planner.currency: %s\n", cfg.Planner.Currency)
	fmt.Printf("planner.buffer_fraction: %g\n", cfg.Planner.BufferFraction)
	fmt.Printf("planner.daily_capacity_hours: %g\n", cfg.Planner.DailyCapacityHours)
	fmt.Printf("planner.cluster_km: %g\n", cfg.Planner.ClusterKM)
	fmt.Printf("planner.rating_weight: %g\n", cfg.Planner.RatingWeight)
	fmt.Printf("planner.cost_weight: %g\n", cfg.Planner.CostWeight)
	fmt.Printf("planner.preference_weight: %g\n", cfg.Planner.PreferenceWeight)
	fmt.Printf("planner.forecast_horizon_days: %d\n", cfg.Planner.ForecastHorizonDays)
	fmt.Printf("providers.timeout: %s\n", cfg.Providers.Timeout)
	fmt.Printf("providers.max_attempts: %d\n", cfg.Providers.MaxAttempts)
	fmt.Printf("providers.backoff: %s\n", cfg.Providers.Backoff)
	fmt.Printf("providers.plan_timeout: %s\n", cfg.Providers.PlanTimeout)
	fmt.Printf("eval.history_path: %s\n", cfg.Eval.HistoryPath)
	fmt.Printf("eval.scenarios_path: %s\n", orUnset(cfg.Eval.ScenariosPath))
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return orUnset(cfg.Anthropic.Model), nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "data.flights_path":
		return cfg.Data.FlightsPath, nil
	case "data.activities_path":
		return cfg.Data.ActivitiesPath, nil
	case "data.watch":
		return strconv.FormatBool(cfg.Data.Watch), nil
	case "planner.currency":
		return cfg.Planner.Currency, nil
	case "planner.buffer_fraction":
		return strconv.FormatFloat(cfg.Planner.BufferFraction, 'g', -1, 64), nil
	case "planner.daily_capacity_hours":
		return strconv.FormatFloat(cfg.Planner.DailyCapacityHours, 'g', -1, 64), nil
	case "planner.cluster_km":
		return strconv.FormatFloat(cfg.Planner.ClusterKM, 'g', -1, 64), nil
	case "planner.rating_weight":
		return strconv.FormatFloat(cfg.Planner.RatingWeight, 'g', -1, 64), nil
	case "planner.cost_weight":
		return strconv.FormatFloat(cfg.Planner.CostWeight, 'g', -1, 64), nil
	case "planner.preference_weight":
		return strconv.FormatFloat(cfg.Planner.PreferenceWeight, 'g', -1, 64), nil
	case "planner.forecast_horizon_days":
		return strconv.Itoa(cfg.Planner.ForecastHorizonDays), nil
	case "providers.timeout":
		return cfg.Providers.Timeout.String(), nil
	case "providers.max_attempts":
		return strconv.Itoa(cfg.Providers.MaxAttempts), nil
	case "providers.backoff":
		return cfg.Providers.Backoff.String(), nil
	case "providers.plan_timeout":
		return cfg.Providers.PlanTimeout.String(), nil
	case "eval.history_path":
		return cfg.Eval.HistoryPath, nil
	case "eval.scenarios_path":
		return orUnset(cfg.Eval.ScenariosPath), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue updates a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "data.flights_path":
		cfg.Data.FlightsPath = value
	case "data.activities_path":
		cfg.Data.ActivitiesPath = value
	case "data.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.Data.Watch = b
	case "planner.currency":
		cfg.Planner.Currency = strings.ToUpper(value)
	case "planner.buffer_fraction":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Planner.BufferFraction = f
	case "planner.daily_capacity_hours":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Planner.DailyCapacityHours = f
	case "planner.cluster_km":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Planner.ClusterKM = f
	case "planner.rating_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Planner.RatingWeight = f
	case "planner.cost_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Planner.CostWeight = f
	case "planner.preference_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		cfg.Planner.PreferenceWeight = f
	case "planner.forecast_horizon_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		cfg.Planner.ForecastHorizonDays = n
	case "providers.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.Providers.Timeout = d
	case "providers.max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		cfg.Providers.MaxAttempts = n
	case "providers.backoff":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.Providers.Backoff = d
	case "providers.plan_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.Providers.PlanTimeout = d
	case "eval.history_path":
		cfg.Eval.HistoryPath = value
	case "eval.scenarios_path":
		cfg.Eval.ScenariosPath = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return cfg.Validate()
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
