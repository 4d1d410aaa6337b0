package main

import (
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/config"
	"github.com/voyagent/voyagent/internal/dataset"
	"github.com/voyagent/voyagent/internal/itinerary"
	"github.com/voyagent/voyagent/internal/llm"
	"github.com/voyagent/voyagent/internal/provider"
	"github.com/voyagent/voyagent/internal/rank"
	"github.com/voyagent/voyagent/internal/supervisor"
	"github.com/voyagent/voyagent/pkg/models"
)

var configPath string

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// buildRegistry opens the datasets and registers the four providers.
func buildRegistry(cfg *config.Config) (*provider.Registry, *dataset.Catalog, error) {
	catalog, err := dataset.Open(cfg.Data.FlightsPath, cfg.Data.ActivitiesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open datasets: %w", err)
	}

	reg := provider.NewRegistry()
	reg.Register(provider.NewFlightsProvider(catalog))
	reg.Register(provider.NewActivitiesProvider(catalog))
	reg.Register(provider.NewWeatherProvider(cfg.Planner.ForecastHorizonDays))
	reg.Register(provider.NewBudgetProvider(budget.DefaultRates()))
	return reg, catalog, nil
}

// buildSupervisor wires the pipeline from configuration.
func buildSupervisor(cfg *config.Config, reg *provider.Registry, emitter *supervisor.EventEmitter) *supervisor.Supervisor {
	weights := models.PreferenceWeights{
		Rating:     cfg.Planner.RatingWeight,
		Cost:       cfg.Planner.CostWeight,
		Preference: cfg.Planner.PreferenceWeight,
	}
	capacity := time.Duration(cfg.Planner.DailyCapacityHours * float64(time.Hour))

	return supervisor.New(reg, supervisor.Options{
		Allocator: budget.NewAllocator(budget.DefaultRates(), cfg.Planner.BufferFraction),
		Ranker:    rank.New(weights),
		Optimizer: itinerary.New(capacity, cfg.Planner.ClusterKM),
		Policy: supervisor.RetryPolicy{
			MaxAttempts: cfg.Providers.MaxAttempts,
			Backoff:     cfg.Providers.Backoff,
			Timeout:     cfg.Providers.Timeout,
		},
		PlanTimeout: cfg.Providers.PlanTimeout,
		HorizonDays: cfg.Planner.ForecastHorizonDays,
		Emitter:     emitter,
	})
}

// buildClassifier returns a model-backed classifier when credentials are
// configured and the keyword parser otherwise.
func buildClassifier(cfg *config.Config) *llm.Classifier {
	parser := llm.NewParser(llm.ParserDefaults{Currency: cfg.Planner.Currency})

	if !cfg.Anthropic.UseAWSBedrock && !config.HasAPIKey(cfg) {
		log.Printf("[voyagent] no API key configured, using keyword parser for requests")
		return llm.NewClassifier(nil, parser)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		log.Printf("[voyagent] API client unavailable (%v), using keyword parser", err)
		return llm.NewClassifier(nil, parser)
	}
	return llm.NewClassifier(client, parser)
}

// startWatcher hot-reloads the datasets when enabled. The returned closer
// is a no-op when watching is off.
func startWatcher(cfg *config.Config, catalog *dataset.Catalog) func() {
	if !cfg.Data.Watch {
		return func() {}
	}
	w, err := dataset.Watch(catalog)
	if err != nil {
		log.Printf("[voyagent] dataset watch disabled: %v", err)
		return func() {}
	}
	return func() { w.Close() }
}
