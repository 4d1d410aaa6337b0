// Package eval runs named planning scenarios against the pipeline or the
// single-pass baseline and reports pass/fail, latency, and which providers
// answered.
package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voyagent/voyagent/pkg/models"
)

// Scenario is one named evaluation case. A scenario passes when every
// expected provider was invoked and enough of the expected content
// appears in the rendered plan.
type Scenario struct {
	// ID is the stable scenario identifier (e.g., TC-MA-001).
	ID string `yaml:"id"`
	// Name is a short human-readable label.
	Name string `yaml:"name"`
	// Query is the natural-language trip request.
	Query string `yaml:"query"`
	// ExpectedProviders must all appear in the response's invoked list.
	ExpectedProviders []models.ProviderID `yaml:"expected_providers"`
	// ExpectedContent keywords are matched against the rendered plan;
	// the pass threshold is a fraction of these.
	ExpectedContent []string `yaml:"expected_content"`
	// ExpectError marks scenarios whose plan call is supposed to fail.
	ExpectError bool `yaml:"expect_error"`
}

// BuiltinScenarios returns the fixed suite: three single-domain cases and
// seven multi-domain cases.
func BuiltinScenarios() []Scenario {
	return []Scenario{
		{
			ID:                "TC-001",
			Name:              "flight search",
			Query:             "Find flights from Buenos Aires to Madrid, 2026-06-01 to 2026-06-03, budget of $1500",
			ExpectedProviders: []models.ProviderID{models.ProviderFlights},
			ExpectedContent:   []string{"Flight:", "Madrid", "Budget:"},
		},
		{
			ID:                "TC-002",
			Name:              "activity search",
			Query:             "Things to do in Madrid, a 3-day trip with $600, we love museums and food",
			ExpectedProviders: []models.ProviderID{models.ProviderActivities},
			ExpectedContent:   []string{"Prado Museum", "museum", "Recommendations:"},
		},
		{
			ID:                "TC-003",
			Name:              "budget planning",
			Query:             "Plan a trip to Madrid for 2 people with a $2000 budget",
			ExpectedProviders: []models.ProviderID{models.ProviderBudget},
			ExpectedContent:   []string{"Budget:", "buffer", "activities"},
		},
		{
			ID:    "TC-MA-001",
			Name:  "full multi-domain trip",
			Query: "Plan a trip from Buenos Aires to Madrid, 2026-06-01 to 2026-06-03, budget of $1500, museums and food",
			ExpectedProviders: []models.ProviderID{
				models.ProviderFlights, models.ProviderActivities,
				models.ProviderWeather, models.ProviderBudget,
			},
			ExpectedContent: []string{"Travel plan for Madrid", "Flight:", "Day 2026-06-01", "day total"},
		},
		{
			ID:    "TC-MA-002",
			Name:  "second destination",
			Query: "Plan a trip from Buenos Aires to Barcelona, 2026-06-02 to 2026-06-04, budget of $1800, culture and art",
			ExpectedProviders: []models.ProviderID{
				models.ProviderFlights, models.ProviderActivities, models.ProviderBudget,
			},
			ExpectedContent: []string{"Travel plan for Barcelona", "Sagrada Familia", "Flight:"},
		},
		{
			ID:    "TC-MA-003",
			Name:  "local trip without flights",
			Query: "A 3-day trip in Madrid with $500, parks and museums",
			ExpectedProviders: []models.ProviderID{
				models.ProviderActivities, models.ProviderWeather, models.ProviderBudget,
			},
			ExpectedContent: []string{"Travel plan for Madrid", "day total", "Recommendations:"},
		},
		{
			ID:    "TC-MA-004",
			Name:  "nonstop constraint",
			Query: "Plan a trip from Buenos Aires to Madrid, 2026-06-01 to 2026-06-03, $2500, nonstop flights only",
			ExpectedProviders: []models.ProviderID{
				models.ProviderFlights, models.ProviderBudget,
			},
			ExpectedContent: []string{"Flight:", "0 stops"},
		},
		{
			ID:    "TC-MA-005",
			Name:  "couple culture trip",
			Query: "Honeymoon from Buenos Aires to Madrid, 2026-06-01 to 2026-06-03, budget of $3000, culture and food",
			ExpectedProviders: []models.ProviderID{
				models.ProviderFlights, models.ProviderActivities, models.ProviderBudget,
			},
			ExpectedContent: []string{"Travel plan for Madrid", "culture", "day total"},
		},
		{
			ID:    "TC-MA-006",
			Name:  "tight budget degrades gracefully",
			Query: "A 3-day trip in Madrid with $100, museums",
			ExpectedProviders: []models.ProviderID{
				models.ProviderActivities, models.ProviderBudget,
			},
			ExpectedContent: []string{"Travel plan for Madrid", "Budget:", "Recommendations:"},
		},
		{
			ID:    "TC-MA-007",
			Name:  "trip beyond forecast horizon",
			Query: "An 18-day trip in Madrid with $4000, museums and parks",
			ExpectedProviders: []models.ProviderID{
				models.ProviderActivities, models.ProviderBudget,
			},
			ExpectedContent: []string{"Travel plan for Madrid", "warning: weather", "day total"},
		},
	}
}

// FindScenario returns the named scenario from the list.
func FindScenario(scenarios []Scenario, id string) (Scenario, error) {
	for _, s := range scenarios {
		if s.ID == id || s.Name == id {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("unknown scenario %q", id)
}

// LoadScenarios reads user-defined scenarios from a YAML file. The file
// holds a list of scenario documents under a top-level "scenarios" key.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	var doc struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	for i, s := range doc.Scenarios {
		if s.ID == "" || s.Query == "" {
			return nil, fmt.Errorf("scenario %d: id and query are required", i)
		}
	}
	return doc.Scenarios, nil
}
