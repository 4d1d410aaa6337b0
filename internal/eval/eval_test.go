package eval

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/dataset"
	"github.com/voyagent/voyagent/internal/llm"
	"github.com/voyagent/voyagent/internal/provider"
	"github.com/voyagent/voyagent/internal/supervisor"
	"github.com/voyagent/voyagent/pkg/models"
)

const flightsCSV = `carrier,flight_number,origin,destination,date,price,currency,departure_time,arrival_time,duration_hours,stops
Iberia,IB6842,Buenos Aires,Madrid,2026-06-01,850.00,USD,08:30,23:45,12.5,0
Air Europa,UX042,Buenos Aires,Madrid,2026-06-01,640.00,USD,12:00,05:10,13.2,1
LATAM,LA8010,Buenos Aires,Barcelona,2026-06-02,720.00,USD,09:15,02:40,14.0,1
`

const activitiesCSV = `name,city,lat,lon,category,cost,currency,duration_hours,rating,weather_tags
Prado Museum,Madrid,40.4138,-3.6921,museum,15.00,USD,3,4.8,indoor
Retiro Park,Madrid,40.4153,-3.6845,outdoors,0,USD,2,4.6,outdoor|sunny
Flamenco Show,Madrid,40.4131,-3.7023,culture,45.00,USD,2,4.5,indoor
Sagrada Familia,Barcelona,41.4036,2.1744,culture,26.00,USD,2,4.9,any
`

func testRegistry(t *testing.T) *provider.Registry {
	t.Helper()
	dir := t.TempDir()
	fp := filepath.Join(dir, "flights.csv")
	ap := filepath.Join(dir, "activities.csv")
	if err := os.WriteFile(fp, []byte(flightsCSV), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ap, []byte(activitiesCSV), 0644); err != nil {
		t.Fatal(err)
	}
	catalog, err := dataset.Open(fp, ap)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	reg := provider.NewRegistry()
	reg.Register(provider.NewFlightsProvider(catalog))
	reg.Register(provider.NewActivitiesProvider(catalog))
	reg.Register(provider.NewWeatherProvider(14))
	reg.Register(provider.NewBudgetProvider(budget.DefaultRates()))
	return reg
}

func testRunner(t *testing.T, store *Store) *Runner {
	t.Helper()
	reg := testRegistry(t)
	pipeline := supervisor.New(reg, supervisor.Options{
		Policy:      supervisor.RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond},
		HorizonDays: 14,
	})
	parser := llm.NewParser(llm.ParserDefaults{
		Now: func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	classifier := llm.NewClassifier(nil, parser)
	return NewRunner(classifier, pipeline, NewBaseline(reg), store)
}

func TestRun_PipelineFlightScenario(t *testing.T) {
	r := testRunner(t, nil)
	sc, err := FindScenario(BuiltinScenarios(), "TC-001")
	if err != nil {
		t.Fatal(err)
	}

	results, summary, err := r.Run(t.Context(), []Scenario{sc}, ModePipeline)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Passed != 1 {
		t.Fatalf("TC-001 failed: %+v", results[0])
	}
	if len(results[0].MissingProviders) != 0 {
		t.Errorf("missing providers: %v", results[0].MissingProviders)
	}
}

func TestRun_LocalTripSkipsFlights(t *testing.T) {
	r := testRunner(t, nil)
	sc, err := FindScenario(BuiltinScenarios(), "TC-MA-003")
	if err != nil {
		t.Fatal(err)
	}

	results, _, err := r.Run(t.Context(), []Scenario{sc}, ModePipeline)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	res := results[0]
	if !res.Passed {
		t.Fatalf("TC-MA-003 failed: missing providers %v, content %.2f missing %v, err %v",
			res.MissingProviders, res.ContentScore, res.MissingContent, res.Err)
	}
	for _, id := range res.Response.ProvidersInvoked {
		if id == models.ProviderFlights {
			t.Error("flights invoked for a local trip")
		}
	}
}

func TestRun_BaselineMode(t *testing.T) {
	r := testRunner(t, nil)
	sc, err := FindScenario(BuiltinScenarios(), "TC-001")
	if err != nil {
		t.Fatal(err)
	}

	results, summary, err := r.Run(t.Context(), []Scenario{sc}, ModeBaseline)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Mode != ModeBaseline {
		t.Errorf("summary mode = %s, want baseline", summary.Mode)
	}
	if !results[0].Passed {
		t.Errorf("baseline TC-001 failed: %+v", results[0])
	}
}

func TestRun_UnknownMode(t *testing.T) {
	r := testRunner(t, nil)
	if _, _, err := r.Run(t.Context(), BuiltinScenarios(), Mode("turbo")); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestContentScore(t *testing.T) {
	rendered := "Travel plan for Madrid\nFlight: IB6842\nDay 2026-06-01 (sunny):"
	score, missing := contentScore([]string{"madrid", "Flight:", "rainy"}, rendered)
	if score < 0.66 || score > 0.67 {
		t.Errorf("score = %v, want 2/3", score)
	}
	if len(missing) != 1 || missing[0] != "rainy" {
		t.Errorf("missing = %v, want [rainy]", missing)
	}
}

func TestLoadScenarios(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	doc := `scenarios:
  - id: USER-001
    name: custom madrid trip
    query: "Plan a trip to Madrid with $900"
    expected_providers: [activities, budget]
    expected_content: ["Travel plan for Madrid"]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	scenarios, err := LoadScenarios(path)
	if err != nil {
		t.Fatalf("LoadScenarios() error: %v", err)
	}
	if len(scenarios) != 1 || scenarios[0].ID != "USER-001" {
		t.Fatalf("scenarios = %+v", scenarios)
	}
	if len(scenarios[0].ExpectedProviders) != 2 {
		t.Errorf("providers = %v, want 2", scenarios[0].ExpectedProviders)
	}
}

func TestLoadScenarios_MissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := os.WriteFile(path, []byte("scenarios:\n  - query: x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenarios(path); err == nil {
		t.Error("expected an error for a scenario without an id")
	}
}

func TestStore_RecordAndHistory(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), ".voyagent", "eval.db"))
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	defer store.Close()

	sc, _ := FindScenario(BuiltinScenarios(), "TC-001")
	results := []Result{
		{Scenario: sc, Mode: ModePipeline, Passed: true, ContentScore: 1, Latency: 12 * time.Millisecond},
		{Scenario: sc, Mode: ModePipeline, Passed: false, ContentScore: 0.4, Latency: 9 * time.Millisecond},
	}
	for _, res := range results {
		if err := store.Record(res); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	records, err := store.History("TC-001", 10)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("history has %d records, want 2", len(records))
	}

	rate, err := store.PassRate(ModePipeline)
	if err != nil {
		t.Fatalf("PassRate() error: %v", err)
	}
	if rate != 0.5 {
		t.Errorf("pass rate = %v, want 0.5", rate)
	}
}
