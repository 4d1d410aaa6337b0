package eval

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/voyagent/voyagent/internal/llm"
	"github.com/voyagent/voyagent/pkg/models"
)

// Mode selects which planner answers the scenarios.
type Mode string

const (
	// ModePipeline runs the concurrent multi-provider pipeline.
	ModePipeline Mode = "pipeline"
	// ModeBaseline runs the sequential single-pass baseline.
	ModeBaseline Mode = "baseline"
)

// Valid returns true for a recognized mode.
func (m Mode) Valid() bool {
	return m == ModePipeline || m == ModeBaseline
}

// ContentThreshold is the fraction of expected content keywords that must
// appear in the rendered plan for a scenario to pass.
const ContentThreshold = 0.6

// Planner produces a consolidated response for a trip request. Both the
// supervisor and the baseline satisfy it.
type Planner interface {
	Plan(ctx context.Context, req *models.TripRequest) (*models.ConsolidatedResponse, error)
}

// Result is the outcome of one scenario run.
type Result struct {
	// Scenario is the case that ran.
	Scenario Scenario
	// Mode is the planner that answered.
	Mode Mode
	// Passed reports whether all criteria held.
	Passed bool
	// MissingProviders lists expected providers that were not invoked.
	MissingProviders []models.ProviderID
	// ContentScore is the fraction of expected content keywords found.
	ContentScore float64
	// MissingContent lists the keywords not found.
	MissingContent []string
	// Latency is the wall time of the plan call.
	Latency time.Duration
	// Err is the plan error, if any.
	Err error
	// Response is the plan output, nil on hard failure.
	Response *models.ConsolidatedResponse
}

// Summary aggregates a full run.
type Summary struct {
	Mode       Mode
	Total      int
	Passed     int
	AvgLatency time.Duration
}

// Runner executes scenarios against a classifier and a planner per mode.
type Runner struct {
	classifier *llm.Classifier
	pipeline   Planner
	baseline   Planner
	store      *Store
}

// NewRunner creates a runner. store may be nil to skip history recording.
func NewRunner(classifier *llm.Classifier, pipeline, baseline Planner, store *Store) *Runner {
	return &Runner{
		classifier: classifier,
		pipeline:   pipeline,
		baseline:   baseline,
		store:      store,
	}
}

// Run executes every scenario under the given mode and returns per-case
// results plus the aggregate summary.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario, mode Mode) ([]Result, Summary, error) {
	planner, err := r.planner(mode)
	if err != nil {
		return nil, Summary{}, err
	}

	results := make([]Result, 0, len(scenarios))
	var totalLatency time.Duration
	passed := 0

	for _, sc := range scenarios {
		res := r.runOne(ctx, planner, sc, mode)
		if res.Passed {
			passed++
		}
		totalLatency += res.Latency
		results = append(results, res)

		if r.store != nil {
			if err := r.store.Record(res); err != nil {
				log.Printf("[eval] failed to record %s: %v", sc.ID, err)
			}
		}
	}

	summary := Summary{Mode: mode, Total: len(scenarios), Passed: passed}
	if len(scenarios) > 0 {
		summary.AvgLatency = totalLatency / time.Duration(len(scenarios))
	}
	return results, summary, nil
}

func (r *Runner) planner(mode Mode) (Planner, error) {
	switch mode {
	case ModePipeline:
		return r.pipeline, nil
	case ModeBaseline:
		return r.baseline, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func (r *Runner) runOne(ctx context.Context, planner Planner, sc Scenario, mode Mode) Result {
	res := Result{Scenario: sc, Mode: mode}

	req, err := r.classifier.Classify(ctx, sc.Query)
	if err != nil {
		res.Err = err
		res.Passed = sc.ExpectError
		return res
	}

	start := time.Now()
	resp, err := planner.Plan(ctx, req)
	res.Latency = time.Since(start)
	res.Response = resp
	if err != nil {
		res.Err = err
		res.Passed = sc.ExpectError
		return res
	}
	if sc.ExpectError {
		return res
	}

	res.MissingProviders = missingProviders(sc.ExpectedProviders, resp.ProvidersInvoked)
	res.ContentScore, res.MissingContent = contentScore(sc.ExpectedContent, resp.Render())
	res.Passed = len(res.MissingProviders) == 0 && res.ContentScore >= ContentThreshold
	return res
}

func missingProviders(expected, invoked []models.ProviderID) []models.ProviderID {
	var missing []models.ProviderID
	for _, want := range expected {
		found := false
		for _, got := range invoked {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}

// contentScore is the case-insensitive fraction of keywords present in
// the rendered plan. An empty keyword list scores 1.
func contentScore(keywords []string, rendered string) (float64, []string) {
	if len(keywords) == 0 {
		return 1, nil
	}
	haystack := strings.ToLower(rendered)
	var missing []string
	found := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			found++
		} else {
			missing = append(missing, kw)
		}
	}
	return float64(found) / float64(len(keywords)), missing
}
