// Package supervisor coordinates the capability providers and runs the
// planning pipeline: fan out provider calls, allocate the budget, rank the
// options, and schedule the itinerary.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/itinerary"
	"github.com/voyagent/voyagent/internal/provider"
	"github.com/voyagent/voyagent/internal/rank"
	"github.com/voyagent/voyagent/pkg/models"
)

// Options configures a Supervisor. Zero-value fields fall back to defaults.
type Options struct {
	// Allocator distributes the budget; nil uses the default rates and buffer.
	Allocator *budget.Allocator
	// Ranker scores options; nil uses the default preference weights.
	Ranker *rank.Ranker
	// Optimizer schedules activities; nil uses the default capacity and
	// cluster threshold.
	Optimizer *itinerary.Optimizer
	// Policy bounds provider retries.
	Policy RetryPolicy
	// PlanTimeout bounds a whole Plan call. Zero disables the deadline.
	PlanTimeout time.Duration
	// HorizonDays is how far ahead weather is consulted. Trips beyond it
	// are planned without a forecast.
	HorizonDays int
	// Emitter receives progress events; nil disables them.
	Emitter *EventEmitter
}

// Supervisor owns provider selection, sequencing, retries, and aggregation.
// A single Supervisor is safe for concurrent Plan calls: all planning state
// is request-scoped.
type Supervisor struct {
	registry    *provider.Registry
	allocator   *budget.Allocator
	ranker      *rank.Ranker
	optimizer   *itinerary.Optimizer
	policy      RetryPolicy
	planTimeout time.Duration
	horizonDays int
	emitter     *EventEmitter
}

// New creates a Supervisor over the given provider registry.
func New(registry *provider.Registry, opts Options) *Supervisor {
	s := &Supervisor{
		registry:    registry,
		allocator:   opts.Allocator,
		ranker:      opts.Ranker,
		optimizer:   opts.Optimizer,
		policy:      opts.Policy,
		planTimeout: opts.PlanTimeout,
		horizonDays: opts.HorizonDays,
		emitter:     opts.Emitter,
	}
	if s.allocator == nil {
		s.allocator = budget.NewAllocator(nil, budget.DefaultBufferFraction)
	}
	if s.ranker == nil {
		s.ranker = rank.New(models.DefaultPreferenceWeights())
	}
	if s.optimizer == nil {
		s.optimizer = itinerary.New(itinerary.DefaultDailyCapacity, itinerary.DefaultClusterKM)
	}
	if s.policy.MaxAttempts == 0 {
		s.policy = DefaultRetryPolicy()
	}
	return s
}

// Plan executes the full pipeline for one trip request. Provider failures
// degrade to warnings on the response; the request aborts only when both
// flights and activities come back empty-handed. Structural failures
// (infeasible budget, no feasible itinerary) return the partial response
// alongside the error so callers can adjust the request.
func (s *Supervisor) Plan(ctx context.Context, req *models.TripRequest) (*models.ConsolidatedResponse, error) {
	if req == nil {
		return nil, errors.New("nil trip request")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if s.planTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.planTimeout)
		defer cancel()
	}

	start := time.Now()
	s.emitter.Emit(Event{Type: EventPlanStarted, Message: req.Destination})
	log.Printf("[supervisor] plan %s: %s -> %s, %d day(s), budget %s",
		req.ID, req.Origin, req.Destination, req.Dates.Days(), req.Budget)

	resp := &models.ConsolidatedResponse{
		RequestID:   req.ID,
		Destination: req.Destination,
	}

	needFlights := req.NeedsFlights()
	days := req.Dates.Days()
	needWeather := days > 0 && (s.horizonDays <= 0 || days <= s.horizonDays)
	if days > 0 && !needWeather {
		resp.Warnings = append(resp.Warnings, models.Warning{
			Provider: models.ProviderWeather,
			Message:  fmt.Sprintf("trip is %d days, beyond the %d-day forecast horizon; planning without weather", days, s.horizonDays),
		})
	}

	// Fan out the independent providers. Each goroutine writes only its
	// own slot.
	var (
		wg         sync.WaitGroup
		flightsRes *models.ProviderResult
		actsRes    *models.ProviderResult
		wxRes      *models.ProviderResult
	)
	params := provider.Params{Request: req}
	if needFlights {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flightsRes = s.callProvider(ctx, models.ProviderFlights, params)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		actsRes = s.callProvider(ctx, models.ProviderActivities, params)
	}()
	if needWeather {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wxRes = s.callProvider(ctx, models.ProviderWeather, params)
		}()
	}
	wg.Wait()

	for _, res := range []*models.ProviderResult{flightsRes, actsRes, wxRes} {
		if res == nil {
			continue
		}
		resp.ProvidersInvoked = append(resp.ProvidersInvoked, res.Provider)
		if !res.OK() {
			resp.Warnings = append(resp.Warnings, models.Warning{
				Provider: res.Provider,
				Message:  fmt.Sprintf("failed after %d attempt(s): %v", res.Attempts, res.Err),
			})
		}
	}

	flightsOK := flightsRes.OK()
	actsOK := actsRes.OK()
	if !flightsOK && !actsOK {
		resp.Elapsed = time.Since(start)
		s.emitter.Emit(Event{Type: EventPlanCompleted, Err: provider.ErrAllProvidersFailed, Elapsed: resp.Elapsed})
		return resp, provider.ErrAllProvidersFailed
	}

	var flights []models.FlightOption
	if flightsOK {
		flights = flightsRes.Flights
	}
	var activities []models.ActivityOption
	if actsOK {
		activities = actsRes.Activities
	}
	var forecast *models.WeatherForecast
	if wxRes.OK() {
		forecast = wxRes.Weather
	}

	// Budget advice runs after fan-in because it reads the other payloads.
	advice := s.budgetAdvice(ctx, req, flights, activities, resp)

	s.emitter.Emit(Event{Type: EventStageStarted, Stage: "allocate"})
	var estimates map[models.Category]models.Money
	if advice != nil {
		estimates = advice.EstimatedCosts
	}
	plan, err := s.allocator.Allocate(req.Budget, estimates)
	if err != nil {
		resp.ActivityRecommendations = s.ranker.RankActivities(activities, req.PreferenceTags, models.Money{})
		resp.FlightRecommendations = s.ranker.RankFlights(flights, models.Money{})
		resp.Elapsed = time.Since(start)
		s.emitter.Emit(Event{Type: EventPlanCompleted, Err: err, Elapsed: resp.Elapsed})
		return resp, err
	}
	resp.Budget = plan

	s.emitter.Emit(Event{Type: EventStageStarted, Stage: "rank"})
	activityCeiling := plan.Ceiling(models.CategoryActivities)
	resp.ActivityRecommendations = s.ranker.RankActivities(activities, req.PreferenceTags, activityCeiling)
	resp.FlightRecommendations = s.ranker.RankFlights(flights, plan.Ceiling(models.CategoryFlights))

	s.emitter.Emit(Event{Type: EventStageStarted, Stage: "schedule"})
	it, err := s.optimizer.Build(resp.ActivityRecommendations, activities, forecast, req.Dates, activityCeiling)
	if err != nil {
		if len(activities) > 0 {
			resp.Itinerary = it
			resp.Elapsed = time.Since(start)
			s.emitter.Emit(Event{Type: EventPlanCompleted, Err: err, Elapsed: resp.Elapsed})
			return resp, err
		}
		// Nothing to schedule at all: an empty itinerary with the
		// activities warning already attached, not a hard failure.
	}
	it.Budget = plan
	it.Flights = selectFlights(resp.FlightRecommendations, flights)
	resp.Itinerary = it

	resp.Elapsed = time.Since(start)
	s.emitter.Emit(Event{Type: EventPlanCompleted, Elapsed: resp.Elapsed})
	log.Printf("[supervisor] plan %s: scheduled %d activities, %d unscheduled, %d warning(s), %s",
		req.ID, it.ScheduledCount(), len(it.Unscheduled), len(resp.Warnings), resp.Elapsed)
	return resp, nil
}

// callProvider dispatches one provider call with retries and events.
func (s *Supervisor) callProvider(ctx context.Context, id models.ProviderID, params provider.Params) *models.ProviderResult {
	prov, err := s.registry.Get(id)
	if err != nil {
		return &models.ProviderResult{Provider: id, Status: models.ResultFailed, Err: err}
	}
	s.emitter.Emit(Event{Type: EventProviderStarted, Provider: id})
	res := s.invokeWithRetry(ctx, prov, params)
	if res.OK() {
		s.emitter.Emit(Event{Type: EventProviderCompleted, Provider: id, Elapsed: res.Elapsed})
	} else {
		s.emitter.Emit(Event{Type: EventProviderFailed, Provider: id, Err: res.Err, Attempt: res.Attempts})
	}
	return res
}

// budgetAdvice invokes the budget provider with the upstream payloads.
// Failure degrades to a warning and a nil advice, which sends allocation
// down the heuristic priors path.
func (s *Supervisor) budgetAdvice(ctx context.Context, req *models.TripRequest, flights []models.FlightOption, activities []models.ActivityOption, resp *models.ConsolidatedResponse) *models.BudgetAdvice {
	prov, err := s.registry.Get(models.ProviderBudget)
	if err != nil {
		return nil
	}
	res := s.callProvider(ctx, prov.ID(), provider.Params{
		Request:    req,
		Flights:    flights,
		Activities: activities,
	})
	resp.ProvidersInvoked = append(resp.ProvidersInvoked, models.ProviderBudget)
	if !res.OK() {
		resp.Warnings = append(resp.Warnings, models.Warning{
			Provider: models.ProviderBudget,
			Message:  fmt.Sprintf("failed after %d attempt(s): %v", res.Attempts, res.Err),
		})
		return nil
	}
	return res.Budget
}

// selectFlights picks the best in-budget flight for the itinerary. With no
// in-budget option, the cheapest over-budget one is still surfaced so the
// traveler sees the shortfall.
func selectFlights(ranked []models.Recommendation, options []models.FlightOption) []models.FlightOption {
	if len(ranked) == 0 {
		return nil
	}
	byID := make(map[string]*models.FlightOption, len(options))
	for i := range options {
		byID[options[i].ID] = &options[i]
	}
	if opt, ok := byID[ranked[0].SubjectID]; ok {
		return []models.FlightOption{*opt}
	}
	return nil
}
