package eval

import (
	"context"
	"time"

	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/itinerary"
	"github.com/voyagent/voyagent/internal/provider"
	"github.com/voyagent/voyagent/internal/rank"
	"github.com/voyagent/voyagent/pkg/models"
)

// Baseline is the monolithic comparison planner: it calls each provider
// sequentially with a single attempt and no weather lookup, then runs the
// same allocate/rank/schedule tail. It exists to measure what the
// concurrent, retrying pipeline buys.
type Baseline struct {
	registry  *provider.Registry
	allocator *budget.Allocator
	ranker    *rank.Ranker
	optimizer *itinerary.Optimizer
}

// NewBaseline creates a baseline planner over the given registry.
func NewBaseline(registry *provider.Registry) *Baseline {
	return &Baseline{
		registry:  registry,
		allocator: budget.NewAllocator(nil, budget.DefaultBufferFraction),
		ranker:    rank.New(models.DefaultPreferenceWeights()),
		optimizer: itinerary.New(itinerary.DefaultDailyCapacity, itinerary.DefaultClusterKM),
	}
}

// Plan answers one request sequentially. Provider failures become
// warnings; both flights and activities failing aborts, matching the
// pipeline's escalation rule so comparisons stay apples to apples.
func (b *Baseline) Plan(ctx context.Context, req *models.TripRequest) (*models.ConsolidatedResponse, error) {
	start := time.Now()
	resp := &models.ConsolidatedResponse{
		RequestID:   req.ID,
		Destination: req.Destination,
	}

	var flights []models.FlightOption
	if req.NeedsFlights() {
		if res := b.call(ctx, models.ProviderFlights, provider.Params{Request: req}, resp); res.OK() {
			flights = res.Flights
		}
	}
	var activities []models.ActivityOption
	if res := b.call(ctx, models.ProviderActivities, provider.Params{Request: req}, resp); res.OK() {
		activities = res.Activities
	}
	if len(flights) == 0 && len(activities) == 0 {
		resp.Elapsed = time.Since(start)
		return resp, provider.ErrAllProvidersFailed
	}

	var estimates map[models.Category]models.Money
	if res := b.call(ctx, models.ProviderBudget, provider.Params{
		Request:    req,
		Flights:    flights,
		Activities: activities,
	}, resp); res.OK() && res.Budget != nil {
		estimates = res.Budget.EstimatedCosts
	}

	plan, err := b.allocator.Allocate(req.Budget, estimates)
	if err != nil {
		resp.Elapsed = time.Since(start)
		return resp, err
	}
	resp.Budget = plan

	activityCeiling := plan.Ceiling(models.CategoryActivities)
	resp.ActivityRecommendations = b.ranker.RankActivities(activities, req.PreferenceTags, activityCeiling)
	resp.FlightRecommendations = b.ranker.RankFlights(flights, plan.Ceiling(models.CategoryFlights))

	it, err := b.optimizer.Build(resp.ActivityRecommendations, activities, nil, req.Dates, activityCeiling)
	if err != nil && len(activities) > 0 {
		resp.Itinerary = it
		resp.Elapsed = time.Since(start)
		return resp, err
	}
	it.Budget = plan
	if len(resp.FlightRecommendations) > 0 {
		for i := range flights {
			if flights[i].ID == resp.FlightRecommendations[0].SubjectID {
				it.Flights = []models.FlightOption{flights[i]}
				break
			}
		}
	}
	resp.Itinerary = it
	resp.Elapsed = time.Since(start)
	return resp, nil
}

// call invokes one provider once, recording warnings on failure.
func (b *Baseline) call(ctx context.Context, id models.ProviderID, params provider.Params, resp *models.ConsolidatedResponse) *models.ProviderResult {
	res, err := b.registry.Invoke(ctx, id, params)
	resp.ProvidersInvoked = append(resp.ProvidersInvoked, id)
	if err != nil {
		resp.Warnings = append(resp.Warnings, models.Warning{
			Provider: id,
			Message:  err.Error(),
		})
		return &models.ProviderResult{Provider: id, Status: models.ResultFailed, Err: err}
	}
	return res
}
