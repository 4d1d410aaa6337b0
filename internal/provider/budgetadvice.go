package provider

import (
	"context"
	"fmt"

	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/pkg/models"
)

// Nightly lodging estimate used when no lodging data source exists.
const lodgingNightlyUSD = 90.0

// Activity slots assumed per day when estimating the activities category.
const estimatedSlotsPerDay = 2

// BudgetProvider estimates per-category costs from the other providers'
// figures and flags infeasible requests. It runs after the flights and
// activities providers because it needs their payloads.
type BudgetProvider struct {
	rates budget.RateSource
}

// NewBudgetProvider creates a budget provider using the given rate source
// for currency normalization.
func NewBudgetProvider(rates budget.RateSource) *BudgetProvider {
	return &BudgetProvider{rates: rates}
}

// ID returns models.ProviderBudget.
func (p *BudgetProvider) ID() models.ProviderID {
	return models.ProviderBudget
}

// Invoke estimates flight, activity, and lodging costs in the trip
// currency and reports whether the estimates fit the total budget.
func (p *BudgetProvider) Invoke(ctx context.Context, params Params) (*models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}
	req := params.Request
	currency := req.Budget.Currency
	if currency == "" {
		return nil, fmt.Errorf("%w: budget needs a total with a currency", ErrInvalidResponse)
	}

	travelers := req.Travelers
	if travelers < 1 {
		travelers = 1
	}
	days := req.Dates.Days()
	if days < 1 {
		days = 1
	}

	advice := &models.BudgetAdvice{
		EstimatedCosts: make(map[models.Category]models.Money),
	}

	// Flights: cheapest option per traveler.
	flightEst := models.Money{Currency: currency}
	if len(params.Flights) > 0 {
		cheapest := params.Flights[0]
		for i := range params.Flights {
			if params.Flights[i].Less(&cheapest) {
				cheapest = params.Flights[i]
			}
		}
		price, err := budget.Convert(cheapest.Price, currency, p.rates)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		flightEst = price.Scale(float64(travelers))
		advice.Notes = append(advice.Notes,
			fmt.Sprintf("cheapest flight %s at %s", cheapest.String(), cheapest.Price))
	}
	advice.EstimatedCosts[models.CategoryFlights] = flightEst

	// Activities: mean candidate cost, a fixed number of slots per day.
	activityEst := models.Money{Currency: currency}
	if len(params.Activities) > 0 {
		sum := 0.0
		for i := range params.Activities {
			cost, err := budget.Convert(params.Activities[i].Cost, currency, p.rates)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
			sum += cost.Amount
		}
		mean := sum / float64(len(params.Activities))
		activityEst = models.NewMoney(mean*float64(estimatedSlotsPerDay*days*travelers), currency)
	}
	advice.EstimatedCosts[models.CategoryActivities] = activityEst

	// Lodging: flat nightly heuristic; the last night of the range is the
	// return day, so nights = days - 1 (minimum one night).
	nights := days - 1
	if nights < 1 {
		nights = 1
	}
	nightly, err := budget.Convert(models.USD(lodgingNightlyUSD), currency, p.rates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	advice.EstimatedCosts[models.CategoryLodging] = nightly.Scale(float64(nights * travelers))

	total := 0.0
	for _, m := range advice.EstimatedCosts {
		total += m.Amount
	}
	advice.Feasible = req.Budget.IsPositive() && total <= req.Budget.Amount
	if !advice.Feasible {
		advice.Notes = append(advice.Notes,
			fmt.Sprintf("estimated costs %.2f exceed budget %s; ceilings will be scaled down",
				total, req.Budget))
	}

	return &models.ProviderResult{
		Provider: models.ProviderBudget,
		Status:   models.ResultSuccess,
		Budget:   advice,
	}, nil
}
