package budget

import (
	"errors"
	"fmt"

	"github.com/voyagent/voyagent/pkg/models"
)

// ErrInfeasibleBudget is returned when the total budget is non-positive.
var ErrInfeasibleBudget = errors.New("infeasible budget")

// DefaultBufferFraction is the budget fraction reserved as contingency.
const DefaultBufferFraction = 0.10

// defaultPriors shapes the allocation when no category has an estimate,
// following the activities-heavy split of the budget advice heuristics.
var defaultPriors = map[models.Category]float64{
	models.CategoryFlights:    0.40,
	models.CategoryActivities: 0.35,
	models.CategoryLodging:    0.25,
}

// InfeasibleError carries the partial state that led to an infeasible
// allocation so the caller can adjust the request.
type InfeasibleError struct {
	// Total is the rejected total budget.
	Total models.Money
	// EstimatedCosts are the per-category estimates at the time of failure.
	EstimatedCosts map[models.Category]models.Money
}

// Error implements error.
func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%v: total %s", ErrInfeasibleBudget, e.Total)
}

// Unwrap lets errors.Is match ErrInfeasibleBudget.
func (e *InfeasibleError) Unwrap() error {
	return ErrInfeasibleBudget
}

// Allocator distributes a total budget across spending categories.
type Allocator struct {
	rates          RateSource
	bufferFraction float64
}

// NewAllocator creates an allocator. A nil rate source falls back to the
// built-in table; a non-positive buffer fraction falls back to the default.
func NewAllocator(rates RateSource, bufferFraction float64) *Allocator {
	if rates == nil {
		rates = DefaultRates()
	}
	if bufferFraction <= 0 || bufferFraction >= 1 {
		bufferFraction = DefaultBufferFraction
	}
	return &Allocator{rates: rates, bufferFraction: bufferFraction}
}

// Allocate converts the estimates into the total's currency and distributes
// the budget. Estimated costs are kept as ceilings when they fit under
// total*(1-bufferFraction); otherwise every category shrinks by the same
// ratio, preserving relative priority. The returned plan always satisfies
// sum(ceilings) + buffer <= total; rounding remainders are absorbed by the
// buffer.
func (a *Allocator) Allocate(total models.Money, estimated map[models.Category]models.Money) (*models.BudgetPlan, error) {
	if !total.IsPositive() {
		return nil, &InfeasibleError{Total: total, EstimatedCosts: estimated}
	}

	currency := total.Currency
	normalized := make(map[models.Category]float64, len(defaultPriors))
	sumEst := 0.0
	for _, c := range models.SpendingCategories() {
		est, ok := estimated[c]
		if !ok {
			continue
		}
		conv, err := Convert(est, currency, a.rates)
		if err != nil {
			return nil, fmt.Errorf("normalizing %s estimate: %w", c, err)
		}
		normalized[c] = conv.Amount
		sumEst += conv.Amount
	}

	cap := total.Amount * (1 - a.bufferFraction)

	// With no estimates at all, fall back to the prior shape.
	if sumEst <= 0 {
		normalized = map[models.Category]float64{}
		for c, frac := range defaultPriors {
			normalized[c] = cap * frac
		}
		sumEst = cap
	}

	ratio := 1.0
	if sumEst > cap {
		ratio = cap / sumEst
	}

	plan := &models.BudgetPlan{
		Total:    total.RoundMinor(),
		Ceilings: make(map[models.Category]models.Money, len(normalized)),
	}
	sumCeilings := 0.0
	for _, c := range models.SpendingCategories() {
		amount, ok := normalized[c]
		if !ok {
			continue
		}
		ceiling := models.NewMoney(amount*ratio, currency)
		// Rounding can push a ceiling past what remains under the cap;
		// shave it back so the buffer never goes negative.
		if sumCeilings+ceiling.Amount > total.Amount {
			ceiling = models.NewMoney(total.Amount-sumCeilings, currency)
		}
		plan.Ceilings[c] = ceiling
		sumCeilings += ceiling.Amount
	}

	plan.Buffer = models.NewMoney(total.Amount-sumCeilings, currency)
	return plan, nil
}
