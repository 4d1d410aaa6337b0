package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is a spending category within a budget plan.
type Category string

const (
	// CategoryFlights covers flight tickets.
	CategoryFlights Category = "flights"
	// CategoryActivities covers scheduled activities.
	CategoryActivities Category = "activities"
	// CategoryLodging covers accommodation.
	CategoryLodging Category = "lodging"
	// CategoryBuffer is the reserved contingency slice.
	CategoryBuffer Category = "buffer"
)

// Valid returns true if the category is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryFlights, CategoryActivities, CategoryLodging, CategoryBuffer:
		return true
	default:
		return false
	}
}

// SpendingCategories lists the allocatable categories (buffer excluded),
// in canonical order.
func SpendingCategories() []Category {
	return []Category{CategoryFlights, CategoryActivities, CategoryLodging}
}

// BudgetPlan distributes a total budget across spending categories.
// Invariant: sum of ceilings plus buffer never exceeds Total (within one
// minor currency unit).
type BudgetPlan struct {
	// Total is the full trip budget in the working currency.
	Total Money `json:"total"`
	// Ceilings maps each spending category to its allocated ceiling.
	Ceilings map[Category]Money `json:"ceilings"`
	// Buffer is the reserved contingency amount.
	Buffer Money `json:"buffer"`
}

// Ceiling returns the ceiling for a category, or zero money in the plan
// currency when the category has no allocation.
func (p *BudgetPlan) Ceiling(c Category) Money {
	if m, ok := p.Ceilings[c]; ok {
		return m
	}
	return Money{Currency: p.Total.Currency}
}

// SumCeilings returns the sum of all category ceilings.
func (p *BudgetPlan) SumCeilings() Money {
	sum := Money{Currency: p.Total.Currency}
	for _, m := range p.Ceilings {
		sum = sum.Add(m)
	}
	return sum
}

// Recommendation scores a single flight or activity option. Subject
// references the option by identity; it never copies mutable state.
type Recommendation struct {
	// SubjectID is the ID of the referenced FlightOption or ActivityOption.
	SubjectID string `json:"subject_id"`
	// Subject is a short human-readable name for the option.
	Subject string `json:"subject"`
	// Score is the composite score in [0, 1].
	Score float64 `json:"score"`
	// Cost is the option's cost, used for tie-breaking and budget checks.
	Cost Money `json:"cost"`
	// OverBudget is true when the option's cost exceeds the ranking ceiling.
	// Such options are retained but ranked last.
	OverBudget bool `json:"over_budget,omitempty"`
	// RationaleTags explains what drove the score (e.g., "high-rating",
	// "good-value", "preference-match", "over-budget").
	RationaleTags []string `json:"rationale_tags,omitempty"`
}

// ScheduledActivity is one activity placed into an itinerary day.
type ScheduledActivity struct {
	// Activity is the scheduled activity option.
	Activity ActivityOption `json:"activity"`
	// Score is the recommendation score that placed it.
	Score float64 `json:"score"`
}

// ItineraryDay is one day of the itinerary.
// Invariants: RunningCost never exceeds the day's share of the activities
// budget, and RunningDuration never exceeds the configured daily capacity.
type ItineraryDay struct {
	// Date is the calendar day.
	Date time.Time `json:"date"`
	// Condition is the forecast condition used when scheduling this day.
	Condition Condition `json:"condition"`
	// Activities is the ordered list of scheduled activities.
	Activities []ScheduledActivity `json:"activities"`
	// RunningCost is the total cost of the day's activities.
	RunningCost Money `json:"running_cost"`
	// RunningDuration is the total duration of the day's activities.
	RunningDuration time.Duration `json:"running_duration"`
}

// Itinerary is the consolidated schedule covering exactly the requested
// date range. Invariant: flights plus all day costs never exceed the
// budget plan total.
type Itinerary struct {
	// Days covers every requested date, in order.
	Days []ItineraryDay `json:"days"`
	// Flights holds the selected flight option(s), best first.
	Flights []FlightOption `json:"flights,omitempty"`
	// Budget is the plan the itinerary was built against.
	Budget *BudgetPlan `json:"budget,omitempty"`
	// Unscheduled lists ranked activities that fit no day.
	Unscheduled []Recommendation `json:"unscheduled,omitempty"`
}

// TotalCost returns the itinerary's total cost: selected flights plus
// every day's running cost.
func (it *Itinerary) TotalCost() Money {
	currency := "USD"
	if it.Budget != nil {
		currency = it.Budget.Total.Currency
	}
	total := Money{Currency: currency}
	for i := range it.Flights {
		total = total.Add(it.Flights[i].Price)
	}
	for i := range it.Days {
		total = total.Add(it.Days[i].RunningCost)
	}
	return total
}

// ScheduledCount returns the number of activities placed across all days.
func (it *Itinerary) ScheduledCount() int {
	n := 0
	for i := range it.Days {
		n += len(it.Days[i].Activities)
	}
	return n
}

// Warning records a non-fatal provider-level degradation attached to the
// final response.
type Warning struct {
	// Provider is the domain that degraded or failed.
	Provider ProviderID `json:"provider"`
	// Message describes what happened.
	Message string `json:"message"`
}

// ConsolidatedResponse is the final aggregate returned to the caller.
type ConsolidatedResponse struct {
	// RequestID echoes the trip request ID.
	RequestID string `json:"request_id"`
	// Destination echoes the requested destination.
	Destination string `json:"destination"`
	// Itinerary is the built schedule, nil when the request failed terminally.
	Itinerary *Itinerary `json:"itinerary,omitempty"`
	// Budget is the allocated budget plan.
	Budget *BudgetPlan `json:"budget,omitempty"`
	// ActivityRecommendations is the ranked activity list, best first.
	ActivityRecommendations []Recommendation `json:"activity_recommendations,omitempty"`
	// FlightRecommendations is the ranked flight list, best first.
	FlightRecommendations []Recommendation `json:"flight_recommendations,omitempty"`
	// Warnings lists provider-level degradations.
	Warnings []Warning `json:"warnings,omitempty"`
	// ProvidersInvoked lists the providers that were actually called.
	ProvidersInvoked []ProviderID `json:"providers_invoked,omitempty"`
	// Elapsed is the total planning time.
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// Degraded returns true if any provider degraded or failed.
func (r *ConsolidatedResponse) Degraded() bool {
	return len(r.Warnings) > 0
}

// Render produces a human-readable day-by-day summary of the response.
// This is also the surface scenario content checks run against.
func (r *ConsolidatedResponse) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Travel plan for %s\n", r.Destination)
	b.WriteString(strings.Repeat("=", 50) + "\n")

	if r.Budget != nil {
		fmt.Fprintf(&b, "Budget: %s total", r.Budget.Total)
		for _, c := range SpendingCategories() {
			fmt.Fprintf(&b, " | %s %s", c, r.Budget.Ceiling(c))
		}
		fmt.Fprintf(&b, " | buffer %s\n", r.Budget.Buffer)
	}

	if r.Itinerary != nil {
		for i := range r.Itinerary.Flights {
			f := &r.Itinerary.Flights[i]
			fmt.Fprintf(&b, "Flight: %s, %s, %d stops, %s\n",
				f.String(), f.Price, f.Stops, f.Duration())
		}
		for _, day := range r.Itinerary.Days {
			fmt.Fprintf(&b, "\nDay %s (%s):\n", day.Date.Format("2006-01-02"), day.Condition)
			if len(day.Activities) == 0 {
				b.WriteString("  (free day)\n")
				continue
			}
			for _, sa := range day.Activities {
				cost := sa.Activity.Cost.String()
				if sa.Activity.Cost.IsZero() {
					cost = "free"
				}
				fmt.Fprintf(&b, "  - %s [%s] %s, %s\n",
					sa.Activity.Name, sa.Activity.Category, cost, sa.Activity.Duration)
			}
			fmt.Fprintf(&b, "  day total: %s, %s\n", day.RunningCost, day.RunningDuration)
		}
		if n := len(r.Itinerary.Unscheduled); n > 0 {
			fmt.Fprintf(&b, "\nUnscheduled: %d activities did not fit\n", n)
		}
		fmt.Fprintf(&b, "\nTotal itinerary cost: %s\n", r.Itinerary.TotalCost())
	}

	if len(r.ActivityRecommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for i, rec := range r.ActivityRecommendations {
			fmt.Fprintf(&b, "  %d. %s (score %.2f, %s) %s\n",
				i+1, rec.Subject, rec.Score, rec.Cost, strings.Join(rec.RationaleTags, ","))
		}
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\nwarning: %s provider: %s\n", w.Provider, w.Message)
	}
	return b.String()
}
