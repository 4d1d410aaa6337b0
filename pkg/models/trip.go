package models

import (
	"strings"
	"time"
)

// ProviderID identifies a capability provider domain.
type ProviderID string

const (
	// ProviderFlights searches and compares flight options.
	ProviderFlights ProviderID = "flights"
	// ProviderActivities searches activities and attractions.
	ProviderActivities ProviderID = "activities"
	// ProviderWeather produces a per-day forecast for the trip dates.
	ProviderWeather ProviderID = "weather"
	// ProviderBudget estimates category costs and validates feasibility.
	ProviderBudget ProviderID = "budget"
)

// Valid returns true if the provider ID is a known value.
func (p ProviderID) Valid() bool {
	switch p {
	case ProviderFlights, ProviderActivities, ProviderWeather, ProviderBudget:
		return true
	default:
		return false
	}
}

// AllProviders lists every known provider ID in canonical order.
func AllProviders() []ProviderID {
	return []ProviderID{ProviderFlights, ProviderActivities, ProviderWeather, ProviderBudget}
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	// Start is the first day of the trip.
	Start time.Time `json:"start"`
	// End is the last day of the trip (inclusive).
	End time.Time `json:"end"`
}

// Days returns the number of calendar days covered, or 0 for an
// inverted or unset range.
func (r DateRange) Days() int {
	if r.Start.IsZero() {
		return 0
	}
	start := truncateDay(r.Start)
	end := truncateDay(r.End)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Dates returns every day in the range, in order.
func (r DateRange) Dates() []time.Time {
	n := r.Days()
	dates := make([]time.Time, 0, n)
	d := truncateDay(r.Start)
	for i := 0; i < n; i++ {
		dates = append(dates, d)
		d = d.AddDate(0, 0, 1)
	}
	return dates
}

// Contains returns true if the given date falls within the range.
func (r DateRange) Contains(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(truncateDay(r.Start)) && !d.After(truncateDay(r.End))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Constraints holds optional hard limits from the traveler.
type Constraints struct {
	// MaxFlightStops caps the number of stops; nil means no limit.
	MaxFlightStops *int `json:"max_flight_stops,omitempty"`
	// MaxFlightPrice caps the flight price in the trip currency; nil means no limit.
	MaxFlightPrice *float64 `json:"max_flight_price,omitempty"`
	// Dietary lists dietary needs (informational, passed to providers).
	Dietary []string `json:"dietary,omitempty"`
	// Mobility lists mobility needs (informational, passed to providers).
	Mobility []string `json:"mobility,omitempty"`
}

// PreferenceWeights controls the relative importance of ranking sub-scores.
// The three weights must sum to 1.
type PreferenceWeights struct {
	// Rating weighs the normalized option rating.
	Rating float64 `json:"rating"`
	// Cost weighs the cost-fit sub-score against the budget ceiling.
	Cost float64 `json:"cost"`
	// Preference weighs the preference-tag overlap sub-score.
	Preference float64 `json:"preference"`
}

// DefaultPreferenceWeights favors rating and cost fit equally, with
// preference overlap secondary.
func DefaultPreferenceWeights() PreferenceWeights {
	return PreferenceWeights{Rating: 0.4, Cost: 0.4, Preference: 0.2}
}

// Valid returns true if the weights are non-negative and sum to 1
// within a small tolerance.
func (w PreferenceWeights) Valid() bool {
	if w.Rating < 0 || w.Cost < 0 || w.Preference < 0 {
		return false
	}
	sum := w.Rating + w.Cost + w.Preference
	return sum > 0.999 && sum < 1.001
}

// TripRequest describes a single trip-planning request. It is immutable
// once constructed; the Supervisor owns its lifecycle for one request.
type TripRequest struct {
	// ID is a short unique identifier for this request.
	ID string `json:"id"`
	// Origin is the departure city. Empty means flights cannot be searched.
	Origin string `json:"origin,omitempty"`
	// Destination is the destination city.
	Destination string `json:"destination"`
	// Dates is the inclusive trip date range.
	Dates DateRange `json:"dates"`
	// Travelers is the number of travelers.
	Travelers int `json:"travelers"`
	// Budget is the total trip budget.
	Budget Money `json:"budget"`
	// PreferenceTags are free-text preference tags (e.g., "culture", "food").
	PreferenceTags []string `json:"preference_tags,omitempty"`
	// Constraints holds optional hard limits.
	Constraints Constraints `json:"constraints,omitempty"`
	// Query is the raw natural-language request, if one was given.
	Query string `json:"query,omitempty"`
}

// NeedsFlights returns true if the request carries enough information to
// invoke the flights provider: travel dates plus an origin/destination pair
// naming two different cities.
func (r *TripRequest) NeedsFlights() bool {
	if r.Origin == "" || r.Destination == "" || r.Dates.Days() == 0 {
		return false
	}
	return !strings.EqualFold(r.Origin, r.Destination)
}
