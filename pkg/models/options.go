package models

import (
	"fmt"
	"time"
)

// FlightOption is a single candidate flight returned by the flights provider.
type FlightOption struct {
	// ID uniquely identifies this option within a request.
	ID string `json:"id"`
	// Carrier is the operating airline.
	Carrier string `json:"carrier"`
	// FlightNumber is the carrier's flight designator.
	FlightNumber string `json:"flight_number"`
	// Origin is the departure city.
	Origin string `json:"origin"`
	// Destination is the arrival city.
	Destination string `json:"destination"`
	// Price is the ticket price per traveler.
	Price Money `json:"price"`
	// Departure is the scheduled departure time.
	Departure time.Time `json:"departure"`
	// Arrival is the scheduled arrival time.
	Arrival time.Time `json:"arrival"`
	// Stops is the number of intermediate stops.
	Stops int `json:"stops"`
}

// Duration returns the scheduled flight duration.
func (f *FlightOption) Duration() time.Duration {
	return f.Arrival.Sub(f.Departure)
}

// Less orders flight options by price, then by duration.
func (f *FlightOption) Less(other *FlightOption) bool {
	if f.Price.Amount != other.Price.Amount {
		return f.Price.Amount < other.Price.Amount
	}
	return f.Duration() < other.Duration()
}

// ActivityOption is a single candidate activity returned by the
// activities provider.
type ActivityOption struct {
	// ID uniquely identifies this option within a request.
	ID string `json:"id"`
	// Name is the activity name.
	Name string `json:"name"`
	// City is the city where the activity takes place.
	City string `json:"city"`
	// Lat and Lon locate the activity for geographic clustering.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	// Category classifies the activity (culture, adventure, food, ...).
	Category string `json:"category"`
	// Cost is the per-person cost.
	Cost Money `json:"cost"`
	// Duration is the estimated time the activity takes.
	Duration time.Duration `json:"duration"`
	// WeatherTags lists the conditions the activity suits
	// (e.g., "sunny", "any", "indoor").
	WeatherTags []string `json:"weather_tags,omitempty"`
	// Rating is the raw rating on the RatingMin..RatingMax scale.
	Rating float64 `json:"rating"`
}

// Rating scale bounds for raw activity ratings.
const (
	RatingMin = 0.0
	RatingMax = 5.0
)

// Condition is a coarse weather condition category.
type Condition string

const (
	ConditionSunny   Condition = "sunny"
	ConditionCloudy  Condition = "cloudy"
	ConditionRainy   Condition = "rainy"
	ConditionSnowy   Condition = "snowy"
	ConditionUnknown Condition = "unknown"
)

// Valid returns true if the condition is a known value.
func (c Condition) Valid() bool {
	switch c {
	case ConditionSunny, ConditionCloudy, ConditionRainy, ConditionSnowy, ConditionUnknown:
		return true
	default:
		return false
	}
}

// Suits reports whether an activity with the given weather tags can be
// scheduled under this condition. An empty tag list, an "any" tag, or an
// unknown condition never excludes the activity. "indoor" suits every
// condition; "outdoor" excludes rain and snow.
func (c Condition) Suits(tags []string) bool {
	if c == ConditionUnknown || len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		switch tag {
		case "any", "indoor":
			return true
		case "outdoor":
			if c != ConditionRainy && c != ConditionSnowy {
				return true
			}
		case string(c):
			return true
		}
	}
	return false
}

// DayForecast is the predicted conditions for a single day.
type DayForecast struct {
	// Date is the forecast day.
	Date time.Time `json:"date"`
	// Condition is the dominant condition category for the day.
	Condition Condition `json:"condition"`
	// TempLowC and TempHighC bound the expected temperature in Celsius.
	TempLowC  float64 `json:"temp_low_c"`
	TempHighC float64 `json:"temp_high_c"`
}

// WeatherForecast is an ordered per-day forecast covering some or all of a
// trip's date range. Days not covered are treated as weather-unknown.
type WeatherForecast struct {
	// Location is the forecast location.
	Location string `json:"location"`
	// Days holds the per-day forecasts in date order.
	Days []DayForecast `json:"days"`
}

// ConditionOn returns the forecast condition for the given date, or
// ConditionUnknown when the date is not covered.
func (w *WeatherForecast) ConditionOn(date time.Time) Condition {
	if w == nil {
		return ConditionUnknown
	}
	d := truncateDay(date)
	for _, day := range w.Days {
		if truncateDay(day.Date).Equal(d) {
			return day.Condition
		}
	}
	return ConditionUnknown
}

// Covers returns true if the forecast contains an entry for every day in
// the range.
func (w *WeatherForecast) Covers(r DateRange) bool {
	if w == nil {
		return false
	}
	for _, date := range r.Dates() {
		if w.ConditionOn(date) == ConditionUnknown {
			return false
		}
	}
	return true
}

// BudgetAdvice is the budget provider's payload: per-category cost
// estimates derived from the other providers' figures.
type BudgetAdvice struct {
	// EstimatedCosts maps each spending category to its estimated cost.
	EstimatedCosts map[Category]Money `json:"estimated_costs"`
	// Feasible is false when the estimates already exceed the total budget.
	Feasible bool `json:"feasible"`
	// Notes carries short human-readable advice lines.
	Notes []string `json:"notes,omitempty"`
}

// String returns a short identifier for a flight option, used in
// recommendations and rendering.
func (f *FlightOption) String() string {
	return fmt.Sprintf("%s %s (%s -> %s)", f.Carrier, f.FlightNumber, f.Origin, f.Destination)
}
