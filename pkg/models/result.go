package models

import "time"

// ResultStatus represents the outcome of a provider invocation.
type ResultStatus string

const (
	// ResultSuccess indicates the provider returned a usable payload.
	ResultSuccess ResultStatus = "success"
	// ResultFailed indicates the provider failed after exhausting retries.
	ResultFailed ResultStatus = "failed"
	// ResultSkipped indicates the provider was not invoked for this request.
	ResultSkipped ResultStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s ResultStatus) Valid() bool {
	switch s {
	case ResultSuccess, ResultFailed, ResultSkipped:
		return true
	default:
		return false
	}
}

// ProviderResult is the tagged outcome of one provider invocation. Exactly
// one payload field is set on success, matching the provider that produced
// it. Results are created by the invocation, consumed once by aggregation,
// and never mutated.
type ProviderResult struct {
	// Provider identifies which provider produced this result.
	Provider ProviderID `json:"provider"`
	// Status is the invocation outcome.
	Status ResultStatus `json:"status"`
	// Err holds the failure cause when Status is ResultFailed. It is not
	// serialized; the consolidated response carries the text in Warnings.
	Err error `json:"-"`
	// Attempts is the number of invocation attempts made.
	Attempts int `json:"attempts,omitempty"`
	// Elapsed is the total time spent on this provider, retries included.
	Elapsed time.Duration `json:"elapsed,omitempty"`

	// Flights is set by the flights provider.
	Flights []FlightOption `json:"flights,omitempty"`
	// Activities is set by the activities provider.
	Activities []ActivityOption `json:"activities,omitempty"`
	// Weather is set by the weather provider.
	Weather *WeatherForecast `json:"weather,omitempty"`
	// Budget is set by the budget provider.
	Budget *BudgetAdvice `json:"budget,omitempty"`
}

// OK returns true if the result carries a usable payload.
func (r *ProviderResult) OK() bool {
	return r != nil && r.Status == ResultSuccess
}
