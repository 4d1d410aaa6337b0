package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/voyagent/voyagent/pkg/models"
)

// WeatherProvider produces a per-day forecast for the trip's date range.
// Without a live weather backend it derives a deterministic forecast from
// the location and date, so planning stays replayable for identical inputs.
type WeatherProvider struct {
	// HorizonDays bounds how far ahead a forecast can be requested,
	// measured from the trip's start date to its end date.
	HorizonDays int
}

// NewWeatherProvider creates a weather provider with the given forecast horizon.
func NewWeatherProvider(horizonDays int) *WeatherProvider {
	return &WeatherProvider{HorizonDays: horizonDays}
}

// ID returns models.ProviderWeather.
func (p *WeatherProvider) ID() models.ProviderID {
	return models.ProviderWeather
}

// Invoke returns a forecast covering every day of the trip, or
// ErrInvalidResponse when the range exceeds the forecast horizon.
func (p *WeatherProvider) Invoke(ctx context.Context, params Params) (*models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}
	req := params.Request
	days := req.Dates.Days()
	if days == 0 {
		return nil, fmt.Errorf("%w: weather needs a date range", ErrInvalidResponse)
	}
	if p.HorizonDays > 0 && days > p.HorizonDays {
		return nil, fmt.Errorf("%w: %d days exceeds the %d-day forecast horizon",
			ErrInvalidResponse, days, p.HorizonDays)
	}

	forecast := &models.WeatherForecast{Location: req.Destination}
	for _, date := range req.Dates.Dates() {
		cond := conditionFor(req.Destination, date.Format("2006-01-02"))
		low, high := tempRange(cond)
		forecast.Days = append(forecast.Days, models.DayForecast{
			Date:      date,
			Condition: cond,
			TempLowC:  low,
			TempHighC: high,
		})
	}

	return &models.ProviderResult{
		Provider: models.ProviderWeather,
		Status:   models.ResultSuccess,
		Weather:  forecast,
	}, nil
}

// conditionFor hashes location and date into a stable condition category.
func conditionFor(location, date string) models.Condition {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(location)))
	h.Write([]byte(date))
	switch h.Sum32() % 5 {
	case 0, 1:
		return models.ConditionSunny
	case 2, 3:
		return models.ConditionCloudy
	default:
		return models.ConditionRainy
	}
}

func tempRange(cond models.Condition) (low, high float64) {
	switch cond {
	case models.ConditionSunny:
		return 18, 29
	case models.ConditionCloudy:
		return 14, 22
	case models.ConditionRainy:
		return 10, 17
	case models.ConditionSnowy:
		return -4, 3
	default:
		return 0, 0
	}
}
