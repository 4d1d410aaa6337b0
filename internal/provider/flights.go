package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/voyagent/voyagent/internal/dataset"
	"github.com/voyagent/voyagent/pkg/models"
)

// FlightsProvider answers flight searches from the flight listings dataset.
type FlightsProvider struct {
	catalog *dataset.Catalog
}

// NewFlightsProvider creates a flights provider over the given catalog.
func NewFlightsProvider(catalog *dataset.Catalog) *FlightsProvider {
	return &FlightsProvider{catalog: catalog}
}

// ID returns models.ProviderFlights.
func (p *FlightsProvider) ID() models.ProviderID {
	return models.ProviderFlights
}

// Invoke searches flights matching the request's origin/destination pair and
// constraints. Options are returned sorted by price, then duration.
func (p *FlightsProvider) Invoke(ctx context.Context, params Params) (*models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}
	req := params.Request
	if req.Origin == "" || req.Destination == "" {
		return nil, fmt.Errorf("%w: flights need an origin/destination pair", ErrInvalidResponse)
	}

	q := dataset.FlightQuery{
		Origin:      req.Origin,
		Destination: req.Destination,
		MaxPrice:    req.Constraints.MaxFlightPrice,
		MaxStops:    req.Constraints.MaxFlightStops,
	}

	records := p.catalog.Flights(q)
	options := make([]models.FlightOption, 0, len(records))
	for i, rec := range records {
		dep, arr := scheduleTimes(rec)
		options = append(options, models.FlightOption{
			ID:           fmt.Sprintf("FL-%03d", i+1),
			Carrier:      rec.Carrier,
			FlightNumber: rec.FlightNumber,
			Origin:       rec.Origin,
			Destination:  rec.Destination,
			Price:        rec.Price,
			Departure:    dep,
			Arrival:      arr,
			Stops:        rec.Stops,
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Less(&options[j])
	})

	return &models.ProviderResult{
		Provider: models.ProviderFlights,
		Status:   models.ResultSuccess,
		Flights:  options,
	}, nil
}

// scheduleTimes combines the dataset's date and HH:MM columns into concrete
// departure and arrival times. An arrival earlier than the departure rolls
// over to the next day.
func scheduleTimes(rec dataset.FlightRecord) (time.Time, time.Time) {
	dep := atClock(rec.Date, rec.DepartureHHMM)
	arr := atClock(rec.Date, rec.ArrivalHHMM)
	if !arr.After(dep) {
		arr = arr.AddDate(0, 0, 1)
	}
	return dep, arr
}

func atClock(date time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
