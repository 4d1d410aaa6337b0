package provider

import (
	"context"
	"fmt"

	"github.com/voyagent/voyagent/internal/dataset"
	"github.com/voyagent/voyagent/pkg/models"
)

// ActivitiesProvider answers activity searches from the activity listings
// dataset.
type ActivitiesProvider struct {
	catalog *dataset.Catalog
}

// NewActivitiesProvider creates an activities provider over the given catalog.
func NewActivitiesProvider(catalog *dataset.Catalog) *ActivitiesProvider {
	return &ActivitiesProvider{catalog: catalog}
}

// ID returns models.ProviderActivities.
func (p *ActivitiesProvider) ID() models.ProviderID {
	return models.ProviderActivities
}

// Invoke returns every activity in the destination city, in dataset order.
// Preference tags do not filter here: the ranker scores tag overlap, and
// options the traveler did not ask for are still candidates for free slots.
func (p *ActivitiesProvider) Invoke(ctx context.Context, params Params) (*models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}
	req := params.Request
	if req.Destination == "" {
		return nil, fmt.Errorf("%w: activities need a destination", ErrInvalidResponse)
	}

	records := p.catalog.Activities(dataset.ActivityQuery{City: req.Destination})
	options := make([]models.ActivityOption, 0, len(records))
	for i, rec := range records {
		options = append(options, models.ActivityOption{
			ID:          fmt.Sprintf("AC-%03d", i+1),
			Name:        rec.Name,
			City:        rec.City,
			Lat:         rec.Lat,
			Lon:         rec.Lon,
			Category:    rec.Category,
			Cost:        rec.Cost,
			Duration:    rec.Duration,
			WeatherTags: rec.WeatherTags,
			Rating:      rec.Rating,
		})
	}

	return &models.ProviderResult{
		Provider:   models.ProviderActivities,
		Status:     models.ResultSuccess,
		Activities: options,
	}, nil
}
