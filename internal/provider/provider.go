// Package provider defines the capability provider contract and the four
// domain providers (flights, activities, weather, budget) invoked by the
// supervisor.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/voyagent/voyagent/pkg/models"
)

// Provider-level failures. Transient ones (timeout, rate limit) are retried
// by the supervisor; all are recorded as warnings rather than aborting the
// pipeline, unless both flights and activities fail.
var (
	// ErrTimeout indicates the provider did not answer within its deadline.
	ErrTimeout = errors.New("provider timeout")
	// ErrRateLimited indicates the provider's backend signalled a rate limit.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrInvalidResponse indicates the provider produced an unusable payload.
	ErrInvalidResponse = errors.New("provider returned invalid response")
	// ErrAllProvidersFailed indicates both flights and activities failed,
	// leaving nothing plannable.
	ErrAllProvidersFailed = errors.New("all providers failed")
	// ErrUnknownProvider indicates a dispatch for an unregistered provider ID.
	ErrUnknownProvider = errors.New("unknown provider")
)

// IsTransient reports whether a provider error is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Params carries the typed, request-derived parameters for one invocation.
// Flights and Activities are populated only for downstream providers that
// need upstream cost figures (the budget provider).
type Params struct {
	// Request is the trip request being planned.
	Request *models.TripRequest
	// Flights holds the flight provider's successful payload, if any.
	Flights []models.FlightOption
	// Activities holds the activities provider's successful payload, if any.
	Activities []models.ActivityOption
}

// Provider is the uniform contract every domain module implements.
// Implementations may be backed by direct data lookup or a model-driven
// mechanism; the supervisor is agnostic to which.
type Provider interface {
	// ID returns the provider's identity.
	ID() models.ProviderID
	// Invoke performs one lookup. A non-nil error classifies the failure
	// (ErrTimeout, ErrRateLimited, ErrInvalidResponse); on success the
	// returned result carries the provider's payload.
	Invoke(ctx context.Context, p Params) (*models.ProviderResult, error)
}

// Registry is a static dispatch table keyed by provider identifier.
type Registry struct {
	providers map[models.ProviderID]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[models.ProviderID]Provider)}
}

// Register adds a provider to the table. Registering the same ID twice
// replaces the earlier entry.
func (r *Registry) Register(p Provider) {
	r.providers[p.ID()] = p
}

// Get returns the provider for the given ID.
func (r *Registry) Get(id models.ProviderID) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return p, nil
}

// IDs returns the registered provider IDs in canonical order.
func (r *Registry) IDs() []models.ProviderID {
	var ids []models.ProviderID
	for _, id := range models.AllProviders() {
		if _, ok := r.providers[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Invoke dispatches to the provider registered under id.
func (r *Registry) Invoke(ctx context.Context, id models.ProviderID, p Params) (*models.ProviderResult, error) {
	prov, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return prov.Invoke(ctx, p)
}
