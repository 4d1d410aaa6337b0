// Package budget converts currencies and distributes a total trip budget
// across spending categories.
package budget

import (
	"fmt"

	"github.com/voyagent/voyagent/pkg/models"
)

// RateSource looks up conversion rates between currencies. Implementations
// may be static tables or live lookups; conversion itself is a pure
// numeric transform.
type RateSource interface {
	// Rate returns how many units of `to` one unit of `from` buys.
	Rate(from, to string) (float64, error)
}

// StaticRates is a fixed in-memory rate table keyed by "FROM/TO".
type StaticRates map[string]float64

// DefaultRates returns the built-in rate table used when no live source is
// configured. Values are indicative only.
func DefaultRates() StaticRates {
	return StaticRates{
		"USD/EUR": 0.92,
		"EUR/USD": 1.087,
		"USD/GBP": 0.79,
		"GBP/USD": 1.266,
		"USD/ARS": 1420.0,
		"ARS/USD": 0.000704,
		"USD/JPY": 149.0,
		"JPY/USD": 0.00671,
		"EUR/ARS": 1543.0,
		"ARS/EUR": 0.000648,
	}
}

// Rate implements RateSource.
func (r StaticRates) Rate(from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	if rate, ok := r[from+"/"+to]; ok {
		return rate, nil
	}
	// Triangulate through USD when a direct pair is missing.
	if from != "USD" && to != "USD" {
		a, okA := r[from+"/USD"]
		b, okB := r["USD/"+to]
		if okA && okB {
			return a * b, nil
		}
	}
	return 0, fmt.Errorf("no conversion rate for %s/%s", from, to)
}

// Convert normalizes an amount into the target currency, rounding to the
// target's minor unit with round-half-to-even.
func Convert(m models.Money, to string, rates RateSource) (models.Money, error) {
	if m.Currency == to {
		return m.RoundMinor(), nil
	}
	rate, err := rates.Rate(m.Currency, to)
	if err != nil {
		return models.Money{}, err
	}
	return models.NewMoney(m.Amount*rate, to), nil
}
