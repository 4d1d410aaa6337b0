package budget

import (
	"errors"
	"math"
	"testing"

	"github.com/voyagent/voyagent/pkg/models"
)

func TestAllocate_EstimatesUnderCap(t *testing.T) {
	a := NewAllocator(nil, 0.10)

	plan, err := a.Allocate(models.USD(1500), map[models.Category]models.Money{
		models.CategoryFlights:    models.USD(600),
		models.CategoryActivities: models.USD(400),
		models.CategoryLodging:    models.USD(300),
	})
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}

	// Estimates fit under 1350 (90% of 1500), so they become the ceilings.
	if got := plan.Ceiling(models.CategoryFlights).Amount; got != 600 {
		t.Errorf("flights ceiling = %v, want 600", got)
	}
	if got := plan.Ceiling(models.CategoryActivities).Amount; got != 400 {
		t.Errorf("activities ceiling = %v, want 400", got)
	}
	if got := plan.Buffer.Amount; got != 200 {
		t.Errorf("buffer = %v, want 200", got)
	}
}

func TestAllocate_ScalesDownProportionally(t *testing.T) {
	a := NewAllocator(nil, 0.10)

	plan, err := a.Allocate(models.USD(1000), map[models.Category]models.Money{
		models.CategoryFlights:    models.USD(1200),
		models.CategoryActivities: models.USD(400),
		models.CategoryLodging:    models.USD(200),
	})
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}

	// Estimates total 1800 against a 900 cap: every category halves.
	if got := plan.Ceiling(models.CategoryFlights).Amount; got != 600 {
		t.Errorf("flights ceiling = %v, want 600", got)
	}
	if got := plan.Ceiling(models.CategoryActivities).Amount; got != 200 {
		t.Errorf("activities ceiling = %v, want 200", got)
	}
	if got := plan.Ceiling(models.CategoryLodging).Amount; got != 100 {
		t.Errorf("lodging ceiling = %v, want 100", got)
	}

	// Relative priority is preserved: flights stays 3x activities.
	fl := plan.Ceiling(models.CategoryFlights).Amount
	ac := plan.Ceiling(models.CategoryActivities).Amount
	if math.Abs(fl/ac-3.0) > 0.01 {
		t.Errorf("flights/activities ratio = %v, want 3", fl/ac)
	}
}

func TestAllocate_SumInvariant(t *testing.T) {
	a := NewAllocator(nil, 0.10)

	// Awkward totals exercise rounding; the invariant must hold for all.
	totals := []float64{1500, 999.99, 1000.01, 73.37, 1, 123456.78}
	for _, total := range totals {
		plan, err := a.Allocate(models.USD(total), map[models.Category]models.Money{
			models.CategoryFlights:    models.USD(total * 0.7),
			models.CategoryActivities: models.USD(total * 0.5),
			models.CategoryLodging:    models.USD(total * 0.3),
		})
		if err != nil {
			t.Fatalf("Allocate(%v) error: %v", total, err)
		}

		sum := plan.SumCeilings().Amount + plan.Buffer.Amount
		if sum > total+0.01 {
			t.Errorf("total %v: ceilings+buffer = %v exceeds total", total, sum)
		}
		if plan.Buffer.Amount < 0 {
			t.Errorf("total %v: negative buffer %v", total, plan.Buffer.Amount)
		}
	}
}

func TestAllocate_NoEstimates(t *testing.T) {
	a := NewAllocator(nil, 0.10)

	plan, err := a.Allocate(models.USD(1000), nil)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}

	// Priors fill the 900 cap: 40/35/25.
	if got := plan.Ceiling(models.CategoryFlights).Amount; got != 360 {
		t.Errorf("flights ceiling = %v, want 360", got)
	}
	if got := plan.Ceiling(models.CategoryActivities).Amount; got != 315 {
		t.Errorf("activities ceiling = %v, want 315", got)
	}
	if got := plan.Ceiling(models.CategoryLodging).Amount; got != 225 {
		t.Errorf("lodging ceiling = %v, want 225", got)
	}
	if got := plan.Buffer.Amount; got != 100 {
		t.Errorf("buffer = %v, want 100", got)
	}
}

func TestAllocate_Infeasible(t *testing.T) {
	a := NewAllocator(nil, 0.10)

	for _, total := range []float64{0, -100} {
		_, err := a.Allocate(models.USD(total), map[models.Category]models.Money{
			models.CategoryActivities: models.USD(100),
		})
		if !errors.Is(err, ErrInfeasibleBudget) {
			t.Errorf("Allocate(total=%v) error = %v, want ErrInfeasibleBudget", total, err)
		}

		// The partial state travels with the error.
		var infeasible *InfeasibleError
		if !errors.As(err, &infeasible) {
			t.Fatalf("error %v is not an *InfeasibleError", err)
		}
		if infeasible.EstimatedCosts[models.CategoryActivities].Amount != 100 {
			t.Error("InfeasibleError should carry the estimates that led to it")
		}
	}
}

func TestAllocate_ConvertsEstimates(t *testing.T) {
	a := NewAllocator(StaticRates{"EUR/USD": 2.0}, 0.10)

	plan, err := a.Allocate(models.USD(1000), map[models.Category]models.Money{
		models.CategoryFlights: models.NewMoney(100, "EUR"),
	})
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}

	if got := plan.Ceiling(models.CategoryFlights).Amount; got != 200 {
		t.Errorf("flights ceiling = %v USD, want 200 (100 EUR at 2.0)", got)
	}
}

func TestConvert(t *testing.T) {
	rates := DefaultRates()

	tests := []struct {
		name string
		in   models.Money
		to   string
		want float64
	}{
		{"same currency is identity", models.USD(100), "USD", 100},
		{"usd to ars", models.USD(100), "ARS", 142000},
		{"half-even rounding applies", models.NewMoney(1.005, "USD"), "USD", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.in, tt.to, rates)
			if err != nil {
				t.Fatalf("Convert() error: %v", err)
			}
			if math.Abs(got.Amount-tt.want) > 0.01 {
				t.Errorf("Convert(%v, %s) = %v, want %v", tt.in, tt.to, got.Amount, tt.want)
			}
		})
	}
}

func TestStaticRates_Triangulation(t *testing.T) {
	rates := DefaultRates()

	// GBP/EUR has no direct entry; it triangulates through USD.
	rate, err := rates.Rate("GBP", "EUR")
	if err != nil {
		t.Fatalf("Rate(GBP, EUR) error: %v", err)
	}
	want := 1.266 * 0.92
	if math.Abs(rate-want) > 0.001 {
		t.Errorf("Rate(GBP, EUR) = %v, want %v", rate, want)
	}

	if _, err := rates.Rate("GBP", "XXX"); err == nil {
		t.Error("Rate for unknown currency should fail")
	}
}
