package llm

import (
	"reflect"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newTestParser() *Parser {
	return NewParser(ParserDefaults{Now: fixedNow})
}

func TestParse_FullQuery(t *testing.T) {
	p := newTestParser()
	req, err := p.Parse("Plan a trip from Buenos Aires to Madrid for 2 people, 2026-06-01 to 2026-06-03, budget of $1500, we love museums and tapas, nonstop flights only")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if req.Origin != "Buenos Aires" {
		t.Errorf("origin = %q, want Buenos Aires", req.Origin)
	}
	if req.Destination != "Madrid" {
		t.Errorf("destination = %q, want Madrid", req.Destination)
	}
	if req.Travelers != 2 {
		t.Errorf("travelers = %d, want 2", req.Travelers)
	}
	if req.Budget.Amount != 1500 || req.Budget.Currency != "USD" {
		t.Errorf("budget = %s, want 1500 USD", req.Budget)
	}
	if got := req.Dates.Days(); got != 3 {
		t.Errorf("trip days = %d, want 3", got)
	}
	want := []string{"museum", "food"}
	if !reflect.DeepEqual(req.PreferenceTags, want) {
		t.Errorf("tags = %v, want %v", req.PreferenceTags, want)
	}
	if req.Constraints.MaxFlightStops == nil || *req.Constraints.MaxFlightStops != 0 {
		t.Error("nonstop request should cap flight stops at 0")
	}
}

func TestParse_DestinationOnly(t *testing.T) {
	p := newTestParser()
	req, err := p.Parse("I want to visit Barcelona with a 2000 EUR budget")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if req.Destination != "Barcelona" {
		t.Errorf("destination = %q, want Barcelona", req.Destination)
	}
	if req.Origin != "" {
		t.Errorf("origin = %q, want empty", req.Origin)
	}
	if req.Budget.Amount != 2000 || req.Budget.Currency != "EUR" {
		t.Errorf("budget = %s, want 2000 EUR", req.Budget)
	}
}

func TestParse_TripLengthAndLeadTime(t *testing.T) {
	p := newTestParser()
	req, err := p.Parse("A 5-day trip to Madrid, $1000")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := req.Dates.Days(); got != 5 {
		t.Errorf("trip days = %d, want 5", got)
	}
	wantStart := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	if !req.Dates.Start.Equal(wantStart) {
		t.Errorf("start = %v, want 30-day lead %v", req.Dates.Start, wantStart)
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := newTestParser()
	query := "Couple trip to Madrid, $1500, museums and food"

	first, err := p.Parse(query)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	second, err := p.Parse(query)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same query parsed differently across calls")
	}
	if first.Travelers != 2 {
		t.Errorf("travelers = %d, want 2 for a couple", first.Travelers)
	}
}

func TestParse_NoDestination(t *testing.T) {
	p := newTestParser()
	if _, err := p.Parse("plan something nice"); err == nil {
		t.Error("expected an error when no destination can be extracted")
	}
}

func TestClassifier_NilClientUsesParser(t *testing.T) {
	c := NewClassifier(nil, newTestParser())
	req, err := c.Classify(t.Context(), "Weekend trip to Madrid, $800")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if req.Destination != "Madrid" {
		t.Errorf("destination = %q, want Madrid", req.Destination)
	}
	if req.Budget.Amount != 800 {
		t.Errorf("budget = %s, want 800", req.Budget)
	}
}
