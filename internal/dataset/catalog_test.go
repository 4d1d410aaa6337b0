package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const flightsCSV = `carrier,flight_number,origin,destination,date,price,currency,departure_time,arrival_time,duration_hours,stops
Iberia,IB6842,Buenos Aires,Madrid,2026-06-01,850.00,USD,08:30,23:45,12.5,0
Air Europa,UX042,Buenos Aires,Madrid,2026-06-01,640.00,USD,12:00,05:10,13.2,1
LATAM,LA8010,Buenos Aires,Barcelona,2026-06-02,720.00,USD,09:15,02:40,14.0,1
`

const activitiesCSV = `name,city,lat,lon,category,cost,currency,duration_hours,rating,weather_tags
Prado Museum,Madrid,40.4138,-3.6921,culture,15.00,USD,3,4.8,indoor
Retiro Park,Madrid,40.4153,-3.6845,outdoors,0,USD,2,4.6,outdoor|sunny
Flamenco Show,Madrid,40.4131,-3.7023,culture,45.00,USD,2,4.5,indoor
Tapas Tour,Madrid,40.4200,-3.7058,food,60.00,USD,3,4.7,any
Sagrada Familia,Barcelona,41.4036,2.1744,culture,26.00,USD,2,4.9,any
`

func writeCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	fp := filepath.Join(dir, "flights.csv")
	ap := filepath.Join(dir, "activities.csv")
	if err := os.WriteFile(fp, []byte(flightsCSV), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ap, []byte(activitiesCSV), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(fp, ap)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return c
}

func TestCatalog_Flights(t *testing.T) {
	c := writeCatalog(t)

	maxPrice := 700.0
	maxStops := 0

	tests := []struct {
		name  string
		query FlightQuery
		want  int
	}{
		{"all flights", FlightQuery{}, 3},
		{"destination filter", FlightQuery{Destination: "Madrid"}, 2},
		{"case-insensitive match", FlightQuery{Destination: "madRID"}, 2},
		{"max price filter", FlightQuery{Destination: "Madrid", MaxPrice: &maxPrice}, 1},
		{"max stops filter", FlightQuery{Destination: "Madrid", MaxStops: &maxStops}, 1},
		{"origin filter", FlightQuery{Origin: "Buenos Aires"}, 3},
		{"no match", FlightQuery{Destination: "Tokyo"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Flights(tt.query)
			if len(got) != tt.want {
				t.Errorf("Flights(%+v) returned %d records, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestCatalog_FlightFields(t *testing.T) {
	c := writeCatalog(t)

	flights := c.Flights(FlightQuery{Destination: "Barcelona"})
	if len(flights) != 1 {
		t.Fatalf("expected 1 Barcelona flight, got %d", len(flights))
	}
	f := flights[0]

	if f.Carrier != "LATAM" || f.FlightNumber != "LA8010" {
		t.Errorf("carrier/number = %s/%s, want LATAM/LA8010", f.Carrier, f.FlightNumber)
	}
	if f.Price.Amount != 720.00 || f.Price.Currency != "USD" {
		t.Errorf("price = %v, want 720.00 USD", f.Price)
	}
	if f.Stops != 1 {
		t.Errorf("stops = %d, want 1", f.Stops)
	}
	if !f.Date.Equal(time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v, want 2026-06-02", f.Date)
	}
}

func TestCatalog_Activities(t *testing.T) {
	c := writeCatalog(t)

	maxCost := 20.0

	tests := []struct {
		name  string
		query ActivityQuery
		want  int
	}{
		{"all activities", ActivityQuery{}, 5},
		{"city filter", ActivityQuery{City: "Madrid"}, 4},
		{"category filter", ActivityQuery{City: "Madrid", Categories: []string{"culture"}}, 2},
		{"multiple categories", ActivityQuery{City: "Madrid", Categories: []string{"culture", "food"}}, 3},
		{"max cost filter", ActivityQuery{City: "Madrid", MaxCost: &maxCost}, 2},
		{"no match", ActivityQuery{City: "Rome"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Activities(tt.query)
			if len(got) != tt.want {
				t.Errorf("Activities(%+v) returned %d records, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestCatalog_ActivityFields(t *testing.T) {
	c := writeCatalog(t)

	acts := c.Activities(ActivityQuery{City: "Madrid", Categories: []string{"outdoors"}})
	if len(acts) != 1 {
		t.Fatalf("expected 1 outdoors activity, got %d", len(acts))
	}
	a := acts[0]

	if a.Name != "Retiro Park" {
		t.Errorf("name = %q, want Retiro Park", a.Name)
	}
	if !a.Cost.IsZero() {
		t.Errorf("cost = %v, want free", a.Cost)
	}
	if a.Duration != 2*time.Hour {
		t.Errorf("duration = %v, want 2h", a.Duration)
	}
	if len(a.WeatherTags) != 2 || a.WeatherTags[0] != "outdoor" || a.WeatherTags[1] != "sunny" {
		t.Errorf("weather tags = %v, want [outdoor sunny]", a.WeatherTags)
	}
	if a.Rating != 4.6 {
		t.Errorf("rating = %v, want 4.6", a.Rating)
	}
}

func TestCatalog_Reload(t *testing.T) {
	dir := t.TempDir()
	ap := filepath.Join(dir, "activities.csv")
	if err := os.WriteFile(ap, []byte(activitiesCSV), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Open("", ap)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got := len(c.Activities(ActivityQuery{})); got != 5 {
		t.Fatalf("initial load: %d activities, want 5", got)
	}

	// Append one row and reload.
	extra := "Picasso Museum,Barcelona,41.3851,2.1812,culture,12.00,USD,2,4.4,indoor\n"
	f, err := os.OpenFile(ap, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(extra); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if got := len(c.Activities(ActivityQuery{})); got != 6 {
		t.Errorf("after reload: %d activities, want 6", got)
	}
}

func TestCatalog_BadRows(t *testing.T) {
	dir := t.TempDir()
	ap := filepath.Join(dir, "activities.csv")
	bad := "name,city,lat,lon,category,cost,currency,duration_hours,rating,weather_tags\nX,Madrid,a,b,culture,nope,USD,2,4.4,indoor\n"
	if err := os.WriteFile(ap, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open("", ap); err == nil {
		t.Error("Open() with malformed rows should fail")
	}
}
