// Package dataset provides read-only access to the tabular flight and
// activity listings consulted by the capability providers.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/voyagent/voyagent/pkg/models"
)

// FlightRecord is one row of the flight listings dataset.
type FlightRecord struct {
	Carrier       string
	FlightNumber  string
	Origin        string
	Destination   string
	Date          time.Time
	Price         models.Money
	DepartureHHMM string
	ArrivalHHMM   string
	DurationHours float64
	Stops         int
}

// ActivityRecord is one row of the activity listings dataset.
type ActivityRecord struct {
	Name        string
	City        string
	Lat         float64
	Lon         float64
	Category    string
	Cost        models.Money
	Duration    time.Duration
	Rating      float64
	WeatherTags []string
}

// Catalog holds both datasets in memory and answers filtered lookups.
// Reload is safe against concurrent readers.
type Catalog struct {
	flightsPath    string
	activitiesPath string

	mu         sync.RWMutex
	flights    []FlightRecord
	activities []ActivityRecord
	loadedAt   time.Time
}

// Open loads both CSV files and returns a ready catalog.
// Either path may be empty, in which case that dataset is simply absent
// and the corresponding provider reports invalid responses.
func Open(flightsPath, activitiesPath string) (*Catalog, error) {
	c := &Catalog{
		flightsPath:    flightsPath,
		activitiesPath: activitiesPath,
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads both datasets from disk. On parse failure the previous
// in-memory data is kept.
func (c *Catalog) Reload() error {
	var flights []FlightRecord
	var activities []ActivityRecord

	if c.flightsPath != "" {
		f, err := os.Open(c.flightsPath)
		if err != nil {
			return fmt.Errorf("open flights dataset: %w", err)
		}
		flights, err = parseFlights(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse flights dataset: %w", err)
		}
	}

	if c.activitiesPath != "" {
		f, err := os.Open(c.activitiesPath)
		if err != nil {
			return fmt.Errorf("open activities dataset: %w", err)
		}
		activities, err = parseActivities(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse activities dataset: %w", err)
		}
	}

	c.mu.Lock()
	c.flights = flights
	c.activities = activities
	c.loadedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// LoadedAt returns when the catalog was last (re)loaded.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// FlightQuery filters flight lookups.
type FlightQuery struct {
	// Origin and Destination are matched case-insensitively as substrings.
	Origin      string
	Destination string
	// MaxPrice caps the per-traveler price; nil means no cap.
	MaxPrice *float64
	// MaxStops caps the stop count; nil means no cap.
	MaxStops *int
}

// Flights returns every flight record matching the query, in dataset order.
func (c *Catalog) Flights(q FlightQuery) []FlightRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []FlightRecord
	for _, f := range c.flights {
		if q.Origin != "" && !containsFold(f.Origin, q.Origin) {
			continue
		}
		if q.Destination != "" && !containsFold(f.Destination, q.Destination) {
			continue
		}
		if q.MaxPrice != nil && f.Price.Amount > *q.MaxPrice {
			continue
		}
		if q.MaxStops != nil && f.Stops > *q.MaxStops {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ActivityQuery filters activity lookups.
type ActivityQuery struct {
	// City is matched case-insensitively as a substring.
	City string
	// Categories restricts results to any of the given categories.
	Categories []string
	// MaxCost caps the per-person cost; nil means no cap.
	MaxCost *float64
}

// Activities returns every activity record matching the query, in dataset order.
func (c *Catalog) Activities(q ActivityQuery) []ActivityRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ActivityRecord
	for _, a := range c.activities {
		if q.City != "" && !containsFold(a.City, q.City) {
			continue
		}
		if len(q.Categories) > 0 && !matchesCategory(a.Category, q.Categories) {
			continue
		}
		if q.MaxCost != nil && a.Cost.Amount > *q.MaxCost {
			continue
		}
		out = append(out, a)
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchesCategory(category string, wanted []string) bool {
	for _, w := range wanted {
		if containsFold(category, w) {
			return true
		}
	}
	return false
}

// flight CSV schema: carrier,flight_number,origin,destination,date,price,currency,
// departure_time,arrival_time,duration_hours,stops
func parseFlights(r io.Reader) ([]FlightRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	col := indexColumns(header)

	var records []FlightRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		price, err := strconv.ParseFloat(field(row, col, "price"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad price: %w", line, err)
		}
		stops, err := strconv.Atoi(field(row, col, "stops"))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad stops: %w", line, err)
		}
		duration, err := strconv.ParseFloat(field(row, col, "duration_hours"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad duration_hours: %w", line, err)
		}
		date, err := time.Parse("2006-01-02", field(row, col, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date: %w", line, err)
		}

		currency := field(row, col, "currency")
		if currency == "" {
			currency = "USD"
		}

		records = append(records, FlightRecord{
			Carrier:       field(row, col, "carrier"),
			FlightNumber:  field(row, col, "flight_number"),
			Origin:        field(row, col, "origin"),
			Destination:   field(row, col, "destination"),
			Date:          date,
			Price:         models.NewMoney(price, currency),
			DepartureHHMM: field(row, col, "departure_time"),
			ArrivalHHMM:   field(row, col, "arrival_time"),
			DurationHours: duration,
			Stops:         stops,
		})
	}
	return records, nil
}

// activity CSV schema: name,city,lat,lon,category,cost,currency,duration_hours,
// rating,weather_tags (tags separated by "|")
func parseActivities(r io.Reader) ([]ActivityRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	col := indexColumns(header)

	var records []ActivityRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		cost, err := strconv.ParseFloat(field(row, col, "cost"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad cost: %w", line, err)
		}
		lat, err := strconv.ParseFloat(field(row, col, "lat"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad lat: %w", line, err)
		}
		lon, err := strconv.ParseFloat(field(row, col, "lon"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad lon: %w", line, err)
		}
		durationHours, err := strconv.ParseFloat(field(row, col, "duration_hours"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad duration_hours: %w", line, err)
		}
		rating, err := strconv.ParseFloat(field(row, col, "rating"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad rating: %w", line, err)
		}

		currency := field(row, col, "currency")
		if currency == "" {
			currency = "USD"
		}

		var tags []string
		if raw := field(row, col, "weather_tags"); raw != "" {
			tags = strings.Split(raw, "|")
		}

		records = append(records, ActivityRecord{
			Name:        field(row, col, "name"),
			City:        field(row, col, "city"),
			Lat:         lat,
			Lon:         lon,
			Category:    field(row, col, "category"),
			Cost:        models.NewMoney(cost, currency),
			Duration:    time.Duration(durationHours * float64(time.Hour)),
			Rating:      rating,
			WeatherTags: tags,
		})
	}
	return records, nil
}

func indexColumns(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
