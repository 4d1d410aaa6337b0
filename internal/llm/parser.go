package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/voyagent/voyagent/pkg/models"
)

// ParserDefaults fills the gaps a query leaves open.
type ParserDefaults struct {
	// Currency is the budget currency when none is stated.
	Currency string
	// TripDays is the trip length when no dates or length are stated.
	TripDays int
	// LeadDays is how far ahead the trip starts when no start date is stated.
	LeadDays int
	// Now supplies the reference time for relative dates. Defaults to
	// time.Now; tests pin it for reproducible output.
	Now func() time.Time
}

// Parser extracts trip parameters from a query with fixed patterns. The
// same query and reference time always produce the same request.
type Parser struct {
	defaults ParserDefaults
}

// NewParser creates a parser. Zero-value defaults are filled in.
func NewParser(d ParserDefaults) *Parser {
	if d.Currency == "" {
		d.Currency = "USD"
	}
	if d.TripDays < 1 {
		d.TripDays = 3
	}
	if d.LeadDays < 1 {
		d.LeadDays = 30
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Parser{defaults: d}
}

var (
	routeRe     = regexp.MustCompile(`(?i)\bfrom\s+([a-zñáéíóú][\w\s]*?)\s+to\s+([a-zñáéíóú][\w\s]*?)(?:[,.;]|\s+(?:for|with|in|on|between|under)\b|$)`)
	destRe      = regexp.MustCompile(`\b(?:[Tt]o|[Ii]n|[Vv]isit(?:ing)?)\s+([A-ZÁÉÍÓÚÑ]\w*(?:\s+[A-ZÁÉÍÓÚÑ]\w*)*)`)
	budgetCueRe = regexp.MustCompile(`(?i)(?:budget\s+(?:of\s+)?|under\s+|for\s+)?(?:\$|€)\s*(\d{2,7}(?:\.\d{1,2})?)|(\d{2,7}(?:\.\d{1,2})?)\s*(usd|eur|gbp|ars|jpy|dollars?|euros?|pesos?)`)
	datesRe     = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:to|through|-|until)\s*(\d{4}-\d{2}-\d{2})`)
	lengthRe    = regexp.MustCompile(`(?i)\b(\d{1,2})[-\s]day(?:s)?\b`)
	peopleRe    = regexp.MustCompile(`(?i)\bfor\s+(\d{1,2})\s+(?:people|persons|travelers|travellers|adults)\b`)
	coupleRe    = regexp.MustCompile(`(?i)\b(couple|honeymoon)\b`)
)

// tagVocabulary maps query keywords to preference tags.
var tagVocabulary = map[string]string{
	"museum":     "museum",
	"museums":    "museum",
	"art":        "art",
	"culture":    "culture",
	"cultural":   "culture",
	"history":    "history",
	"historic":   "history",
	"food":       "food",
	"foodie":     "food",
	"restaurant": "food",
	"tapas":      "food",
	"outdoor":    "outdoor",
	"outdoors":   "outdoor",
	"hiking":     "outdoor",
	"nature":     "outdoor",
	"park":       "outdoor",
	"parks":      "outdoor",
	"beach":      "beach",
	"nightlife":  "nightlife",
	"family":     "family",
	"kids":       "family",
	"relax":      "relax",
	"relaxing":   "relax",
}

// Parse extracts a trip request from the query.
func (p *Parser) Parse(query string) (*models.TripRequest, error) {
	req := &models.TripRequest{
		Travelers: 1,
		Query:     query,
	}

	if m := routeRe.FindStringSubmatch(query); m != nil {
		req.Origin = strings.TrimSpace(m[1])
		req.Destination = strings.TrimSpace(m[2])
	} else if m := destRe.FindStringSubmatch(query); m != nil {
		req.Destination = strings.TrimSpace(m[1])
	}
	if req.Destination == "" {
		return nil, fmt.Errorf("could not determine a destination from %q", query)
	}

	req.Budget = p.parseBudget(query)
	req.Dates = p.parseDates(query)

	if m := peopleRe.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			req.Travelers = n
		}
	} else if coupleRe.MatchString(query) {
		req.Travelers = 2
	}

	req.PreferenceTags = extractTags(query)

	lower := strings.ToLower(query)
	if strings.Contains(lower, "nonstop") || strings.Contains(lower, "non-stop") || strings.Contains(lower, "direct flight") {
		zero := 0
		req.Constraints.MaxFlightStops = &zero
	}

	return req, nil
}

func (p *Parser) parseBudget(query string) models.Money {
	currency := p.defaults.Currency
	amount := 0.0

	if m := budgetCueRe.FindStringSubmatch(query); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			amount = v
		}
		if m[3] != "" {
			currency = canonicalCurrency(m[3])
		} else if strings.Contains(query, "€") {
			currency = "EUR"
		}
	}
	return models.NewMoney(amount, currency)
}

func (p *Parser) parseDates(query string) models.DateRange {
	if m := datesRe.FindStringSubmatch(query); m != nil {
		start, err1 := time.Parse("2006-01-02", m[1])
		end, err2 := time.Parse("2006-01-02", m[2])
		if err1 == nil && err2 == nil && !end.Before(start) {
			return models.DateRange{Start: start, End: end}
		}
	}

	days := p.defaults.TripDays
	if m := lengthRe.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			days = n
		}
	}
	start := p.defaultStart()
	return models.DateRange{Start: start, End: start.AddDate(0, 0, days-1)}
}

// defaultStart is the lead-time start date, truncated to a UTC day.
func (p *Parser) defaultStart() time.Time {
	now := p.defaults.Now().UTC()
	start := now.AddDate(0, 0, p.defaults.LeadDays)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}

func extractTags(query string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, word := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if tag, ok := tagVocabulary[word]; ok && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

func canonicalCurrency(raw string) string {
	switch strings.ToLower(raw) {
	case "dollar", "dollars", "usd":
		return "USD"
	case "euro", "euros", "eur":
		return "EUR"
	case "peso", "pesos", "ars":
		return "ARS"
	case "gbp":
		return "GBP"
	case "jpy":
		return "JPY"
	default:
		return strings.ToUpper(raw)
	}
}
