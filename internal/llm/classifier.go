package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/voyagent/voyagent/pkg/models"
)

const classifierSystemPrompt = `You extract structured trip parameters from a traveler's request.
Always answer by calling the plan_trip tool exactly once. Dates are ISO 8601 (YYYY-MM-DD).
Leave fields you cannot determine empty rather than guessing.`

// tripParams is the plan_trip tool's input payload.
type tripParams struct {
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Travelers      int      `json:"travelers"`
	BudgetTotal    float64  `json:"budget_total"`
	Currency       string   `json:"currency"`
	PreferenceTags []string `json:"preference_tags"`
	MaxFlightStops *int     `json:"max_flight_stops"`
	MaxFlightPrice *float64 `json:"max_flight_price"`
}

// Classifier maps free-form queries to trip requests. With a nil client it
// always uses the deterministic keyword parser, so the planner works
// without credentials.
type Classifier struct {
	client *Client
	parser *Parser
}

// NewClassifier creates a classifier. client may be nil.
func NewClassifier(client *Client, parser *Parser) *Classifier {
	if parser == nil {
		parser = NewParser(ParserDefaults{})
	}
	return &Classifier{client: client, parser: parser}
}

// Classify turns a query into a trip request. Model failures fall back to
// the keyword parser rather than failing the plan.
func (c *Classifier) Classify(ctx context.Context, query string) (*models.TripRequest, error) {
	if c.client == nil {
		return c.parser.Parse(query)
	}

	req, err := c.classifyWithModel(ctx, query)
	if err != nil {
		log.Printf("[llm] classification failed (%v), using keyword parser", err)
		return c.parser.Parse(query)
	}
	return req, nil
}

func (c *Classifier) classifyWithModel(ctx context.Context, query string) (*models.TripRequest, error) {
	resp, err := c.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.client.Model(),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: classifierSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
		},
		Tools: planTripTool(),
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	for _, block := range resp.Content {
		variant, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok || variant.Name != "plan_trip" {
			continue
		}
		var params tripParams
		if err := json.Unmarshal(variant.Input, &params); err != nil {
			return nil, fmt.Errorf("invalid plan_trip payload: %w", err)
		}
		return c.fromParams(query, params)
	}
	return nil, fmt.Errorf("model response contained no plan_trip call")
}

func (c *Classifier) fromParams(query string, p tripParams) (*models.TripRequest, error) {
	if p.Destination == "" {
		return nil, fmt.Errorf("no destination extracted")
	}

	req := &models.TripRequest{
		Origin:         p.Origin,
		Destination:    p.Destination,
		Travelers:      p.Travelers,
		PreferenceTags: p.PreferenceTags,
		Query:          query,
		Constraints: models.Constraints{
			MaxFlightStops: p.MaxFlightStops,
			MaxFlightPrice: p.MaxFlightPrice,
		},
	}
	if req.Travelers < 1 {
		req.Travelers = 1
	}

	currency := p.Currency
	if currency == "" {
		currency = c.parser.defaults.Currency
	}
	req.Budget = models.NewMoney(p.BudgetTotal, currency)

	start, err := time.Parse("2006-01-02", p.StartDate)
	if err != nil {
		start = c.parser.defaultStart()
	}
	end, endErr := time.Parse("2006-01-02", p.EndDate)
	if endErr != nil || end.Before(start) {
		end = start.AddDate(0, 0, c.parser.defaults.TripDays-1)
	}
	req.Dates = models.DateRange{Start: start, End: end}

	return req, nil
}

func planTripTool() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        "plan_trip",
				Description: anthropic.String("Record the structured parameters of the traveler's trip request."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"origin": map[string]interface{}{
							"type":        "string",
							"description": "City the traveler departs from",
						},
						"destination": map[string]interface{}{
							"type":        "string",
							"description": "City the traveler wants to visit",
						},
						"start_date": map[string]interface{}{
							"type":        "string",
							"description": "Trip start date, YYYY-MM-DD",
						},
						"end_date": map[string]interface{}{
							"type":        "string",
							"description": "Trip end date, YYYY-MM-DD",
						},
						"travelers": map[string]interface{}{
							"type":        "integer",
							"description": "Number of travelers",
						},
						"budget_total": map[string]interface{}{
							"type":        "number",
							"description": "Total trip budget",
						},
						"currency": map[string]interface{}{
							"type":        "string",
							"description": "ISO 4217 currency code of the budget",
						},
						"preference_tags": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "Interests mentioned by the traveler (e.g., museums, food, outdoors)",
						},
						"max_flight_stops": map[string]interface{}{
							"type":        "integer",
							"description": "Maximum acceptable flight stops, if stated",
						},
						"max_flight_price": map[string]interface{}{
							"type":        "number",
							"description": "Maximum acceptable flight price, if stated",
						},
					},
					Required: []string{"destination"},
				},
			},
		},
	}
}
