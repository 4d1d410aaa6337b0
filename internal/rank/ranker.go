// Package rank scores and orders flight and activity options against the
// traveler's preference weights and budget ceiling.
package rank

import (
	"sort"
	"strings"

	"github.com/voyagent/voyagent/pkg/models"
)

// costFitTarget is the ceiling fraction under which an option gets a
// perfect cost-fit sub-score. Between the target and the ceiling the
// sub-score decays linearly to zero.
const costFitTarget = 0.25

// goodValueUSD marks cheap options for the "good-value" rationale tag.
const goodValueUSD = 20.0

// Ranker scores options. The zero weights fall back to the defaults.
type Ranker struct {
	weights models.PreferenceWeights
}

// New creates a Ranker with the given preference weights. Invalid weights
// fall back to the defaults.
func New(weights models.PreferenceWeights) *Ranker {
	if !weights.Valid() {
		weights = models.DefaultPreferenceWeights()
	}
	return &Ranker{weights: weights}
}

// RankActivities orders activity options best-first. The returned slice is
// a finite, restartable sequence: equal scores break by lower cost, then by
// original provider order, and options strictly over the ceiling are
// retained at the tail rather than dropped so callers can see what was
// excluded and why.
func (r *Ranker) RankActivities(options []models.ActivityOption, preferenceTags []string, ceiling models.Money) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(options))
	for i := range options {
		recs = append(recs, r.scoreActivity(&options[i], preferenceTags, ceiling))
	}
	sortRecommendations(recs)
	return recs
}

// RankFlights orders flight options best-first. Flights carry no rating, so
// the rating sub-score rewards fewer stops instead.
func (r *Ranker) RankFlights(options []models.FlightOption, ceiling models.Money) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(options))
	for i := range options {
		recs = append(recs, r.scoreFlight(&options[i], ceiling))
	}
	sortRecommendations(recs)
	return recs
}

func (r *Ranker) scoreActivity(opt *models.ActivityOption, preferenceTags []string, ceiling models.Money) models.Recommendation {
	rating := normalizeRating(opt.Rating)
	costFit := costFitScore(opt.Cost.Amount, ceiling.Amount)
	overlap := tagOverlap(opt, preferenceTags)

	rec := models.Recommendation{
		SubjectID:  opt.ID,
		Subject:    opt.Name,
		Score:      r.weights.Rating*rating + r.weights.Cost*costFit + r.weights.Preference*overlap,
		Cost:       opt.Cost,
		OverBudget: ceiling.IsPositive() && opt.Cost.Amount > ceiling.Amount,
	}

	if rating >= 0.9 {
		rec.RationaleTags = append(rec.RationaleTags, "high-rating")
	}
	if opt.Cost.IsZero() {
		rec.RationaleTags = append(rec.RationaleTags, "free")
	} else if opt.Cost.Amount < goodValueUSD {
		rec.RationaleTags = append(rec.RationaleTags, "good-value")
	}
	if overlap > 0 {
		rec.RationaleTags = append(rec.RationaleTags, "preference-match")
	}
	if rec.OverBudget {
		rec.RationaleTags = append(rec.RationaleTags, "over-budget")
	}
	return rec
}

func (r *Ranker) scoreFlight(opt *models.FlightOption, ceiling models.Money) models.Recommendation {
	quality := 1.0 / float64(1+opt.Stops)
	costFit := costFitScore(opt.Price.Amount, ceiling.Amount)

	rec := models.Recommendation{
		SubjectID:  opt.ID,
		Subject:    opt.String(),
		Score:      r.weights.Rating*quality + r.weights.Cost*costFit,
		Cost:       opt.Price,
		OverBudget: ceiling.IsPositive() && opt.Price.Amount > ceiling.Amount,
	}

	if opt.Stops == 0 {
		rec.RationaleTags = append(rec.RationaleTags, "nonstop")
	}
	if rec.OverBudget {
		rec.RationaleTags = append(rec.RationaleTags, "over-budget")
	}
	return rec
}

// sortRecommendations orders best-first with deterministic tie-breaks:
// in-budget before over-budget, higher score, lower cost, original order.
// The sort is stable, so equal entries keep their provider order.
func sortRecommendations(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].OverBudget != recs[j].OverBudget {
			return !recs[i].OverBudget
		}
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Cost.Amount < recs[j].Cost.Amount
	})
}

// normalizeRating scales a raw rating into [0, 1].
func normalizeRating(raw float64) float64 {
	norm := (raw - models.RatingMin) / (models.RatingMax - models.RatingMin)
	return clamp01(norm)
}

// costFitScore is 1 below the target fraction of the ceiling, decays
// linearly to 0 at the ceiling, and is 0 beyond it. Free options always
// fit; with no ceiling every option fits.
func costFitScore(cost, ceiling float64) float64 {
	if cost <= 0 || ceiling <= 0 {
		return 1
	}
	target := ceiling * costFitTarget
	if cost <= target {
		return 1
	}
	if cost >= ceiling {
		return 0
	}
	return clamp01((ceiling - cost) / (ceiling - target))
}

// tagOverlap is the fraction of requested preference tags the option
// matches by category, name, or weather tag.
func tagOverlap(opt *models.ActivityOption, preferenceTags []string) float64 {
	if len(preferenceTags) == 0 {
		return 0
	}
	matched := 0
	for _, tag := range preferenceTags {
		if matchesTag(opt, tag) {
			matched++
		}
	}
	return float64(matched) / float64(len(preferenceTags))
}

func matchesTag(opt *models.ActivityOption, tag string) bool {
	t := strings.ToLower(tag)
	if strings.Contains(strings.ToLower(opt.Category), t) {
		return true
	}
	if strings.Contains(strings.ToLower(opt.Name), t) {
		return true
	}
	for _, wt := range opt.WeatherTags {
		if strings.EqualFold(wt, t) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
