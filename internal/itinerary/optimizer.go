// Package itinerary assigns ranked activities to day slots under weather,
// geography, capacity, and budget constraints.
package itinerary

import (
	"errors"
	"math"
	"time"

	"github.com/voyagent/voyagent/pkg/models"
)

// ErrNoFeasibleItinerary indicates that not a single activity could be
// placed on any day. The partial itinerary is still returned alongside it
// so callers can show what was considered.
var ErrNoFeasibleItinerary = errors.New("no feasible itinerary")

// DefaultDailyCapacity bounds scheduled activity time per day.
const DefaultDailyCapacity = 10 * time.Hour

// DefaultClusterKM is the distance under which two activities count as
// being in the same area.
const DefaultClusterKM = 3.0

// Optimizer builds itineraries. It is a pure scheduler: no randomness and
// no wall-clock reads, so identical inputs produce identical output.
type Optimizer struct {
	// DailyCapacity is the maximum summed activity duration per day.
	DailyCapacity time.Duration
	// ClusterKM is the same-area distance threshold in kilometers.
	ClusterKM float64
}

// New creates an Optimizer. Non-positive arguments fall back to defaults.
func New(dailyCapacity time.Duration, clusterKM float64) *Optimizer {
	if dailyCapacity <= 0 {
		dailyCapacity = DefaultDailyCapacity
	}
	if clusterKM <= 0 {
		clusterKM = DefaultClusterKM
	}
	return &Optimizer{DailyCapacity: dailyCapacity, ClusterKM: clusterKM}
}

// Build walks the ranked activities once, best first, and places each on
// the first day it fits. Fit on a day requires weather suitability, free
// capacity, and room in that day's share of the activity budget; the
// budget is split evenly across days with unused allocation rolling
// forward. Days that already hold a nearby activity are preferred so each
// day stays geographically clustered. Candidates that fit nowhere are
// reported as unscheduled.
func (o *Optimizer) Build(
	ranked []models.Recommendation,
	activities []models.ActivityOption,
	weather *models.WeatherForecast,
	dates models.DateRange,
	activityBudget models.Money,
) (*models.Itinerary, error) {
	byID := make(map[string]*models.ActivityOption, len(activities))
	for i := range activities {
		byID[activities[i].ID] = &activities[i]
	}

	days := dates.Dates()
	it := &models.Itinerary{Days: make([]models.ItineraryDay, len(days))}
	for i, date := range days {
		it.Days[i] = models.ItineraryDay{
			Date:        date,
			Condition:   weather.ConditionOn(date),
			RunningCost: models.Money{Currency: activityBudget.Currency},
		}
	}

	share := 0.0
	if len(days) > 0 {
		share = activityBudget.Amount / float64(len(days))
	}

	placed := 0
	for _, rec := range ranked {
		opt, ok := byID[rec.SubjectID]
		if !ok {
			continue
		}
		day := o.pickDay(it.Days, opt, share)
		if day < 0 {
			it.Unscheduled = append(it.Unscheduled, rec)
			continue
		}
		d := &it.Days[day]
		d.Activities = append(d.Activities, models.ScheduledActivity{Activity: *opt, Score: rec.Score})
		d.RunningCost = d.RunningCost.Add(opt.Cost)
		d.RunningDuration += opt.Duration
		placed++
	}

	if placed == 0 {
		return it, ErrNoFeasibleItinerary
	}
	return it, nil
}

// pickDay returns the index of the day the option should join, or -1 when
// no day fits. Among fitting days the first one with a same-area neighbor
// wins; otherwise the earliest fitting day.
func (o *Optimizer) pickDay(days []models.ItineraryDay, opt *models.ActivityOption, share float64) int {
	firstFit := -1
	for i := range days {
		if !o.fits(days, i, opt, share) {
			continue
		}
		if hasNeighbor(&days[i], opt, o.ClusterKM) {
			return i
		}
		if firstFit < 0 {
			firstFit = i
		}
	}
	return firstFit
}

// fits checks weather, capacity, and budget for placing opt on day i.
// The budget check is cumulative: after placement, total spend through
// every day from i onward must stay within that prefix's rolled-forward
// allocation, share*(n+1) for day n.
func (o *Optimizer) fits(days []models.ItineraryDay, i int, opt *models.ActivityOption, share float64) bool {
	if !days[i].Condition.Suits(opt.WeatherTags) {
		return false
	}
	if days[i].RunningDuration+opt.Duration > o.DailyCapacity {
		return false
	}

	spent := 0.0
	for n := 0; n < len(days); n++ {
		spent += days[n].RunningCost.Amount
		if n < i {
			continue
		}
		if spent+opt.Cost.Amount > share*float64(n+1)+centTolerance {
			return false
		}
	}
	return true
}

// centTolerance absorbs float drift in cumulative budget comparisons.
const centTolerance = 1e-9

func hasNeighbor(day *models.ItineraryDay, opt *models.ActivityOption, clusterKM float64) bool {
	for i := range day.Activities {
		a := &day.Activities[i].Activity
		if distanceKM(a.Lat, a.Lon, opt.Lat, opt.Lon) <= clusterKM {
			return true
		}
	}
	return false
}

// distanceKM is the haversine great-circle distance.
func distanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
