package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/voyagent/voyagent/pkg/models"
)

func date(day int) time.Time {
	return time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC)
}

func tripDates() models.DateRange {
	return models.DateRange{Start: date(1), End: date(3)}
}

// Madrid coordinates: Prado and Retiro are a short walk apart, the
// stadium tour is well outside the cluster threshold.
func testActivities() []models.ActivityOption {
	return []models.ActivityOption{
		{ID: "AC-001", Name: "Prado Museum", Lat: 40.4138, Lon: -3.6921, Cost: models.USD(15), Duration: 3 * time.Hour, WeatherTags: []string{"indoor"}, Rating: 4.8},
		{ID: "AC-002", Name: "Retiro Park", Lat: 40.4153, Lon: -3.6845, Cost: models.USD(0), Duration: 2 * time.Hour, WeatherTags: []string{"outdoor", "sunny"}, Rating: 4.6},
		{ID: "AC-003", Name: "Flamenco Show", Lat: 40.4131, Lon: -3.7023, Cost: models.USD(45), Duration: 2 * time.Hour, WeatherTags: []string{"indoor"}, Rating: 4.5},
		{ID: "AC-004", Name: "Stadium Tour", Lat: 40.4530, Lon: -3.6883, Cost: models.USD(25), Duration: 2 * time.Hour, WeatherTags: []string{"any"}, Rating: 4.4},
		{ID: "AC-005", Name: "River Walk", Lat: 40.4000, Lon: -3.7190, Cost: models.USD(0), Duration: 2 * time.Hour, WeatherTags: []string{"outdoor"}, Rating: 4.2},
	}
}

func rankedFrom(opts []models.ActivityOption) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(opts))
	for _, o := range opts {
		recs = append(recs, models.Recommendation{SubjectID: o.ID, Subject: o.Name, Score: o.Rating / 5, Cost: o.Cost})
	}
	return recs
}

func forecast(conds ...models.Condition) *models.WeatherForecast {
	f := &models.WeatherForecast{Location: "Madrid"}
	for i, c := range conds {
		f.Days = append(f.Days, models.DayForecast{Date: date(i + 1), Condition: c})
	}
	return f
}

func TestBuild_RainyDayExcludesOutdoor(t *testing.T) {
	o := New(DefaultDailyCapacity, DefaultClusterKM)
	opts := testActivities()
	// Day 2 is rainy, days 1 and 3 sunny.
	wx := forecast(models.ConditionSunny, models.ConditionRainy, models.ConditionSunny)

	it, err := o.Build(rankedFrom(opts), opts, wx, tripDates(), models.USD(500))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, sa := range it.Days[1].Activities {
		for _, tag := range sa.Activity.WeatherTags {
			if tag == "outdoor" {
				t.Errorf("outdoor activity %s scheduled on the rainy day", sa.Activity.Name)
			}
		}
	}
	if it.Days[1].Condition != models.ConditionRainy {
		t.Errorf("day 2 condition = %s, want rainy", it.Days[1].Condition)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	o := New(DefaultDailyCapacity, DefaultClusterKM)
	opts := testActivities()
	wx := forecast(models.ConditionSunny, models.ConditionRainy, models.ConditionCloudy)

	first, err := o.Build(rankedFrom(opts), opts, wx, tripDates(), models.USD(500))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	second, err := o.Build(rankedFrom(opts), opts, wx, tripDates(), models.USD(500))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Error("two builds from identical input are not byte-identical")
	}
}

func TestBuild_CapacityLimitsDay(t *testing.T) {
	// Two hours of capacity per day fits exactly one two-hour slot.
	o := New(2*time.Hour, DefaultClusterKM)
	opts := testActivities()

	it, err := o.Build(rankedFrom(opts), opts, nil, tripDates(), models.USD(500))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for i, day := range it.Days {
		if day.RunningDuration > 2*time.Hour {
			t.Errorf("day %d duration %v exceeds the 2h capacity", i+1, day.RunningDuration)
		}
	}
	// Five candidates, three days, one slot each: the 3h Prado never fits
	// and at least one more stays unscheduled.
	if len(it.Unscheduled) < 2 {
		t.Errorf("unscheduled = %d, want at least 2", len(it.Unscheduled))
	}
}

func TestBuild_BudgetRollsForward(t *testing.T) {
	o := New(DefaultDailyCapacity, DefaultClusterKM)
	opts := testActivities()

	// 60 total over three days is a 20/day share. The 45 show only fits
	// because earlier days' unused allocation rolls forward.
	it, err := o.Build(rankedFrom(opts), opts, nil, tripDates(), models.USD(60))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	total := 0.0
	scheduledShow := false
	for _, day := range it.Days {
		total += day.RunningCost.Amount
		for _, sa := range day.Activities {
			if sa.Activity.ID == "AC-003" {
				scheduledShow = true
			}
		}
	}
	if total > 60 {
		t.Errorf("total activity spend %.2f exceeds the 60 budget", total)
	}
	if !scheduledShow {
		t.Error("45 Flamenco Show should fit a 60 budget via roll-forward")
	}
}

func TestBuild_ClusteringPrefersNearbyDay(t *testing.T) {
	o := New(DefaultDailyCapacity, DefaultClusterKM)
	opts := testActivities()
	// Rank Prado first, then Retiro. Retiro is within walking distance of
	// Prado, so it should join Prado's day rather than open a new one.
	ranked := []models.Recommendation{
		{SubjectID: "AC-001", Subject: "Prado Museum", Score: 0.9},
		{SubjectID: "AC-002", Subject: "Retiro Park", Score: 0.8},
	}

	it, err := o.Build(ranked, opts, nil, tripDates(), models.USD(500))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(it.Days[0].Activities) != 2 {
		t.Fatalf("day 1 has %d activities, want Prado and Retiro clustered", len(it.Days[0].Activities))
	}
}

func TestBuild_ZeroBudgetOnlyFreeActivities(t *testing.T) {
	o := New(DefaultDailyCapacity, DefaultClusterKM)
	opts := testActivities()

	it, err := o.Build(rankedFrom(opts), opts, nil, tripDates(), models.USD(0))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, day := range it.Days {
		if day.RunningCost.Amount != 0 {
			t.Errorf("paid activity scheduled against a zero budget: %v", day.Activities)
		}
	}
}

func TestBuild_NoFeasibleItinerary(t *testing.T) {
	o := New(DefaultDailyCapacity, DefaultClusterKM)
	opts := []models.ActivityOption{
		{ID: "AC-001", Name: "Flamenco Show", Cost: models.USD(45), Duration: 2 * time.Hour},
	}

	it, err := o.Build(rankedFrom(opts), opts, nil, tripDates(), models.USD(10))
	if !errors.Is(err, ErrNoFeasibleItinerary) {
		t.Fatalf("err = %v, want ErrNoFeasibleItinerary", err)
	}
	if it == nil {
		t.Fatal("partial itinerary should accompany the error")
	}
	if len(it.Unscheduled) != 1 {
		t.Errorf("unscheduled = %d, want the one rejected candidate", len(it.Unscheduled))
	}
}
