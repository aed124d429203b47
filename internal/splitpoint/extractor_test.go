package splitpoint

import (
	"testing"
	"time"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

var base = time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)

func stop(id, name string, arriveMin, dwell time.Duration) models.Stopover {
	arr := base.Add(arriveMin * time.Minute)
	dep := arr.Add(dwell)
	return models.Stopover{
		Station:          models.Station{ID: id, Name: name},
		PlannedArrival:   &arr,
		PlannedDeparture: &dep,
	}
}

func journey(stopovers ...models.Stopover) models.JourneyCandidate {
	return models.JourneyCandidate{Legs: []models.Leg{{
		Origin:      models.Station{ID: "8011160", Name: "Berlin Hbf"},
		Destination: models.Station{ID: "8000261", Name: "München Hbf"},
		Departure:   base,
		Arrival:     base.Add(4 * time.Hour),
		Stopovers:   stopovers,
	}}}
}

func names(stations []models.Station) []string {
	out := make([]string, len(stations))
	for i, s := range stations {
		out[i] = s.Name
	}
	return out
}

func TestExtractRanksByDwell(t *testing.T) {
	c := journey(
		stop("8011160", "Berlin Hbf", 0, 10*time.Minute),
		stop("8010205", "Leipzig Hbf", 70, 4*time.Minute),
		stop("8010101", "Erfurt Hbf", 110, 2*time.Minute),
		stop("8000001", "Signal Halt", 130, 30*time.Second),
		stop("8000284", "Nürnberg Hbf", 180, 6*time.Minute),
		stop("8000170", "Ingolstadt Hbf", 210, 3*time.Minute),
		stop("8000261", "München Hbf", 240, 5*time.Minute),
	)

	got := names(Extract(c, DefaultOptions()))
	want := []string{"Nürnberg Hbf", "Leipzig Hbf", "Ingolstadt Hbf"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestExtractThresholdIsInclusive(t *testing.T) {
	c := journey(stop("8010101", "Erfurt Hbf", 110, 120*time.Second))
	if got := Extract(c, DefaultOptions()); len(got) != 1 {
		t.Errorf("expected a 120s dwell to qualify, got %v", names(got))
	}
}

func TestExtractSkipsMissingTimes(t *testing.T) {
	arr := base.Add(time.Hour)
	c := journey(models.Stopover{
		Station:        models.Station{ID: "8010205", Name: "Leipzig Hbf"},
		PlannedArrival: &arr,
	})
	if got := Extract(c, DefaultOptions()); len(got) != 0 {
		t.Errorf("expected no split points, got %v", names(got))
	}
}

func TestExtractDeduplicates(t *testing.T) {
	c := journey(
		stop("8010205", "Leipzig Hbf", 70, 4*time.Minute),
		stop("8010205", "Leipzig Hbf", 75, 8*time.Minute),
	)
	if got := Extract(c, DefaultOptions()); len(got) != 1 {
		t.Errorf("expected one split point, got %v", names(got))
	}
}

func TestExtractEmpty(t *testing.T) {
	if got := Extract(models.JourneyCandidate{}, DefaultOptions()); len(got) != 0 {
		t.Errorf("expected nothing for an empty journey, got %v", names(got))
	}
}
