package splitpoint

import (
	"sort"
	"time"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

const (
	DefaultMaxPoints = 3
	// DefaultMinDwell separates interchange stops from signal or technical halts.
	DefaultMinDwell = 120 * time.Second
)

type Options struct {
	MaxPoints int
	MinDwell  time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxPoints: DefaultMaxPoints,
		MinDwell:  DefaultMinDwell,
	}
}

type scoredStop struct {
	station models.Station
	dwell   time.Duration
}

// Extract ranks a journey's own stopovers by scheduled dwell time, longest
// first, and returns up to opts.MaxPoints distinct stations. The journey's
// endpoints are never returned.
func Extract(candidate models.JourneyCandidate, opts Options) []models.Station {
	if opts.MaxPoints <= 0 {
		return nil
	}

	first, ok := candidate.FirstLeg()
	if !ok {
		return nil
	}
	last, _ := candidate.LastLeg()

	var scored []scoredStop
	for _, leg := range candidate.Legs {
		for _, s := range leg.Stopovers {
			dwell, ok := s.Dwell()
			if !ok || dwell < opts.MinDwell {
				continue
			}
			if isEndpoint(s.Station, first.Origin, last.Destination) {
				continue
			}
			scored = append(scored, scoredStop{station: s.Station, dwell: dwell})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].dwell > scored[j].dwell
	})

	seen := make(map[string]bool)
	points := make([]models.Station, 0, opts.MaxPoints)
	for _, s := range scored {
		if seen[s.station.Name] {
			continue
		}
		seen[s.station.Name] = true
		points = append(points, s.station)
		if len(points) == opts.MaxPoints {
			break
		}
	}
	return points
}

func isEndpoint(s models.Station, endpoints ...models.Station) bool {
	for _, e := range endpoints {
		if s.ID != "" && s.ID == e.ID {
			return true
		}
		if s.ID == "" && s.Name != "" && s.Name == e.Name {
			return true
		}
	}
	return false
}
