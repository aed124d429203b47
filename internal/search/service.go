package search

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/besserbahn/internal/cache"
	"github.com/dharmasatrya/besserbahn/internal/metrics"
	"github.com/dharmasatrya/besserbahn/internal/models"
	"github.com/dharmasatrya/besserbahn/internal/timezone"
)

type RouteFinder interface {
	FindRouteOptions(ctx context.Context, fromCity, toCity string, departure time.Time) ([]models.RouteOption, error)
}

type StationLookup interface {
	Resolve(ctx context.Context, name string, maxResults int) ([]models.Station, error)
}

// Service is the boundary the HTTP handlers and the CLI talk to. It puts the
// result cache in front of the route finder.
type Service struct {
	finder   RouteFinder
	stations StationLookup
	cache    cache.Cache
	location *time.Location
	now      func() time.Time
}

func NewService(finder RouteFinder, stations StationLookup, c cache.Cache, location *time.Location) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if location == nil {
		location = timezone.GetLocationByName(timezone.DefaultZone)
	}
	return &Service{
		finder:   finder,
		stations: stations,
		cache:    c,
		location: location,
		now:      time.Now,
	}
}

func (s *Service) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	departure, err := timezone.ParseDeparture(query.Date, query.Time, s.location)
	if err != nil {
		return nil, err
	}

	if entry, found := s.cache.Get(ctx, query); found {
		metrics.ObserveCacheLookup(true)
		log.Debug().Str("from", query.FromCity).Str("to", query.ToCity).Msg("Returning cached result")
		return &models.SearchResponse{
			Results:    entry.Payload,
			SearchedAt: entry.ComputedAt,
			Query:      query,
			FromCache:  true,
		}, nil
	}
	metrics.ObserveCacheLookup(false)

	log.Info().
		Str("from", query.FromCity).
		Str("to", query.ToCity).
		Time("departure", departure).
		Msg("New search")

	results, err := s.finder.FindRouteOptions(ctx, query.FromCity, query.ToCity, departure)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.RouteOption{}
	}

	searchedAt := s.now().UTC()
	if entry, err := s.cache.Set(ctx, query, results); err != nil {
		log.Warn().Err(err).Msg("Failed to cache search result")
	} else {
		searchedAt = entry.ComputedAt
	}

	return &models.SearchResponse{
		Results:    results,
		SearchedAt: searchedAt,
		Query:      query,
		FromCache:  false,
	}, nil
}

func (s *Service) LookupStations(ctx context.Context, query string, maxResults int) ([]models.Station, error) {
	if maxResults <= 0 {
		maxResults = models.DefaultStationResults
	}
	return s.stations.Resolve(ctx, query, maxResults)
}
