package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/dharmasatrya/besserbahn/internal/metrics"
	"github.com/dharmasatrya/besserbahn/internal/models"
	"github.com/dharmasatrya/besserbahn/internal/pricing"
	"github.com/dharmasatrya/besserbahn/internal/providers"
	"github.com/dharmasatrya/besserbahn/internal/ranking"
	"github.com/dharmasatrya/besserbahn/internal/ratelimit"
	"github.com/dharmasatrya/besserbahn/internal/splitpoint"
	"github.com/dharmasatrya/besserbahn/internal/stations"
	"github.com/dharmasatrya/besserbahn/internal/timing"
	"github.com/dharmasatrya/besserbahn/pkg/currency"
)

const (
	opLocations = "locations"
	opJourneys  = "journeys"
)

type StationResolver interface {
	ResolveOne(ctx context.Context, name string) (models.Station, error)
}

type Config struct {
	SearchTimeout time.Duration
	CallTimeout   time.Duration
	MaxRetries    int
	RetryDelays   []time.Duration
	RateLimiter   *ratelimit.Limiter

	MaxConcurrency int

	// Hubs are tried in order when there is no direct journey to take
	// split points from; only the first FallbackHubCount are used.
	Hubs             []string
	FallbackHubCount int

	// DynamicBuffer and HubBuffer are added to the first leg's arrival
	// before searching the onward leg.
	DynamicBuffer time.Duration
	HubBuffer     time.Duration

	SplitPoints splitpoint.Options
	Query       providers.QueryOptions
}

func DefaultHubs() []string {
	return []string{
		"Frankfurt am Main",
		"Hannover",
		"Nürnberg",
		"Köln",
		"Hamburg",
	}
}

func DefaultConfig() Config {
	return Config{
		SearchTimeout: 20 * time.Second,
		CallTimeout:   8 * time.Second,
		MaxRetries:    2,
		RetryDelays: []time.Duration{
			200 * time.Millisecond,
			500 * time.Millisecond,
		},
		MaxConcurrency:   3,
		Hubs:             DefaultHubs(),
		FallbackHubCount: 2,
		DynamicBuffer:    15 * time.Minute,
		HubBuffer:        30 * time.Minute,
		SplitPoints:      splitpoint.DefaultOptions(),
		Query:            providers.DefaultQueryOptions(),
	}
}

type Role string

const (
	RoleOrigin      Role = "origin"
	RoleDestination Role = "destination"
)

// StationResolutionError is returned when the origin or destination matches
// no station at all; nothing else can be searched without them.
type StationResolutionError struct {
	Role  Role
	Query string
	Err   error
}

func (e *StationResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %s station %q: %v", e.Role, e.Query, e.Err)
}

func (e *StationResolutionError) Unwrap() error {
	return e.Err
}

type splitSource int

const (
	sourceDynamic splitSource = iota
	sourceHub
)

type splitPoint struct {
	station models.Station
	source  splitSource
}

type endpoints struct {
	from        string
	to          string
	origin      models.Station
	destination models.Station
}

type Aggregator struct {
	resolver StationResolver
	journeys providers.JourneyProvider
	config   Config
}

func NewAggregator(resolver StationResolver, journeys providers.JourneyProvider, config Config) *Aggregator {
	return &Aggregator{
		resolver: resolver,
		journeys: journeys,
		config:   config,
	}
}

// FindRouteOptions returns the direct option, if any, plus every split
// option that is strictly cheaper than it, sorted by price. An empty result
// is not an error.
func (a *Aggregator) FindRouteOptions(ctx context.Context, fromCity, toCity string, departure time.Time) ([]models.RouteOption, error) {
	start := time.Now()
	defer func() { metrics.ObserveSearch(time.Since(start)) }()

	searchCtx := ctx
	if a.config.SearchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, a.config.SearchTimeout)
		defer cancel()
	}

	ends := endpoints{from: fromCity, to: toCity}
	options := make([]models.RouteOption, 0)

	baseline, err := a.searchDirect(searchCtx, &ends, departure)
	if err != nil {
		var re *StationResolutionError
		if errors.As(err, &re) {
			return nil, err
		}
		log.Warn().Err(err).Str("from", fromCity).Str("to", toCity).Msg("Direct search failed")
	}
	if baseline != nil {
		options = append(options, models.RouteOption{
			Label:           models.LabelDirect,
			Price:           currency.RoundCents(baseline.Amount),
			Duration:        timing.DurationOf(baseline.Journey.Legs),
			ConnectionCount: 0,
			SavingsNote:     models.NoteDirect,
		})
	}

	points := a.splitPoints(baseline)
	log.Debug().Int("split_points", len(points)).Bool("baseline", baseline != nil).Msg("Exploring split points")

	p := pool.NewWithResults[*models.RouteOption]().WithMaxGoroutines(a.maxConcurrency())
	for _, sp := range points {
		p.Go(func() *models.RouteOption {
			option, err := a.exploreSplit(searchCtx, ends, sp, departure, baseline)
			if err != nil {
				metrics.ObserveBranch(metrics.BranchFailed)
				log.Warn().Err(err).Str("split_point", sp.station.Name).Msg("Split branch failed")
				return nil
			}
			return option
		})
	}

	for _, option := range p.Wait() {
		if option != nil {
			options = append(options, *option)
		}
	}

	return ranking.ByPrice(options), nil
}

func (a *Aggregator) searchDirect(ctx context.Context, ends *endpoints, departure time.Time) (*pricing.Priced, error) {
	origin, err := a.resolve(ctx, ends.from)
	if err != nil {
		return nil, resolutionError(RoleOrigin, ends.from, err)
	}
	ends.origin = origin

	destination, err := a.resolve(ctx, ends.to)
	if err != nil {
		return nil, resolutionError(RoleDestination, ends.to, err)
	}
	ends.destination = destination

	best, ok, err := a.cheapestJourney(ctx, origin.ID, destination.ID, departure)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Info().Str("from", origin.Name).Str("to", destination.Name).Msg("No priced direct journey")
		return nil, nil
	}
	return &best, nil
}

func resolutionError(role Role, query string, err error) error {
	var nf *stations.NotFoundError
	if errors.As(err, &nf) {
		return &StationResolutionError{Role: role, Query: query, Err: err}
	}
	return fmt.Errorf("resolve %s %q: %w", role, query, err)
}

func (a *Aggregator) splitPoints(baseline *pricing.Priced) []splitPoint {
	var points []splitPoint

	if baseline != nil {
		for _, s := range splitpoint.Extract(baseline.Journey, a.config.SplitPoints) {
			points = append(points, splitPoint{station: s, source: sourceDynamic})
		}
		return points
	}

	hubs := a.config.Hubs
	if a.config.FallbackHubCount >= 0 && a.config.FallbackHubCount < len(hubs) {
		hubs = hubs[:a.config.FallbackHubCount]
	}
	for _, hub := range hubs {
		points = append(points, splitPoint{station: models.Station{Name: hub}, source: sourceHub})
	}
	return points
}

func (a *Aggregator) exploreSplit(ctx context.Context, ends endpoints, sp splitPoint, departure time.Time, baseline *pricing.Priced) (*models.RouteOption, error) {
	origin, err := a.station(ctx, ends.origin, ends.from)
	if err != nil {
		return nil, err
	}
	via, err := a.station(ctx, sp.station, sp.station.Name)
	if err != nil {
		return nil, err
	}
	destination, err := a.station(ctx, ends.destination, ends.to)
	if err != nil {
		return nil, err
	}
	if via.ID == origin.ID || via.ID == destination.ID {
		metrics.ObserveBranch(metrics.BranchNoRoute)
		return nil, nil
	}

	first, ok, err := a.cheapestJourney(ctx, origin.ID, via.ID, departure)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.ObserveBranch(metrics.BranchNoRoute)
		return nil, nil
	}

	arrival, ok := first.Journey.LastLeg()
	if !ok {
		metrics.ObserveBranch(metrics.BranchNoRoute)
		return nil, nil
	}
	connection := arrival.Arrival.Add(a.buffer(sp.source))

	second, ok, err := a.cheapestJourney(ctx, via.ID, destination.ID, connection)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.ObserveBranch(metrics.BranchNoRoute)
		return nil, nil
	}

	total := currency.RoundCents(first.Amount + second.Amount)
	note := "1 connection"
	if baseline != nil {
		savings := currency.RoundCents(baseline.Amount - total)
		if savings <= 0 {
			metrics.ObserveBranch(metrics.BranchRejected)
			log.Debug().Str("split_point", sp.station.Name).Float64("total", total).Float64("direct", baseline.Amount).Msg("Split not cheaper than direct")
			return nil, nil
		}
		note += " • Save " + currency.FormatEUR(savings)
	}

	metrics.ObserveBranch(metrics.BranchAccepted)
	return &models.RouteOption{
		Label:           models.LabelVia + sp.station.Name,
		Price:           total,
		Duration:        timing.SplitDurationOf(first.Journey, second.Journey),
		ConnectionCount: 1,
		SavingsNote:     note,
	}, nil
}

// station returns known if it is already resolved, otherwise looks name up.
func (a *Aggregator) station(ctx context.Context, known models.Station, name string) (models.Station, error) {
	if known.ID != "" {
		return known, nil
	}
	return a.resolve(ctx, name)
}

func (a *Aggregator) resolve(ctx context.Context, name string) (models.Station, error) {
	return call(ctx, a.config, opLocations, func(ctx context.Context) (models.Station, error) {
		return a.resolver.ResolveOne(ctx, name)
	})
}

func (a *Aggregator) cheapestJourney(ctx context.Context, originID, destinationID string, departure time.Time) (pricing.Priced, bool, error) {
	candidates, err := call(ctx, a.config, opJourneys, func(ctx context.Context) ([]models.JourneyCandidate, error) {
		return a.journeys.Journeys(ctx, originID, destinationID, departure, a.config.Query)
	})
	if err != nil {
		return pricing.Priced{}, false, err
	}
	best, ok := pricing.Cheapest(candidates)
	return best, ok, nil
}

func (a *Aggregator) buffer(source splitSource) time.Duration {
	if source == sourceHub {
		return a.config.HubBuffer
	}
	return a.config.DynamicBuffer
}

func (a *Aggregator) maxConcurrency() int {
	if a.config.MaxConcurrency < 1 {
		return 1
	}
	return a.config.MaxConcurrency
}
