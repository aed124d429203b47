package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

const (
	DefaultDBRestURL = "https://v6.db.transport.rest"
	DefaultUserAgent = "BesserBahn-App"

	dbRestName  = "dbrest"
	opLocations = "locations"
	opJourneys  = "journeys"
)

type dbStation struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type dbStopover struct {
	Stop             dbStation  `json:"stop"`
	Arrival          *time.Time `json:"arrival"`
	PlannedArrival   *time.Time `json:"plannedArrival"`
	Departure        *time.Time `json:"departure"`
	PlannedDeparture *time.Time `json:"plannedDeparture"`
}

type dbLeg struct {
	Origin           dbStation    `json:"origin"`
	Destination      dbStation    `json:"destination"`
	Departure        *time.Time   `json:"departure"`
	PlannedDeparture *time.Time   `json:"plannedDeparture"`
	Arrival          *time.Time   `json:"arrival"`
	PlannedArrival   *time.Time   `json:"plannedArrival"`
	Stopovers        []dbStopover `json:"stopovers"`
}

type dbJourney struct {
	Legs  []dbLeg         `json:"legs"`
	Price json.RawMessage `json:"price"`
}

type dbJourneysResponse struct {
	Journeys []dbJourney `json:"journeys"`
}

type DBRestConfig struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// DBRest talks to a db-rest (db-vendo-client) HTTP deployment.
type DBRest struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewDBRest(cfg DBRestConfig) *DBRest {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultDBRestURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	return &DBRest{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    cfg.Client,
	}
}

func (p *DBRest) Name() string {
	return dbRestName
}

func (p *DBRest) Locations(ctx context.Context, query string, maxResults int) ([]models.Station, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("results", strconv.Itoa(maxResults))
	params.Set("stops", "true")
	params.Set("addresses", "false")
	params.Set("poi", "false")

	var resp []dbStation
	if err := p.get(ctx, opLocations, "/locations", params, &resp); err != nil {
		return nil, err
	}

	stations := make([]models.Station, 0, len(resp))
	for _, s := range resp {
		if s.ID == "" {
			continue
		}
		stations = append(stations, models.Station{ID: s.ID, Name: s.Name, Type: s.Type})
	}
	return stations, nil
}

func (p *DBRest) Journeys(ctx context.Context, originID, destinationID string, departure time.Time, opts QueryOptions) ([]models.JourneyCandidate, error) {
	params := url.Values{}
	params.Set("from", originID)
	params.Set("to", destinationID)
	params.Set("departure", departure.Format(time.RFC3339))
	if opts.MaxResults > 0 {
		params.Set("results", strconv.Itoa(opts.MaxResults))
	}
	params.Set("stopovers", strconv.FormatBool(opts.Stopovers))
	if opts.MaxTransfers >= 0 {
		params.Set("transfers", strconv.Itoa(opts.MaxTransfers))
	}

	var resp dbJourneysResponse
	if err := p.get(ctx, opJourneys, "/journeys", params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]models.JourneyCandidate, 0, len(resp.Journeys))
	for _, j := range resp.Journeys {
		candidate, err := normalizeJourney(j)
		if err != nil {
			log.Debug().Err(err).Str("from", originID).Str("to", destinationID).Msg("Skipping journey")
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (p *DBRest) get(ctx context.Context, op, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return NewProviderError(dbRestName, op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return NewProviderError(dbRestName, op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return NewProviderError(dbRestName, op, resp.StatusCode, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewProviderError(dbRestName, op, resp.StatusCode, fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(dbRestName, op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

var errIncompleteLeg = errors.New("leg without departure or arrival time")

func normalizeJourney(j dbJourney) (models.JourneyCandidate, error) {
	if len(j.Legs) == 0 {
		return models.JourneyCandidate{}, errors.New("journey without legs")
	}

	legs := make([]models.Leg, len(j.Legs))
	for i, l := range j.Legs {
		dep := firstTime(l.Departure, l.PlannedDeparture)
		arr := firstTime(l.Arrival, l.PlannedArrival)
		if dep == nil || arr == nil {
			return models.JourneyCandidate{}, errIncompleteLeg
		}

		stopovers := make([]models.Stopover, 0, len(l.Stopovers))
		for _, s := range l.Stopovers {
			stopovers = append(stopovers, models.Stopover{
				Station:          toStation(s.Stop),
				PlannedArrival:   s.PlannedArrival,
				PlannedDeparture: s.PlannedDeparture,
			})
		}

		legs[i] = models.Leg{
			Origin:      toStation(l.Origin),
			Destination: toStation(l.Destination),
			Departure:   *dep,
			Arrival:     *arr,
			Stopovers:   stopovers,
		}
	}

	return models.JourneyCandidate{Legs: legs, Price: j.Price}, nil
}

func firstTime(ts ...*time.Time) *time.Time {
	for _, t := range ts {
		if t != nil {
			return t
		}
	}
	return nil
}

func toStation(s dbStation) models.Station {
	return models.Station{ID: s.ID, Name: s.Name, Type: s.Type}
}
