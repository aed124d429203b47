package stations

import (
	"context"
	"fmt"
	"strings"

	"github.com/dharmasatrya/besserbahn/internal/models"
	"github.com/dharmasatrya/besserbahn/internal/providers"
)

type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no station found for %q", e.Query)
}

// Resolver turns free text into provider station identifiers. Provider
// ranking is trusted as is.
type Resolver struct {
	lookup providers.LocationLookup
}

func NewResolver(lookup providers.LocationLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

func (r *Resolver) Resolve(ctx context.Context, name string, maxResults int) ([]models.Station, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.ErrMissingQuery
	}
	if maxResults < 1 {
		return nil, models.ErrInvalidMaxResults
	}

	found, err := r.lookup.Locations(ctx, name, maxResults)
	if err != nil {
		return nil, err
	}

	stations := make([]models.Station, len(found))
	for i, s := range found {
		if s.Type == "" {
			s.Type = models.DefaultStationType
		}
		stations[i] = s
	}
	return stations, nil
}

// ResolveOne returns the highest ranked match for name.
func (r *Resolver) ResolveOne(ctx context.Context, name string) (models.Station, error) {
	stations, err := r.Resolve(ctx, name, 1)
	if err != nil {
		return models.Station{}, err
	}
	if len(stations) == 0 {
		return models.Station{}, &NotFoundError{Query: name}
	}
	return stations[0], nil
}
