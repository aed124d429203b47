package stations

import (
	"context"
	"errors"
	"testing"

	"github.com/dharmasatrya/besserbahn/internal/models"
	"github.com/dharmasatrya/besserbahn/internal/providers"
)

type stubLookup struct {
	stations []models.Station
	err      error
	calls    int
	lastMax  int
}

func (s *stubLookup) Locations(_ context.Context, _ string, maxResults int) ([]models.Station, error) {
	s.calls++
	s.lastMax = maxResults
	if s.err != nil {
		return nil, s.err
	}
	if maxResults < len(s.stations) {
		return s.stations[:maxResults], nil
	}
	return s.stations, nil
}

func TestResolveDefaultsType(t *testing.T) {
	lookup := &stubLookup{stations: []models.Station{
		{ID: "8011160", Name: "Berlin Hbf"},
		{ID: "8089021", Name: "Berlin Ostbahnhof", Type: "stop"},
	}}

	got, err := NewResolver(lookup).Resolve(context.Background(), "Berlin", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(got))
	}
	if got[0].Type != "station" {
		t.Errorf("expected default type station, got %q", got[0].Type)
	}
	if got[1].Type != "stop" {
		t.Errorf("expected provider type to be kept, got %q", got[1].Type)
	}
	if lookup.lastMax != 5 {
		t.Errorf("expected maxResults 5 to be forwarded, got %d", lookup.lastMax)
	}
}

func TestResolveValidatesInput(t *testing.T) {
	r := NewResolver(&stubLookup{})

	if _, err := r.Resolve(context.Background(), "  ", 5); !errors.Is(err, models.ErrMissingQuery) {
		t.Errorf("expected ErrMissingQuery, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "Berlin", 0); !errors.Is(err, models.ErrInvalidMaxResults) {
		t.Errorf("expected ErrInvalidMaxResults, got %v", err)
	}
}

func TestResolveOneTakesFirst(t *testing.T) {
	lookup := &stubLookup{stations: []models.Station{
		{ID: "8000105", Name: "Frankfurt(Main)Hbf"},
		{ID: "8002041", Name: "Frankfurt(Main)Süd"},
	}}

	got, err := NewResolver(lookup).ResolveOne(context.Background(), "Frankfurt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "8000105" {
		t.Errorf("expected first match, got %s", got.ID)
	}
}

func TestResolveOneNotFound(t *testing.T) {
	_, err := NewResolver(&stubLookup{}).ResolveOne(context.Background(), "Atlantis")

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Query != "Atlantis" {
		t.Errorf("expected query Atlantis, got %q", nf.Query)
	}
}

func TestResolvePropagatesProviderError(t *testing.T) {
	perr := providers.NewProviderError("dbrest", "locations", 503, errors.New("unavailable"))
	_, err := NewResolver(&stubLookup{err: perr}).ResolveOne(context.Background(), "Köln")

	var pe *providers.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}
