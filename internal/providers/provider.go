package providers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

type LocationLookup interface {
	Locations(ctx context.Context, query string, maxResults int) ([]models.Station, error)
}

type JourneyProvider interface {
	Journeys(ctx context.Context, originID, destinationID string, departure time.Time, opts QueryOptions) ([]models.JourneyCandidate, error)
}

// QueryOptions mirrors the journey query knobs. MaxTransfers < 0 means no cap.
type QueryOptions struct {
	MaxResults   int
	Stopovers    bool
	MaxTransfers int
}

func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		MaxResults:   3,
		Stopovers:    true,
		MaxTransfers: -1,
	}
}

var ErrRateLimited = errors.New("rate limited by upstream")

type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + " " + e.Op
	if e.StatusCode != 0 {
		msg += " (status " + strconv.Itoa(e.StatusCode) + ")"
	}
	return msg + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable is false for client errors other than 429; those fail the same way again.
func (e *ProviderError) Retryable() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode < 400 || e.StatusCode >= 500
}

func NewProviderError(provider, op string, statusCode int, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Op:         op,
		StatusCode: statusCode,
		Err:        err,
	}
}
