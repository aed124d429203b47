package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/besserbahn/internal/aggregator"
	"github.com/dharmasatrya/besserbahn/internal/models"
)

const serviceName = "BesserBahn API"

type Searcher interface {
	Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error)
	LookupStations(ctx context.Context, query string, maxResults int) ([]models.Station, error)
}

type SearchHandler struct {
	service Searcher
}

func NewSearchHandler(service Searcher) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var query models.SearchQuery
	if err := c.Bind(&query); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	resp, err := h.service.Search(ctx, query)
	if err != nil {
		return searchError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) Stations(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.StationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	stations, err := h.service.LookupStations(ctx, req.Query, req.Results)
	if err != nil {
		log.Error().Err(err).Str("query", req.Query).Msg("Station lookup failed")
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "lookup_error",
			Message: "Station lookup failed: " + err.Error(),
			Code:    http.StatusBadGateway,
		})
	}

	return c.JSON(http.StatusOK, stations)
}

func searchError(c echo.Context, err error) error {
	var ve models.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	var re *aggregator.StationResolutionError
	if errors.As(err, &re) {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "station_not_found",
			Message: err.Error(),
			Code:    http.StatusUnprocessableEntity,
		})
	}

	log.Error().Err(err).Msg("Search failed")
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: "Search failed: " + err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Service:   serviceName,
	})
}

// MockHandler serves fixed results so clients can be checked without
// reaching the journey provider.
func MockHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.MockResponse{
		Message: "Server is working!",
		MockResults: []models.RouteOption{
			{Label: models.LabelDirect, Price: 89.00, Duration: "4h 0m", SavingsNote: models.NoteDirect},
			{Label: models.LabelVia + "Frankfurt", Price: 67.50, Duration: "4h 12m", ConnectionCount: 1, SavingsNote: "1 connection • Save €21.50"},
		},
	})
}
