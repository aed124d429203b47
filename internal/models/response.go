package models

import "time"

type SearchResponse struct {
	Results    []RouteOption `json:"results"`
	SearchedAt time.Time     `json:"searchedAt"`
	Query      SearchQuery   `json:"query"`
	FromCache  bool          `json:"fromCache"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type MockResponse struct {
	Message     string        `json:"message"`
	MockResults []RouteOption `json:"mockResults"`
}
