package models

type StationRequest struct {
	Query   string `json:"query"`
	Results int    `json:"results"`
}

const DefaultStationResults = 5

func (r *StationRequest) Validate() error {
	if r.Query == "" {
		return ErrMissingQuery
	}
	if r.Results <= 0 {
		r.Results = DefaultStationResults
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingSearchFields ValidationError = "missing required fields: fromCity, toCity, date, time"
	ErrMissingQuery        ValidationError = "missing required field: query"
	ErrInvalidMaxResults   ValidationError = "results must be at least 1"
	ErrInvalidDeparture    ValidationError = "date must be YYYY-MM-DD and time must be HH:MM"
)
