package models

import "time"

const DefaultStationType = "station"

type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Stopover struct {
	Station          Station    `json:"station"`
	PlannedArrival   *time.Time `json:"plannedArrival,omitempty"`
	PlannedDeparture *time.Time `json:"plannedDeparture,omitempty"`
}

// Dwell reports how long the vehicle is scheduled to stand at the stop.
// ok is false when either planned time is missing.
func (s Stopover) Dwell() (d time.Duration, ok bool) {
	if s.PlannedArrival == nil || s.PlannedDeparture == nil {
		return 0, false
	}
	return s.PlannedDeparture.Sub(*s.PlannedArrival), true
}
