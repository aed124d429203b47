package models

import (
	"encoding/json"
	"time"
)

type Leg struct {
	Origin      Station    `json:"origin"`
	Destination Station    `json:"destination"`
	Departure   time.Time  `json:"departure"`
	Arrival     time.Time  `json:"arrival"`
	Stopovers   []Stopover `json:"stopovers,omitempty"`
}

// JourneyCandidate is one itinerary returned by the journey provider.
// Price is kept undecoded; see pricing.Extract.
type JourneyCandidate struct {
	Legs  []Leg           `json:"legs"`
	Price json.RawMessage `json:"price,omitempty"`
}

func (j JourneyCandidate) FirstLeg() (Leg, bool) {
	if len(j.Legs) == 0 {
		return Leg{}, false
	}
	return j.Legs[0], true
}

func (j JourneyCandidate) LastLeg() (Leg, bool) {
	if len(j.Legs) == 0 {
		return Leg{}, false
	}
	return j.Legs[len(j.Legs)-1], true
}
