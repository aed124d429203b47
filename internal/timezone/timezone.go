package timezone

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

const DefaultZone = "Europe/Berlin"

// CET is used when the zone database is unavailable.
var CET = time.FixedZone("CET", 1*60*60)

func GetLocationByName(name string) *time.Location {
	if name == "" {
		name = DefaultZone
	}
	switch name {
	case "UTC":
		return time.UTC
	case "CET", "UTC+1":
		return CET
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("zone", name).Msg("Unknown timezone, falling back to CET")
		return CET
	}
	return loc
}

// ParseDeparture combines a "YYYY-MM-DD" date and "HH:MM" clock time in loc.
func ParseDeparture(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = GetLocationByName(DefaultZone)
	}

	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, date+" "+clock, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, models.ErrInvalidDeparture
}
