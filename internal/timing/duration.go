package timing

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

const Unknown = "Unknown"

// DurationOf measures from the first leg's departure to the last leg's arrival.
func DurationOf(legs []models.Leg) string {
	if len(legs) == 0 {
		return Unknown
	}
	return FormatElapsed(legs[len(legs)-1].Arrival.Sub(legs[0].Departure))
}

// SplitDurationOf measures a two-part journey door to door, so time spent
// waiting at the split station counts.
func SplitDurationOf(first, second models.JourneyCandidate) string {
	start, ok := first.FirstLeg()
	if !ok {
		return Unknown
	}
	end, ok := second.LastLeg()
	if !ok {
		return Unknown
	}
	return FormatElapsed(end.Arrival.Sub(start.Departure))
}

// FormatElapsed renders "<hours>h <minutes>m", truncating both fields.
// Negative values come from broken schedule data and are clamped to zero.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		log.Warn().Dur("elapsed", d).Msg("Negative journey duration, clamping to zero")
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
