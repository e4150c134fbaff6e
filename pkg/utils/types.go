package utils

import "fmt"

// TimeValue is a normalized time of day parsed from a roster token.
type TimeValue struct {
	Hours        int
	Minutes      int
	TotalMinutes int
	TotalHours   float64
}

// NewTimeValue builds a TimeValue from hours and minutes.
func NewTimeValue(hours, minutes int) TimeValue {
	total := hours*60 + minutes
	return TimeValue{
		Hours:        hours,
		Minutes:      minutes,
		TotalMinutes: total,
		TotalHours:   float64(total) / 60.0,
	}
}

// String renders the canonical HH:MM form.
func (t TimeValue) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hours, t.Minutes)
}

// Constants
const (
	DATE_LAYOUT       = "02/01/2006"
	DATE_LAYOUT_SHORT = "02/01"
	MinutesPerDay     = 24 * 60
)
