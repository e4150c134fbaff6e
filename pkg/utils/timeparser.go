package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Superscript digits suffix a time token when the duty slips past midnight
// relative to the roster date ("05:45¹" debriefs on day+1).
var crossDayMarkers = []string{"¹", "²", "³", "⁴"}

var timePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// TimeFormatError reports a token that cannot be recovered as HH:MM even
// after cleaning. Callers skip the row and keep processing the file.
type TimeFormatError struct {
	Token string
	Row   int
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("unparseable time token %q at row %d", e.Token, e.Row)
}

// ParseTimeToken parses a raw roster time token into a TimeValue plus a
// cross-day flag. Spreadsheet exports inject stray punctuation around the
// numeric part ("04:33?¹", "?05:45"); everything but digits and the colon
// is stripped before matching.
func ParseTimeToken(raw string, row int) (TimeValue, bool, error) {
	crossDay := false
	cleaned := raw
	for _, marker := range crossDayMarkers {
		if strings.Contains(cleaned, marker) {
			crossDay = true
			cleaned = strings.ReplaceAll(cleaned, marker, "")
		}
	}

	cleaned = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ':' {
			return r
		}
		return -1
	}, cleaned)

	match := timePattern.FindStringSubmatch(cleaned)
	if match == nil {
		return TimeValue{}, false, &TimeFormatError{Token: raw, Row: row}
	}

	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return TimeValue{}, false, &TimeFormatError{Token: raw, Row: row}
	}

	return NewTimeValue(hours, minutes), crossDay, nil
}

// Duration returns the elapsed hours between report and debrief. A day is
// added when the debrief carries a cross-day marker, or when the debrief is
// numerically earlier than the report with no marker present: exports of
// overnight duties occasionally lose the superscript, and a duty can never
// end before it starts within one day.
func Duration(report, debrief TimeValue, crossDay bool) float64 {
	minutes := debrief.TotalMinutes - report.TotalMinutes
	if crossDay || minutes < 0 {
		minutes += MinutesPerDay
	}
	if minutes < 0 {
		minutes = 0
	}
	return float64(minutes) / 60.0
}
