package ingest

import (
	"strings"
	"time"
)

// ParseBookedAt splits a "M/D/YYYY H:MM:SS AM" string into its date and
// time-of-day parts. A malformed input yields (nil, nil, false); the record
// is still stored, just with nulled date/time columns.
func ParseBookedAt(s string) (date, clock *time.Time, ok bool) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) < 3 {
		return nil, nil, false
	}

	d, err := time.Parse("1/2/2006", parts[0])
	if err != nil {
		return nil, nil, false
	}
	// the last two tokens carry the time and its meridiem
	t, err := time.Parse("3:04:05 PM", strings.Join(parts[len(parts)-2:], " "))
	if err != nil {
		return nil, nil, false
	}
	return &d, &t, true
}
