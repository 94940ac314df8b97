package event

import (
	"fmt"
	"time"
)

// apiTimestampLayout matches BCP API timestamps: UTC with milliseconds and
// a Z suffix, e.g. "2024-06-01T14:30:00.000Z".
const apiTimestampLayout = "2006-01-02T15:04:05.000Z"

// ParseAPITimestamp parses a BCP API timestamp into a UTC time.
func ParseAPITimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(apiTimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a timestamp as dd/mm/yyyy in the reference timezone.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006")
}

// FormatClock renders a timestamp as 12-hour wall-clock time in the
// reference timezone, minute precision, no leading zero on the hour
// ("2:30 PM", not "02:30 PM").
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("3:04 PM")
}
