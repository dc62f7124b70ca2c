package dateutil

import (
	"fmt"
	"time"
)

const DayFormat = "2006-01-02"

// Day truncates a timestamp to its calendar day in UTC. Habit log entries are
// keyed by calendar day with no time component.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatDay(t time.Time) string {
	return Day(t).Format(DayFormat)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", s, err)
	}

	return t, nil
}

func PrevDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, -1)
}

func NextDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1)
}

// DaysBetween returns the number of whole calendar days from a to b. It is
// negative if b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}
