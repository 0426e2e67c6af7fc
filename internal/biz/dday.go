package biz

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// CalculateLabel returns D-n before the release, D-DAY on it and D+n after it.
// Both dates are compared on their calendar day; time of day is ignored.
func CalculateLabel(releaseDate, today time.Time) string {
	delta := DaysBetween(today, releaseDate)
	switch {
	case delta > 0:
		return fmt.Sprintf("D-%d", delta)
	case delta == 0:
		return "D-DAY"
	default:
		return fmt.Sprintf("D+%d", -delta)
	}
}

// DaysBetween counts whole calendar days from `from` to `to`. It works on day
// numbers rather than time.Duration, which saturates around 292 years.
func DaysBetween(from, to time.Time) int {
	return int(dayNumber(to) - dayNumber(from))
}

// dayNumber is the count of days since 1970-01-01 for t's calendar date.
// UTC midnight is an exact multiple of a day, so the division never truncates.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}
