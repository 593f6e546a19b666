package utils

import (
	"fmt"
	"time"
)

// DateLayout es el formato de fecha aceptado en la API (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// TruncateToDay truncates a time to midnight UTC
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay retorna el último segundo del día UTC de t
func EndOfDay(t time.Time) time.Time {
	return TruncateToDay(t).Add(24*time.Hour - time.Second)
}

// GetDayKey returns a string key representing the UTC day for the given time
func GetDayKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate acepta YYYY-MM-DD o RFC3339
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t.UTC(), nil
}

// IsTimestampStale checks if a timestamp is older than the specified duration
func IsTimestampStale(timestamp time.Time, staleDuration time.Duration) bool {
	return time.Since(timestamp) > staleDuration
}

// YearsAgo returns the same instant the given number of years before now
func YearsAgo(now time.Time, years int) time.Time {
	return now.AddDate(-years, 0, 0)
}

// UnixSeconds convierte segundos epoch a time.Time UTC
func UnixSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
