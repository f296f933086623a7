package timecalc

import (
	"time"

	"github.com/google/uuid"
)

// GenerateID creates a unique entry ID.
func GenerateID() string {
	return uuid.NewString()
}

// NowMillis returns the current UTC time in milliseconds since epoch.
func NowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// FromMillis converts epoch milliseconds to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// MonthKey returns the UTC month bucket ("2006-01") for the given timestamp.
func MonthKey(ms int64) string {
	return FromMillis(ms).Format("2006-01")
}

// FormatUTC formats ms as "YYYY-MM-DD HH:MM:SS UTC".
func FormatUTC(ms int64) string {
	return FromMillis(ms).Format("2006-01-02 15:04:05 MST")
}

// StartOfMonth returns 00:00:00 UTC of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
