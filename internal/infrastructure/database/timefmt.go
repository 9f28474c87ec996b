package database

import (
	"fmt"
	"time"
)

// TimeLayout is the storage format for timestamps. It is fixed-width UTC so
// lexical order matches chronological order on every dialect.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a value written by FormatTime. RFC 3339 is accepted for
// rows written by other tools.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	t, rfcErr := time.Parse(time.RFC3339Nano, s)
	if rfcErr != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
