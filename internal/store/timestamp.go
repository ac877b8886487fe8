package store

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the form SQLite's CURRENT_TIMESTAMP writes and
// datetime() reads back.
const TimestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	TimestampLayout,
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseTimestamp accepts a date, a SQLite datetime or an RFC3339 value.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrInvalid, raw)
}

// normalizeTimestamp rewrites raw in TimestampLayout so ORDER BY
// datetime(...) never sees a NULL.
func normalizeTimestamp(raw string) (string, error) {
	t, err := ParseTimestamp(raw)
	if err != nil {
		return "", err
	}
	return t.Format(TimestampLayout), nil
}
