package models

import (
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date used for workout dates.
// Lexicographic order of these strings is chronological order.
const DateLayout = "2006-01-02"

// FormatDate renders t as a workout date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate validates a workout date string and returns it trimmed.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", ErrInvalidDate
	}
	return s, nil
}
