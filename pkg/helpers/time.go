package helpers

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted from clients.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp.
// Calendar dates are interpreted as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
