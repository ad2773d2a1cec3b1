package models

import (
	"fmt"
	"time"
)

const DateLayout = time.DateOnly

// ParseDueDate accepts either a calendar date or an RFC 3339 timestamp.
// Calendar dates are interpreted in loc.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: %w", s, err)
	}
	return t.In(loc), nil
}
