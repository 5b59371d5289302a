package domain

import (
	"strings"
	"time"
)

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 value into a UTC instant.
// Values without an offset are read as UTC. Empty or malformed input yields nil.
func ParseInstant(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range instantLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

// SameInstant reports whether both values are absent or denote the same instant.
func SameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Window is an inclusive [Start, End] range.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates start <= end.
func NewWindow(start, end time.Time) (Window, error) {
	if start.After(end) {
		return Window{}, ErrInvalidWindow
	}
	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
