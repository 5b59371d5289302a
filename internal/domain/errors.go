package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow rejects a date window whose start is after its end.
var ErrInvalidWindow = errors.New("start date must be <= end date")

// TransportError is returned once a fetch exhausted its retry budget.
type TransportError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a missing structural anchor in article markup.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}
