package service

import (
	"errors"
	"fmt"
)

var (
	// ErrIneligibleOrder means the order's status or settlement method
	// forbids amendment.
	ErrIneligibleOrder = errors.New("order not eligible for amendment")

	// ErrEmptySession means a commit was attempted with no working lines
	// left; an order must always keep at least one line.
	ErrEmptySession = errors.New("edit session has no remaining lines")

	// ErrConflict means the order changed since the session was seeded;
	// the caller must discard the session and reseed.
	ErrConflict = errors.New("order changed since session was opened")

	// ErrSessionNotFound means the edit session does not exist or expired.
	ErrSessionNotFound = errors.New("edit session not found")

	// ErrLineNotFound means the handle does not match a working line.
	ErrLineNotFound = errors.New("line not found in edit session")
)

// ValidationError reports a malformed mutation request, e.g. a missing
// acting-staff identity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
