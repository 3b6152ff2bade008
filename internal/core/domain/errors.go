package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCoordinate is returned when a distance is requested for an
	// endpoint without a resolved location.
	ErrMissingCoordinate = errors.New("missing coordinate")

	// ErrInsufficientData marks inputs that only admit a trivial result, such
	// as a tour with fewer than two located stops or no confirmed anchors.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownStatus is returned when a status string cannot be parsed.
	ErrUnknownStatus = errors.New("unknown booking status")

	// ErrStaleStatus is returned when a stop's status changed between read
	// and write.
	ErrStaleStatus = errors.New("stop status changed concurrently")
)

// InvalidTransitionError is returned when a requested status change is not an
// edge of the booking state machine.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("invalid status transition %s -> %s: %s is terminal", e.From, e.To, e.From)
	}
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
