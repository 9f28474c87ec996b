package event

import "errors"

var (
	// ErrEventNotFound is returned when an event ID does not exist.
	ErrEventNotFound = errors.New("event: event not found")

	// ErrInvalidReference is returned when an event points at a device or
	// user that does not exist.
	ErrInvalidReference = errors.New("event: invalid reference")
)
