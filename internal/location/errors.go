package location

import "errors"

var (
	// ErrHomeNotFound is returned when a home ID does not exist.
	ErrHomeNotFound = errors.New("location: home not found")

	// ErrLocationNotFound is returned when a location ID does not exist.
	ErrLocationNotFound = errors.New("location: location not found")

	// ErrInvalidReference is returned when a location or membership points
	// at a home or user that does not exist.
	ErrInvalidReference = errors.New("location: invalid reference")

	// ErrInUse is returned when deleting a home or location that devices,
	// locations or automations still reference.
	ErrInUse = errors.New("location: still referenced")

	// ErrNotMember is returned when removing a user who is not linked to the home.
	ErrNotMember = errors.New("location: user is not a member of the home")
)
