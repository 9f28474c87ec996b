package device

import "errors"

// Domain errors for the device package.
var (
	// ErrDeviceNotFound is returned when a device ID does not exist or the
	// device cannot be fully loaded.
	ErrDeviceNotFound = errors.New("device: device not found")

	// ErrStateNotFound is returned when a state ID does not exist.
	ErrStateNotFound = errors.New("device: state not found")

	// ErrDeviceTypeNotFound is returned when a device type ID does not exist.
	ErrDeviceTypeNotFound = errors.New("device: device type not found")

	// ErrInvalidReference is returned when a device points at a missing
	// state, type, location or home.
	ErrInvalidReference = errors.New("device: invalid reference")

	// ErrInUse is returned when deleting a state or type that devices use.
	ErrInUse = errors.New("device: still referenced")

	// ErrLocationMismatch is returned when a location belongs to another home.
	ErrLocationMismatch = errors.New("device: location does not belong to home")

	// ErrNoChanges is returned by Update when nothing would change.
	ErrNoChanges = errors.New("device: no changes to apply")
)
