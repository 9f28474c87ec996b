package automation

import "errors"

// Domain errors for the automation package.
var (
	// ErrAutomationNotFound is returned when an automation ID does not exist
	// or its home cannot be loaded.
	ErrAutomationNotFound = errors.New("automation: automation not found")

	// ErrAlreadyActive is returned when activating an active automation.
	ErrAlreadyActive = errors.New("automation: already active")

	// ErrAlreadyInactive is returned when deactivating an inactive automation.
	ErrAlreadyInactive = errors.New("automation: already inactive")

	// ErrInvalidReference is returned when an automation points at a missing home.
	ErrInvalidReference = errors.New("automation: invalid reference")

	// ErrNoChanges is returned by Update when nothing would change.
	ErrNoChanges = errors.New("automation: no changes to apply")
)
