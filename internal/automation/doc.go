// Package automation manages the automations configured for each home.
//
// An automation is a named, described rule attached to one home. It is
// either active or inactive:
//
//	          Activate
//	Inactive ─────────▶ Active
//	         ◀─────────
//	          Deactivate
//
// Requesting the transition an automation is already in is rejected with
// ErrAlreadyActive or ErrAlreadyInactive. Successful transitions are
// recorded in the event log when the Service has an EventRecorder.
//
// # Key Types
//
//   - Automation: the entity, with its owning Home loaded
//   - Repository: persistence, implemented by SQLRepository
//   - Service: validation, transitions and per-home summaries
package automation
