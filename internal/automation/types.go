package automation

import "github.com/nerrad567/smarthome-core/internal/location"

// Automation is a rule attached to one home.
type Automation struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	Home        *location.Home
}

// HomeID returns the owning home's ID, or 0 when no home is set.
func (a *Automation) HomeID() int64 {
	if a.Home == nil {
		return 0
	}
	return a.Home.ID
}

// Status returns "active" or "inactive".
func (a *Automation) Status() string {
	if a.Active {
		return "active"
	}
	return "inactive"
}

// Activate marks the automation active.
// Returns ErrAlreadyActive if it already is.
func (a *Automation) Activate() error {
	if a.Active {
		return ErrAlreadyActive
	}
	a.Active = true
	return nil
}

// Deactivate marks the automation inactive.
// Returns ErrAlreadyInactive if it already is.
func (a *Automation) Deactivate() error {
	if !a.Active {
		return ErrAlreadyInactive
	}
	a.Active = false
	return nil
}

// Summary counts the automations of a home.
type Summary struct {
	Total    int `yaml:"total"`
	Active   int `yaml:"active"`
	Inactive int `yaml:"inactive"`
}
