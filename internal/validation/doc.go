// Package validation checks user input before it reaches a repository.
//
// Every validator returns a Result rather than an error so callers can show
// the reason directly; Result.Err converts a failure into an error wrapping
// ErrInvalid for code that prefers errors.Is.
package validation
