// Package outcome carries the result of a mutating service operation.
package outcome

import (
	"errors"
	"fmt"
)

// Outcome pairs a user-facing message with the error kind, if any.
// OK is true exactly when Err is nil.
type Outcome struct {
	OK      bool
	Message string
	Err     error
}

// Success returns a successful Outcome with msg.
func Success(msg string) Outcome {
	return Outcome{OK: true, Message: msg}
}

// Successf formats a successful Outcome.
func Successf(format string, args ...any) Outcome {
	return Success(fmt.Sprintf(format, args...))
}

// Failure returns a failed Outcome. err is kept for errors.Is checks and
// should be one of the package sentinels; msg is what the user sees.
func Failure(err error, msg string) Outcome {
	if err == nil {
		err = errors.New(msg)
	}
	return Outcome{Message: msg, Err: err}
}

// String renders the outcome for terminal output.
func (o Outcome) String() string {
	if o.OK {
		return "ok: " + o.Message
	}
	return "error: " + o.Message
}
