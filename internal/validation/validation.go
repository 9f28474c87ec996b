package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalid is wrapped by Result.Err for every failed validation.
var ErrInvalid = errors.New("validation: invalid input")

// Length limits.
const (
	minEmailLength       = 5
	maxEmailLength       = 100
	minPasswordLength    = 6
	maxPasswordLength    = 50
	minStrongPassword    = 8
	minNameLength        = 2
	maxNameLength        = 100
	minDescriptionLength = 10
	maxDescriptionLength = 500
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ0-9\s.\-_]+$`)
)

// Result is the outcome of a validation: Valid, or a human-readable Reason.
type Result struct {
	Valid  bool
	Reason string
}

// OK is the passing Result.
var OK = Result{Valid: true}

func fail(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Err returns nil for a valid result, otherwise an error wrapping ErrInvalid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, r.Reason)
}

// Email requires 5 to 100 characters in user@domain.tld form.
func Email(email string) Result {
	email = strings.TrimSpace(email)
	switch n := utf8.RuneCountInString(email); {
	case n == 0:
		return fail("email is required")
	case n < minEmailLength:
		return fail("email is too short (minimum %d characters)", minEmailLength)
	case n > maxEmailLength:
		return fail("email is too long (maximum %d characters)", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fail("email must look like user@domain.com")
	}
	return OK
}

// Password requires 6 to 50 characters, not all whitespace.
func Password(password string) Result {
	if password == "" {
		return fail("password is required")
	}
	if strings.TrimSpace(password) == "" {
		return fail("password cannot be only whitespace")
	}
	switch n := utf8.RuneCountInString(password); {
	case n < minPasswordLength:
		return fail("password must be at least %d characters", minPasswordLength)
	case n > maxPasswordLength:
		return fail("password is too long (maximum %d characters)", maxPasswordLength)
	}
	return OK
}

// StrongPassword adds a minimum of 8 characters with at least one upper-case
// letter, one lower-case letter and one digit to the Password rules.
func StrongPassword(password string) Result {
	if r := Password(password); !r.Valid {
		return r
	}
	if utf8.RuneCountInString(password) < minStrongPassword {
		return fail("password must be at least %d characters", minStrongPassword)
	}

	var upper, lower, digit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	switch {
	case !upper:
		return fail("password must contain an upper-case letter")
	case !lower:
		return fail("password must contain a lower-case letter")
	case !digit:
		return fail("password must contain a digit")
	}
	return OK
}

// Name validates a display name for field (user, device, automation...).
// After trimming it must be 2 to 100 characters of letters, digits, spaces,
// dots, hyphens and underscores.
func Name(name, field string) Result {
	if field == "" {
		field = "name"
	}
	name = strings.TrimSpace(name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return fail("%s is required", field)
	case n < minNameLength:
		return fail("%s must be at least %d characters", field, minNameLength)
	case n > maxNameLength:
		return fail("%s is too long (maximum %d characters)", field, maxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return fail("%s contains characters that are not allowed", field)
	}
	return OK
}

// Description requires 10 to 500 characters after trimming.
func Description(description string) Result {
	description = strings.TrimSpace(description)
	switch n := utf8.RuneCountInString(description); {
	case n == 0:
		return fail("description is required")
	case n < minDescriptionLength:
		return fail("description must be at least %d characters", minDescriptionLength)
	case n > maxDescriptionLength:
		return fail("description is too long (maximum %d characters)", maxDescriptionLength)
	}
	return OK
}

// PositiveID requires id > 0.
func PositiveID(id int64, field string) Result {
	if field == "" {
		field = "id"
	}
	if id <= 0 {
		return fail("%s must be a positive number", field)
	}
	return OK
}

// Registration validates the fields of a new account in order.
func Registration(email, password, name string) Result {
	if r := Email(email); !r.Valid {
		return r
	}
	if r := Password(password); !r.Valid {
		return r
	}
	return Name(name, "full name")
}

// Login only checks presence; credential checks happen against the store.
func Login(email, password string) Result {
	if strings.TrimSpace(email) == "" {
		return fail("email is required")
	}
	if password == "" {
		return fail("password is required")
	}
	return OK
}
