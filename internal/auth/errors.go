package auth

import "errors"

// Domain errors for the auth package.
var (
	// ErrUserNotFound is returned when no user has the given email.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrRoleNotFound is returned when a role id does not exist.
	ErrRoleNotFound = errors.New("auth: role not found")

	// ErrEmailExists is returned when registering an email already in use.
	ErrEmailExists = errors.New("auth: email already registered")

	// ErrRoleExists is returned when creating a role whose name is taken.
	ErrRoleExists = errors.New("auth: role already exists")

	// ErrInvalidReference is returned when a user points at a missing role.
	ErrInvalidReference = errors.New("auth: invalid reference")

	// ErrInUse is returned when deleting a role that users still hold.
	ErrInUse = errors.New("auth: still referenced")

	// ErrInvalidCredentials is returned when the password does not match.
	// It is distinct from ErrUserNotFound.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrNotLoggedIn is returned by operations that need a current session.
	ErrNotLoggedIn = errors.New("auth: no active session")

	// ErrSessionNotFound is returned when a session token is unknown or expired.
	ErrSessionNotFound = errors.New("auth: session not found")

	// ErrInvalidHash is returned when a stored password hash cannot be parsed.
	ErrInvalidHash = errors.New("auth: invalid password hash")
)
