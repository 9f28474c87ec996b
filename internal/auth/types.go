package auth

import (
	"strings"
	"time"
)

// Well-known role ids created by the seed.
const (
	RoleIDAdmin    int64 = 1
	RoleIDStandard int64 = 2
)

// RoleNameAdmin is the role name that grants administrative rights.
const RoleNameAdmin = "admin"

// Role is an authorisation tier.
type Role struct {
	ID   int64
	Name string
}

// User is an account. Email is the identity; Password holds the encoded
// hash, never the plaintext.
type User struct {
	Email    string
	Password string
	Name     string
	Role     *Role
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role != nil && strings.EqualFold(u.Role.Name, RoleNameAdmin)
}

// Session is a logged-in user's token.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// UserInfo is the display summary of the current user.
type UserInfo struct {
	Email string
	Name  string
	Role  string
}
