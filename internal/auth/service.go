package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nerrad567/smarthome-core/internal/outcome"
	"github.com/nerrad567/smarthome-core/internal/validation"
)

// Service handles registration, login and account administration.
// It remembers the user of the current session.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Service struct {
	users         UserRepository
	roles         RoleRepository
	sessions      SessionStore
	verifier      CredentialVerifier
	defaultRoleID int64
	logger        Logger

	mu      sync.RWMutex
	current *User
	session *Session
}

// NewService creates an account service. defaultRoleID is assigned to
// self-registered users.
func NewService(users UserRepository, roles RoleRepository, sessions SessionStore, verifier CredentialVerifier, defaultRoleID int64) *Service {
	return &Service{
		users:         users,
		roles:         roles,
		sessions:      sessions,
		verifier:      verifier,
		defaultRoleID: defaultRoleID,
		logger:        noopLogger{},
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Register creates a standard account.
func (s *Service) Register(ctx context.Context, email, password, name string) outcome.Outcome {
	if r := validation.Registration(email, password, name); !r.Valid {
		return outcome.Failure(r.Err(), r.Reason)
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return outcome.Failure(ErrEmailExists, "email is already registered")
	case !errors.Is(err, ErrUserNotFound):
		s.logger.Error("checking email during registration", "email", email, "error", err)
		return outcome.Failure(err, "could not register user")
	}

	role, err := s.roles.GetByID(ctx, s.defaultRoleID)
	if err != nil {
		s.logger.Error("default role unavailable", "role_id", s.defaultRoleID, "error", err)
		return outcome.Failure(ErrRoleNotFound, "default role not found")
	}

	hash, err := s.verifier.Hash(password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		return outcome.Failure(err, "could not register user")
	}

	user := &User{Email: email, Password: hash, Name: strings.TrimSpace(name), Role: role}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return outcome.Failure(err, "email is already registered")
		}
		s.logger.Error("inserting user", "email", email, "error", err)
		return outcome.Failure(err, "could not register user")
	}

	s.logger.Info("user registered", "email", user.Email, "role", role.Name)
	return outcome.Success("user registered successfully")
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords give the same message.
func (s *Service) Login(ctx context.Context, email, password string) outcome.Outcome {
	if r := validation.Login(email, password); !r.Valid {
		return outcome.Failure(r.Err(), r.Reason)
	}

	user, err := s.users.ValidateCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("failed login", "email", email)
			return outcome.Failure(ErrInvalidCredentials, "invalid credentials")
		}
		s.logger.Error("validating credentials", "email", email, "error", err)
		return outcome.Failure(err, "could not log in")
	}

	session, err := s.sessions.Create(ctx, user.Email)
	if err != nil {
		s.logger.Error("opening session", "email", user.Email, "error", err)
		return outcome.Failure(err, "could not log in")
	}

	s.setCurrent(user, session)
	s.logger.Info("user logged in", "email", user.Email)
	return outcome.Successf("Welcome %s!", user.Name)
}

// Resume restores the session identified by token.
func (s *Service) Resume(ctx context.Context, token string) outcome.Outcome {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return outcome.Failure(err, "session expired, please log in again")
		}
		s.logger.Error("reading session", "error", err)
		return outcome.Failure(err, "could not resume session")
	}

	user, err := s.users.GetByEmail(ctx, session.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.sessions.Delete(ctx, token) //nolint:errcheck // Stale session cleanup
			return outcome.Failure(err, "user no longer exists")
		}
		s.logger.Error("loading session user", "email", session.Email, "error", err)
		return outcome.Failure(err, "could not resume session")
	}

	s.setCurrent(user, session)
	return outcome.Successf("Welcome back %s!", user.Name)
}

// Logout closes the current session. It is a no-op without one.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	session := s.session
	s.current, s.session = nil, nil
	s.mu.Unlock()

	if session == nil {
		return nil
	}
	return s.sessions.Delete(ctx, session.Token)
}

func (s *Service) setCurrent(user *User, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current, s.session = user, session
}

// CurrentUser returns the logged-in user, or nil.
func (s *Service) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// CurrentSession returns the open session, or nil.
func (s *Service) CurrentSession() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// IsAdmin reports whether the logged-in user is an administrator.
func (s *Service) IsAdmin() bool {
	return s.CurrentUser().IsAdmin()
}

// CurrentUserInfo summarises the logged-in user. ok is false without a session.
func (s *Service) CurrentUserInfo() (info UserInfo, ok bool) {
	u := s.CurrentUser()
	if u == nil {
		return UserInfo{}, false
	}
	info = UserInfo{Email: u.Email, Name: u.Name}
	if u.Role != nil {
		info.Role = u.Role.Name
	}
	return info, true
}

// ChangeRole assigns roleID to the user with email. Both must exist.
func (s *Service) ChangeRole(ctx context.Context, email string, roleID int64) outcome.Outcome {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return outcome.Failure(err, "user not found")
		}
		s.logger.Error("loading user", "email", email, "error", err)
		return outcome.Failure(err, "could not change role")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return outcome.Failure(err, "invalid role")
		}
		s.logger.Error("loading role", "role_id", roleID, "error", err)
		return outcome.Failure(err, "could not change role")
	}

	if err := s.users.ChangeRole(ctx, user.Email, role.ID); err != nil {
		s.logger.Error("changing role", "email", user.Email, "role_id", role.ID, "error", err)
		return outcome.Failure(err, "could not change role")
	}

	s.mu.Lock()
	if s.current != nil && s.current.Email == user.Email {
		s.current.Role = role
	}
	s.mu.Unlock()

	s.logger.Info("role changed", "email", user.Email, "role", role.Name)
	return outcome.Successf("role changed to %s", role.Name)
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, email, current, next string) outcome.Outcome {
	if r := validation.Password(next); !r.Valid {
		return outcome.Failure(r.Err(), r.Reason)
	}

	if _, err := s.users.ValidateCredentials(ctx, email, current); err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUserNotFound) {
			return outcome.Failure(ErrInvalidCredentials, "current password is incorrect")
		}
		s.logger.Error("validating credentials", "email", email, "error", err)
		return outcome.Failure(err, "could not change password")
	}

	hash, err := s.verifier.Hash(next)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		return outcome.Failure(err, "could not change password")
	}
	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		s.logger.Error("updating password", "email", email, "error", err)
		return outcome.Failure(err, "could not change password")
	}

	s.logger.Info("password changed", "email", email)
	return outcome.Success("password changed")
}

// ListRoles returns all roles, or an empty slice after logging a failure.
func (s *Service) ListRoles(ctx context.Context) []Role {
	roles, err := s.roles.List(ctx)
	if err != nil {
		s.logger.Error("listing roles", "error", err)
		return []Role{}
	}
	return roles
}

// ListUsers returns all users, or an empty slice after logging a failure.
func (s *Service) ListUsers(ctx context.Context) []User {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("listing users", "error", err)
		return []User{}
	}
	return users
}
