package auth

import (
	"context"
	"errors"
	"fmt"
)

// DefaultRoles are the roles every installation starts with, in id order.
var DefaultRoles = []string{RoleNameAdmin, "standard"}

// SeedRoles creates the default roles that do not exist yet. Roles are
// inserted in order so a fresh store assigns RoleIDAdmin and RoleIDStandard.
// Returns the number of roles created.
func SeedRoles(ctx context.Context, roles RoleRepository) (int, error) {
	created := 0
	for _, name := range DefaultRoles {
		_, err := roles.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrRoleNotFound) {
			return created, fmt.Errorf("checking role %s: %w", name, err)
		}
		if err := roles.Insert(ctx, &Role{Name: name}); err != nil {
			return created, fmt.Errorf("seeding role %s: %w", name, err)
		}
		created++
	}
	return created, nil
}

// AdminSeed describes the optional administrator account.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// SeedAdmin creates the administrator account unless the email is already
// registered. It reports whether an account was created.
func SeedAdmin(ctx context.Context, users UserRepository, roles RoleRepository, verifier CredentialVerifier, seed AdminSeed) (bool, error) {
	if _, err := users.GetByEmail(ctx, seed.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, fmt.Errorf("checking admin user: %w", err)
	}

	role, err := roles.GetByName(ctx, RoleNameAdmin)
	if err != nil {
		return false, fmt.Errorf("loading admin role: %w", err)
	}

	hash, err := verifier.Hash(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}

	user := &User{Email: seed.Email, Password: hash, Name: seed.Name, Role: role}
	if err := users.Insert(ctx, user); err != nil {
		return false, fmt.Errorf("creating admin user: %w", err)
	}
	return true, nil
}
