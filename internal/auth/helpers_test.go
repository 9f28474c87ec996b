package auth

import (
	"context"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/dbtest"
)

// fastVerifier keeps Argon2id cheap in tests.
var fastVerifier = &Argon2Verifier{Time: 1, Memory: 8 * 1024, Threads: 1}

type testRepos struct {
	db    *database.Manager
	roles *SQLRoleRepository
	users *SQLUserRepository
}

// newTestRepos returns repositories on a migrated database with the
// default roles seeded.
func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	db := dbtest.New(t)
	roles := NewRoleRepository(db)
	if _, err := SeedRoles(context.Background(), roles); err != nil {
		t.Fatalf("SeedRoles() error = %v", err)
	}
	return testRepos{db: db, roles: roles, users: NewUserRepository(db, roles, fastVerifier)}
}

// insertUser stores a user with a hashed password and the given role.
func insertUser(t *testing.T, r testRepos, email, password, name string, roleID int64) *User {
	t.Helper()
	ctx := context.Background()

	role, err := r.roles.GetByID(ctx, roleID)
	if err != nil {
		t.Fatalf("GetByID(%d) error = %v", roleID, err)
	}
	hash, err := fastVerifier.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	u := &User{Email: email, Password: hash, Name: name, Role: role}
	if err := r.users.Insert(ctx, u); err != nil {
		t.Fatalf("Insert(%s) error = %v", email, err)
	}
	return u
}
