package location

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/dbtest"
)

func newRepos(t *testing.T) (*database.Manager, *SQLHomeRepository, *SQLLocationRepository) {
	t.Helper()
	db := dbtest.New(t)
	homes := NewHomeRepository(db)
	return db, homes, NewLocationRepository(db, homes)
}

func mustInsertHome(t *testing.T, repo *SQLHomeRepository, name string) *Home {
	t.Helper()
	h := &Home{Name: name}
	if err := repo.Insert(context.Background(), h); err != nil {
		t.Fatalf("Insert(%s) error = %v", name, err)
	}
	return h
}

// seedUser inserts a user row directly, with a role to satisfy the schema.
func seedUser(t *testing.T, db *database.Manager, email string) {
	t.Helper()
	dbtest.Exec(t, db, "INSERT OR IGNORE INTO role (name) VALUES ('standard')")
	dbtest.Exec(t, db, `INSERT INTO "user" (email, password, name, role_id)
		VALUES (?, 'x', 'Test', (SELECT id FROM role WHERE name = 'standard'))`, email)
}

func TestHomeRepository_RoundTrip(t *testing.T) {
	_, homes, _ := newRepos(t)
	ctx := context.Background()

	h := mustInsertHome(t, homes, "Test House")
	if h.ID == 0 {
		t.Fatal("Insert() should assign an ID")
	}

	got, err := homes.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if *got != *h {
		t.Errorf("GetByID() = %+v, want %+v", got, h)
	}

	h.Name = "Beach House"
	if err := homes.Update(ctx, h); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ = homes.GetByID(ctx, h.ID)
	if got.Name != "Beach House" {
		t.Errorf("Name after update = %q, want Beach House", got.Name)
	}

	if err := homes.Delete(ctx, h.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err = homes.GetByID(ctx, h.ID)
	if !errors.Is(err, ErrHomeNotFound) || got != nil {
		t.Errorf("GetByID() after delete = (%v, %v), want (nil, ErrHomeNotFound)", got, err)
	}
}

func TestHomeRepository_NotFound(t *testing.T) {
	_, homes, _ := newRepos(t)
	ctx := context.Background()

	if err := homes.Update(ctx, &Home{ID: 999999, Name: "Ghost"}); !errors.Is(err, ErrHomeNotFound) {
		t.Errorf("Update() error = %v, want ErrHomeNotFound", err)
	}
	if err := homes.Delete(ctx, 999999); !errors.Is(err, ErrHomeNotFound) {
		t.Errorf("Delete() error = %v, want ErrHomeNotFound", err)
	}
}

func TestHomeRepository_DeleteInUse(t *testing.T) {
	_, homes, locs := newRepos(t)
	ctx := context.Background()
	h := mustInsertHome(t, homes, "Test House")
	if err := locs.Insert(ctx, &Location{Name: "Kitchen", Home: h}); err != nil {
		t.Fatalf("Insert(location) error = %v", err)
	}

	if err := homes.Delete(ctx, h.ID); !errors.Is(err, ErrInUse) {
		t.Errorf("Delete() error = %v, want ErrInUse", err)
	}
}

func TestHomeRepository_Members(t *testing.T) {
	db, homes, _ := newRepos(t)
	ctx := context.Background()
	seedUser(t, db, "ana@example.com")
	a := mustInsertHome(t, homes, "City Flat")
	b := mustInsertHome(t, homes, "Country House")
	mustInsertHome(t, homes, "Not Mine")

	for _, h := range []*Home{a, b, a} {
		if err := homes.AddMember(ctx, h.ID, "ana@example.com"); err != nil {
			t.Fatalf("AddMember(%d) error = %v", h.ID, err)
		}
	}

	got, err := homes.ListByUser(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Errorf("ListByUser() = %+v, want [%d %d]", got, a.ID, b.ID)
	}

	if err := homes.AddMember(ctx, a.ID, "nobody@example.com"); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("AddMember(unknown user) error = %v, want ErrInvalidReference", err)
	}

	if err := homes.RemoveMember(ctx, a.ID, "ana@example.com"); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if err := homes.RemoveMember(ctx, a.ID, "ana@example.com"); !errors.Is(err, ErrNotMember) {
		t.Errorf("second RemoveMember() error = %v, want ErrNotMember", err)
	}

	// Deleting a home drops its memberships.
	if err := homes.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := dbtest.Count(t, db, "user_home"); n != 0 {
		t.Errorf("user_home rows = %d, want 0", n)
	}

	none, err := homes.ListByUser(ctx, "nobody@example.com")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("ListByUser(nobody) = (%#v, %v), want empty slice", none, err)
	}
}

func TestLocationRepository_RoundTrip(t *testing.T) {
	_, homes, locs := newRepos(t)
	ctx := context.Background()
	h := mustInsertHome(t, homes, "Test House")

	loc := &Location{Name: "Living Room", Home: h}
	if err := locs.Insert(ctx, loc); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := locs.GetByID(ctx, loc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Living Room" || got.HomeID() != h.ID || got.Home.Name != "Test House" {
		t.Errorf("GetByID() = %+v (home %+v)", got, got.Home)
	}

	other := mustInsertHome(t, homes, "Second House")
	loc.Name = "Lounge"
	loc.Home = other
	if err := locs.Update(ctx, loc); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	byHome, err := locs.ListByHome(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListByHome() error = %v", err)
	}
	if len(byHome) != 1 || byHome[0].Name != "Lounge" {
		t.Errorf("ListByHome() = %+v, want [Lounge]", byHome)
	}

	if err := locs.Delete(ctx, loc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := locs.Delete(ctx, loc.ID); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("second Delete() error = %v, want ErrLocationNotFound", err)
	}
}

func TestLocationRepository_InvalidHome(t *testing.T) {
	_, _, locs := newRepos(t)

	err := locs.Insert(context.Background(), &Location{Name: "Attic", Home: &Home{ID: 999}})
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Insert() error = %v, want ErrInvalidReference", err)
	}
	if _, err := locs.GetByID(context.Background(), 999999); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("GetByID() error = %v, want ErrLocationNotFound", err)
	}
}

func TestLocationRepository_SkipsUnloadable(t *testing.T) {
	db, homes, locs := newRepos(t)
	ctx := context.Background()
	keep := mustInsertHome(t, homes, "Kept")
	gone := mustInsertHome(t, homes, "Gone")
	for _, l := range []*Location{{Name: "Hall", Home: keep}, {Name: "Porch", Home: gone}} {
		if err := locs.Insert(ctx, l); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	dbtest.Exec(t, db, "PRAGMA foreign_keys = OFF")
	dbtest.Exec(t, db, "DELETE FROM home WHERE id = ?", gone.ID)

	list, err := locs.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "Hall" {
		t.Errorf("List() = %+v, want only Hall", list)
	}
}
