package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/dbtest"
	"github.com/nerrad567/smarthome-core/internal/location"
)

type fixture struct {
	db          *database.Manager
	homes       *location.SQLHomeRepository
	automations *SQLRepository
	home        *location.Home
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{db: db, homes: location.NewHomeRepository(db)}
	f.automations = NewRepository(db, f.homes)

	f.home = &location.Home{Name: "Test House"}
	if err := f.homes.Insert(context.Background(), f.home); err != nil {
		t.Fatalf("Insert(home) error = %v", err)
	}
	return f
}

func (f *fixture) add(t *testing.T, name string, active bool, home *location.Home) *Automation {
	t.Helper()
	a := &Automation{Name: name, Description: "Runs every evening at dusk", Active: active, Home: home}
	if err := f.automations.Insert(context.Background(), a); err != nil {
		t.Fatalf("Insert(%s) error = %v", name, err)
	}
	return a
}

func TestRepository_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.add(t, "Evening Lights", true, f.home)

	if a.ID == 0 {
		t.Fatal("Insert() did not assign an ID")
	}
	got, err := f.automations.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Evening Lights" || !got.Active || got.HomeID() != f.home.ID {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.Home.Name != "Test House" {
		t.Errorf("Home.Name = %q, want hydrated home", got.Home.Name)
	}

	got.Name = "Night Lights"
	got.Description = "Runs every night at midnight"
	if err := f.automations.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := f.automations.SetActive(ctx, a.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	got, _ = f.automations.GetByID(ctx, a.ID) //nolint:errcheck // Checked below
	if got == nil || got.Name != "Night Lights" || got.Active {
		t.Errorf("after Update and SetActive = %+v", got)
	}

	if err := f.automations.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := dbtest.Count(t, f.db, "automation"); n != 0 {
		t.Errorf("automation rows = %d, want 0", n)
	}
}

func TestRepository_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.automations.GetByID(ctx, 99); !errors.Is(err, ErrAutomationNotFound) {
		t.Errorf("GetByID() error = %v, want ErrAutomationNotFound", err)
	}
	if err := f.automations.Update(ctx, &Automation{ID: 99, Name: "x", Home: f.home}); !errors.Is(err, ErrAutomationNotFound) {
		t.Errorf("Update() error = %v, want ErrAutomationNotFound", err)
	}
	if err := f.automations.SetActive(ctx, 99, true); !errors.Is(err, ErrAutomationNotFound) {
		t.Errorf("SetActive() error = %v, want ErrAutomationNotFound", err)
	}
	if err := f.automations.Delete(ctx, 99); !errors.Is(err, ErrAutomationNotFound) {
		t.Errorf("Delete() error = %v, want ErrAutomationNotFound", err)
	}
}

func TestRepository_InsertInvalidHome(t *testing.T) {
	f := newFixture(t)

	a := &Automation{Name: "Ghost", Description: "Belongs to nobody at all", Home: &location.Home{ID: 42}}
	if err := f.automations.Insert(context.Background(), a); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Insert() error = %v, want ErrInvalidReference", err)
	}
}

func TestRepository_Listings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &location.Home{Name: "Beach House"}
	if err := f.homes.Insert(ctx, other); err != nil {
		t.Fatalf("Insert(home) error = %v", err)
	}
	f.add(t, "Morning", true, f.home)
	f.add(t, "Vacation", false, f.home)
	f.add(t, "Sprinklers", true, other)

	tests := []struct {
		name string
		list func() ([]Automation, error)
		want int
	}{
		{"all", func() ([]Automation, error) { return f.automations.List(ctx) }, 3},
		{"by home", func() ([]Automation, error) { return f.automations.ListByHome(ctx, f.home.ID) }, 2},
		{"active in home", func() ([]Automation, error) { return f.automations.ListActive(ctx, f.home.ID) }, 1},
		{"active in other", func() ([]Automation, error) { return f.automations.ListActive(ctx, other.ID) }, 1},
		{"unknown home", func() ([]Automation, error) { return f.automations.ListByHome(ctx, 99) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.list()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got == nil {
				t.Fatal("list should be empty, not nil")
			}
			if len(got) != tt.want {
				t.Errorf("got %d automations, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRepository_SkipsUnloadable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doomed := &location.Home{Name: "Doomed House"}
	if err := f.homes.Insert(ctx, doomed); err != nil {
		t.Fatalf("Insert(home) error = %v", err)
	}
	keep := f.add(t, "Kept", true, f.home)
	orphan := f.add(t, "Orphan", true, doomed)

	dbtest.Exec(t, f.db, "PRAGMA foreign_keys = OFF")
	dbtest.Exec(t, f.db, "DELETE FROM home WHERE id = ?", doomed.ID)

	list, err := f.automations.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Errorf("List() = %+v, want only %d", list, keep.ID)
	}
	if _, err := f.automations.GetByID(ctx, orphan.ID); !errors.Is(err, ErrAutomationNotFound) {
		t.Errorf("GetByID(orphan) error = %v, want ErrAutomationNotFound", err)
	}
}

func TestRepository_HomeInUse(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Evening Lights", true, f.home)

	if err := f.homes.Delete(context.Background(), f.home.ID); !errors.Is(err, location.ErrInUse) {
		t.Errorf("Delete(home) error = %v, want location.ErrInUse", err)
	}
}
