package event

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/dbtest"
	"github.com/nerrad567/smarthome-core/internal/location"
)

type fixture struct {
	db      *database.Manager
	repo    *SQLRepository
	devices *device.SQLRepository
	lamp    *device.Device
	fan     *device.Device
	ana     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.New(t)

	homes := location.NewHomeRepository(db)
	locs := location.NewLocationRepository(db, homes)
	states := device.NewStateRepository(db)
	types := device.NewTypeRepository(db)
	devices := device.NewRepository(db, device.NewResolver(states, types, locs, homes))
	roles := auth.NewRoleRepository(db)
	users := auth.NewUserRepository(db, roles, auth.NewArgon2Verifier())

	if _, err := device.SeedCatalog(ctx, states, types); err != nil {
		t.Fatalf("SeedCatalog() error = %v", err)
	}
	if _, err := auth.SeedRoles(ctx, roles); err != nil {
		t.Fatalf("SeedRoles() error = %v", err)
	}
	dbtest.Exec(t, db, `INSERT INTO "user" (email, password, name, role_id) VALUES ('ana@example.com', 'x', 'Ana', 2)`)

	home := &location.Home{Name: "Test House"}
	if err := homes.Insert(ctx, home); err != nil {
		t.Fatalf("Insert(home) error = %v", err)
	}
	room := &location.Location{Name: "Living Room", Home: home}
	if err := locs.Insert(ctx, room); err != nil {
		t.Fatalf("Insert(location) error = %v", err)
	}
	on, _ := states.GetByID(ctx, 1)
	typ, _ := types.GetByID(ctx, 1)

	f := &fixture{
		db:      db,
		repo:    NewRepository(db, NewResolver(devices, users)),
		devices: devices,
		ana:     "ana@example.com",
	}
	for _, name := range []string{"Lamp", "Fan"} {
		d := &device.Device{Name: name, State: on, Type: typ, Location: room, Home: home}
		if err := devices.Insert(ctx, d); err != nil {
			t.Fatalf("Insert(%s) error = %v", name, err)
		}
		if name == "Lamp" {
			f.lamp = d
		} else {
			f.fan = d
		}
	}
	return f
}

func (f *fixture) insert(t *testing.T, e *Event) *Event {
	t.Helper()
	if err := f.repo.Insert(context.Background(), e); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	return e
}

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestRepository_RoundTrip(t *testing.T) {
	f := newFixture(t)
	e := f.insert(t, &Event{
		Time:        base,
		Description: "Lamp switched on",
		Source:      SourceManual,
		Device:      f.lamp,
		User:        &auth.User{Email: f.ana},
	})

	got, err := f.repo.GetByID(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Time.Equal(base) || got.Description != e.Description || got.Source != SourceManual {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.Device == nil || got.Device.Name != "Lamp" {
		t.Errorf("Device = %+v, want Lamp", got.Device)
	}
	if got.User == nil || got.User.Name != "Ana" {
		t.Errorf("User = %+v, want Ana", got.User)
	}

	want := "[2026-03-01 08:00:00] Lamp switched on | User: ana@example.com | Device: Lamp | Source: manual"
	if line := got.LogLine(); line != want {
		t.Errorf("LogLine() = %q, want %q", line, want)
	}
}

func TestRepository_OptionalRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.insert(t, &Event{Time: base, Description: "Backup finished"})

	got, err := f.repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Device != nil || got.User != nil || got.Source != SourceSystem {
		t.Errorf("GetByID() = %+v, want system event without relations", got)
	}
	if !strings.Contains(got.LogLine(), "User: System | Device: N/A") {
		t.Errorf("LogLine() = %q", got.LogLine())
	}

	// Deleting the device clears the reference but keeps the event.
	withDevice := f.insert(t, &Event{Time: base, Description: "Fan on", Device: f.fan})
	if err := f.devices.Delete(ctx, f.fan.ID); err != nil {
		t.Fatalf("Delete(device) error = %v", err)
	}
	got, err = f.repo.GetByID(ctx, withDevice.ID)
	if err != nil {
		t.Fatalf("GetByID() after device delete error = %v", err)
	}
	if got.Device != nil {
		t.Errorf("Device = %+v, want nil after delete", got.Device)
	}
}

func TestRepository_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.insert(t, &Event{Time: base, Description: "Lamp switched on", Device: f.lamp})

	e.Time = base.Add(time.Hour)
	e.Description = "Fan switched on"
	e.Device = f.fan
	e.User = &auth.User{Email: f.ana}
	e.Source = SourceManual
	if err := f.repo.Update(ctx, e); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := f.repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Time.Equal(base.Add(time.Hour)) || got.Description != "Fan switched on" || got.Source != SourceManual {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.Device == nil || got.Device.Name != "Fan" {
		t.Errorf("Device = %+v, want Fan", got.Device)
	}
	if got.User == nil || got.User.Email != f.ana {
		t.Errorf("User = %+v, want %s", got.User, f.ana)
	}

	// Clearing both references leaves a system event.
	got.Device, got.User, got.Source = nil, nil, ""
	if err := f.repo.Update(ctx, got); err != nil {
		t.Fatalf("Update() clearing references error = %v", err)
	}
	got, err = f.repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Device != nil || got.User != nil || got.Source != SourceSystem {
		t.Errorf("GetByID() = %+v, want system event without relations", got)
	}
}

func TestRepository_UpdateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := &Event{ID: 999999, Time: base, Description: "gone"}
	if err := f.repo.Update(ctx, missing); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrEventNotFound", err)
	}

	e := f.insert(t, &Event{Time: base, Description: "Lamp switched on", Device: f.lamp})
	e.Device = &device.Device{ID: 999}
	if err := f.repo.Update(ctx, e); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Update(bad device) error = %v, want ErrInvalidReference", err)
	}
}

func TestRepository_InsertInvalidReference(t *testing.T) {
	f := newFixture(t)
	err := f.repo.Insert(context.Background(), &Event{Description: "x", Device: &device.Device{ID: 999}})
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Insert() error = %v, want ErrInvalidReference", err)
	}
}

func TestRepository_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.repo.GetByID(ctx, 999999)
	if !errors.Is(err, ErrEventNotFound) || e != nil {
		t.Errorf("GetByID() = (%v, %v), want (nil, ErrEventNotFound)", e, err)
	}
	if err := f.repo.Delete(ctx, 999999); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Delete() error = %v, want ErrEventNotFound", err)
	}
}

func TestRepository_Listings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := &auth.User{Email: f.ana}
	for i := range 6 {
		e := &Event{Time: base.Add(time.Duration(i) * time.Hour), Description: "tick"}
		if i%2 == 0 {
			e.Device = f.lamp
		} else {
			e.User = user
			e.Source = SourceManual
		}
		f.insert(t, e)
	}

	tests := []struct {
		name      string
		fn        func() ([]Event, error)
		wantCount int
		wantFirst time.Time
	}{
		{"recent", func() ([]Event, error) { return f.repo.ListRecent(ctx, 0) }, 6, base.Add(5 * time.Hour)},
		{"recent limited", func() ([]Event, error) { return f.repo.ListRecent(ctx, 2) }, 2, base.Add(5 * time.Hour)},
		{"by device", func() ([]Event, error) { return f.repo.ListByDevice(ctx, f.lamp.ID, 0) }, 3, base.Add(4 * time.Hour)},
		{"by user", func() ([]Event, error) { return f.repo.ListByUser(ctx, f.ana, 1) }, 1, base.Add(5 * time.Hour)},
		{"date range", func() ([]Event, error) {
			return f.repo.ListByDateRange(ctx, base.Add(time.Hour), base.Add(3*time.Hour), 0)
		}, 3, base.Add(3 * time.Hour)},
		{"all", func() ([]Event, error) { return f.repo.List(ctx) }, 6, base.Add(5 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("got %d events, want %d", len(got), tt.wantCount)
			}
			if !got[0].Time.Equal(tt.wantFirst) {
				t.Errorf("first event at %v, want %v (newest first)", got[0].Time, tt.wantFirst)
			}
		})
	}

	if _, err := f.repo.ListByDateRange(ctx, time.Time{}, base, 0); err == nil {
		t.Error("ListByDateRange() without start should fail")
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit, def, want int
	}{
		{0, DefaultDeviceLimit, 50},
		{-5, DefaultRecentLimit, 100},
		{20, DefaultRecentLimit, 20},
		{5000, DefaultRecentLimit, MaxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.limit, tt.def); got != tt.want {
			t.Errorf("clampLimit(%d, %d) = %d, want %d", tt.limit, tt.def, got, tt.want)
		}
	}
}
