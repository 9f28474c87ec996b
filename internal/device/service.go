package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/smarthome-core/internal/location"
	"github.com/nerrad567/smarthome-core/internal/outcome"
	"github.com/nerrad567/smarthome-core/internal/validation"
)

// Transactor runs fn in one transaction scope. *database.Manager implements it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventRecorder appends an entry to the event log.
type EventRecorder interface {
	Record(ctx context.Context, deviceID *int64, description string) error
}

// StateChange describes a stored device state change.
type StateChange struct {
	DeviceID   int64
	DeviceName string
	HomeID     int64
	State      string
	At         time.Time
}

// StateListener is notified after a device state change is stored.
type StateListener interface {
	DeviceStateChanged(ctx context.Context, change StateChange) error
}

// StateListenerFunc adapts a function to StateListener.
type StateListenerFunc func(ctx context.Context, change StateChange) error

// DeviceStateChanged calls f.
func (f StateListenerFunc) DeviceStateChanged(ctx context.Context, change StateChange) error {
	return f(ctx, change)
}

// Stores groups the repositories the Service depends on.
type Stores struct {
	Devices   Repository
	Types     TypeRepository
	States    StateRepository
	Locations location.LocationRepository
	Homes     location.HomeRepository
}

// CreateInput holds the fields of a new device.
type CreateInput struct {
	Name       string
	HomeID     int64
	TypeID     int64
	LocationID int64
	StateID    int64
}

// UpdateInput holds optional changes; nil fields are left alone.
type UpdateInput struct {
	Name    *string
	StateID *int64
}

// Service manages devices on top of the repositories. Every mutation
// returns an outcome.Outcome; queries log failures and return empty results.
type Service struct {
	tx        Transactor
	stores    Stores
	recorder  EventRecorder
	listeners []StateListener
	logger    Logger
	now       func() time.Time
}

// NewService creates a device service.
func NewService(tx Transactor, stores Stores) *Service {
	return &Service{tx: tx, stores: stores, logger: noopLogger{}, now: time.Now}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SetEventRecorder sets where state changes are recorded. Nil disables recording.
func (s *Service) SetEventRecorder(r EventRecorder) {
	s.recorder = r
}

// AddStateListener registers a listener for stored state changes.
func (s *Service) AddStateListener(l StateListener) {
	s.listeners = append(s.listeners, l)
}

// Create validates input, resolves every reference and inserts the device
// in one transaction. Any missing reference aborts before the insert.
func (s *Service) Create(ctx context.Context, in CreateInput) outcome.Outcome {
	name := strings.TrimSpace(in.Name)
	if r := validation.Name(name, "device name"); !r.Valid {
		return outcome.Failure(r.Err(), r.Reason)
	}

	var d *Device
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		home, err := s.stores.Homes.GetByID(ctx, in.HomeID)
		if err != nil {
			return err
		}
		typ, err := s.stores.Types.GetByID(ctx, in.TypeID)
		if err != nil {
			return err
		}
		loc, err := s.stores.Locations.GetByID(ctx, in.LocationID)
		if err != nil {
			return err
		}
		state, err := s.stores.States.GetByID(ctx, in.StateID)
		if err != nil {
			return err
		}
		if loc.HomeID() != home.ID {
			return ErrLocationMismatch
		}

		d = &Device{Name: name, State: state, Type: typ, Location: loc, Home: home}
		return s.stores.Devices.Insert(ctx, d)
	})
	if err != nil {
		return s.failure(err, "create device")
	}

	s.logger.Info("device created", "device_id", d.ID, "name", d.Name, "home_id", d.HomeID())
	return outcome.Successf("Device '%s' created with ID %d", d.Name, d.ID)
}

// List returns all devices.
func (s *Service) List(ctx context.Context) []Device {
	devices, err := s.stores.Devices.List(ctx)
	if err != nil {
		s.logger.Error("listing devices", "error", err)
		return []Device{}
	}
	return devices
}

// Get returns a device, or nil when it does not exist or cannot be loaded.
func (s *Service) Get(ctx context.Context, id int64) *Device {
	d, err := s.stores.Devices.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrDeviceNotFound) {
			s.logger.Error("loading device", "device_id", id, "error", err)
		}
		return nil
	}
	return d
}

// ListByHome returns the devices of a home.
func (s *Service) ListByHome(ctx context.Context, homeID int64) []Device {
	devices, err := s.stores.Devices.ListByHome(ctx, homeID)
	if err != nil {
		s.logger.Error("listing devices by home", "home_id", homeID, "error", err)
		return []Device{}
	}
	return devices
}

// Search returns a home's devices whose name contains name, ignoring case.
func (s *Service) Search(ctx context.Context, name string, homeID int64) []Device {
	devices, err := s.stores.Devices.SearchByName(ctx, strings.TrimSpace(name), homeID)
	if err != nil {
		s.logger.Error("searching devices", "query", name, "home_id", homeID, "error", err)
		return []Device{}
	}
	return devices
}

// Update renames a device and/or changes its state.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) outcome.Outcome {
	if in.Name == nil && in.StateID == nil {
		return outcome.Failure(ErrNoChanges, "no changes to apply")
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if r := validation.Name(name, "device name"); !r.Valid {
			return outcome.Failure(r.Err(), r.Reason)
		}
	}

	var (
		d            *Device
		stateChanged bool
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if d, err = s.stores.Devices.GetByID(ctx, id); err != nil {
			return err
		}
		if in.Name != nil {
			d.Name = name
		}
		if in.StateID != nil {
			state, err := s.stores.States.GetByID(ctx, *in.StateID)
			if err != nil {
				return err
			}
			stateChanged = state.ID != d.State.ID
			d.State = state
		}
		return s.stores.Devices.Update(ctx, d)
	})
	if err != nil {
		return s.failure(err, "update device")
	}

	s.logger.Info("device updated", "device_id", d.ID)
	if stateChanged {
		s.stateChanged(ctx, d)
	}
	return outcome.Success("device updated successfully")
}

// Delete removes a device.
func (s *Service) Delete(ctx context.Context, id int64) outcome.Outcome {
	d, err := s.stores.Devices.GetByID(ctx, id)
	if err != nil {
		return s.failure(err, "delete device")
	}
	if err := s.stores.Devices.Delete(ctx, id); err != nil {
		return s.failure(err, "delete device")
	}

	s.logger.Info("device deleted", "device_id", id, "name", d.Name)
	return outcome.Successf("Device '%s' deleted", d.Name)
}

// ChangeState sets a device's state, then records an event and notifies
// listeners. Recording and notification failures are only logged.
func (s *Service) ChangeState(ctx context.Context, id, stateID int64) outcome.Outcome {
	d, err := s.stores.Devices.GetByID(ctx, id)
	if err != nil {
		return s.failure(err, "change state")
	}
	state, err := s.stores.States.GetByID(ctx, stateID)
	if err != nil {
		return s.failure(err, "change state")
	}
	if err := s.stores.Devices.ChangeState(ctx, id, state.ID); err != nil {
		return s.failure(err, "change state")
	}

	d.State = state
	s.logger.Info("device state changed", "device_id", id, "state", state.Name)
	s.stateChanged(ctx, d)
	return outcome.Successf("State changed to '%s'", state.Name)
}

func (s *Service) stateChanged(ctx context.Context, d *Device) {
	if s.recorder != nil {
		desc := fmt.Sprintf("Device '%s' changed state to '%s'", d.Name, d.StateName())
		if err := s.recorder.Record(ctx, &d.ID, desc); err != nil {
			s.logger.Warn("recording state change event", "device_id", d.ID, "error", err)
		}
	}

	change := StateChange{
		DeviceID:   d.ID,
		DeviceName: d.Name,
		HomeID:     d.HomeID(),
		State:      d.StateName(),
		At:         s.now().UTC(),
	}
	for _, l := range s.listeners {
		if err := l.DeviceStateChanged(ctx, change); err != nil {
			s.logger.Warn("notifying state change", "device_id", d.ID, "error", err)
		}
	}
}

// ConfigurationOptions returns everything a new device can reference.
// A list that fails to load is logged and left empty.
func (s *Service) ConfigurationOptions(ctx context.Context) ConfigurationOptions {
	opts := ConfigurationOptions{
		Homes:     []location.Home{},
		Types:     []DeviceType{},
		Locations: []location.Location{},
		States:    []State{},
	}
	if homes, err := s.stores.Homes.List(ctx); err == nil {
		opts.Homes = homes
	} else {
		s.logger.Error("listing homes", "error", err)
	}
	if types, err := s.stores.Types.List(ctx); err == nil {
		opts.Types = types
	} else {
		s.logger.Error("listing device types", "error", err)
	}
	if locs, err := s.stores.Locations.List(ctx); err == nil {
		opts.Locations = locs
	} else {
		s.logger.Error("listing locations", "error", err)
	}
	if states, err := s.stores.States.List(ctx); err == nil {
		opts.States = states
	} else {
		s.logger.Error("listing states", "error", err)
	}
	return opts
}

// DevicesByUser returns the devices of every home linked to email, keyed by
// home name.
func (s *Service) DevicesByUser(ctx context.Context, email string) map[string][]Device {
	result := make(map[string][]Device)
	homes, err := s.stores.Homes.ListByUser(ctx, email)
	if err != nil {
		s.logger.Error("listing homes for user", "email", email, "error", err)
		return result
	}
	for _, h := range homes {
		result[h.Name] = s.ListByHome(ctx, h.ID)
	}
	return result
}

// failure converts a repository error into an outcome. Unexpected errors
// are logged and reported generically.
func (s *Service) failure(err error, op string) outcome.Outcome {
	switch {
	case errors.Is(err, ErrDeviceNotFound):
		return outcome.Failure(err, "device not found")
	case errors.Is(err, location.ErrHomeNotFound):
		return outcome.Failure(err, "home not found")
	case errors.Is(err, ErrDeviceTypeNotFound):
		return outcome.Failure(err, "device type not found")
	case errors.Is(err, location.ErrLocationNotFound):
		return outcome.Failure(err, "location not found")
	case errors.Is(err, ErrStateNotFound):
		return outcome.Failure(err, "state not found")
	case errors.Is(err, ErrLocationMismatch):
		return outcome.Failure(err, "location does not belong to the home")
	case errors.Is(err, ErrInvalidReference):
		return outcome.Failure(err, "device references a missing record")
	default:
		s.logger.Error("device operation failed", "op", op, "error", err)
		return outcome.Failure(err, "could not "+op)
	}
}
