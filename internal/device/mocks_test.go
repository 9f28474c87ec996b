package device

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nerrad567/smarthome-core/internal/location"
)

// passthroughTx runs the scope without a database.
type passthroughTx struct{ calls int }

func (p *passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type mockDevices struct{ mock.Mock }

func (m *mockDevices) GetByID(ctx context.Context, id int64) (*Device, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*Device)
	return d, args.Error(1)
}

func (m *mockDevices) Insert(ctx context.Context, d *Device) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDevices) Update(ctx context.Context, d *Device) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDevices) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDevices) List(ctx context.Context) ([]Device, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).([]Device)
	return d, args.Error(1)
}

func (m *mockDevices) ListByHome(ctx context.Context, homeID int64) ([]Device, error) {
	args := m.Called(ctx, homeID)
	d, _ := args.Get(0).([]Device)
	return d, args.Error(1)
}

func (m *mockDevices) SearchByName(ctx context.Context, substring string, homeID int64) ([]Device, error) {
	args := m.Called(ctx, substring, homeID)
	d, _ := args.Get(0).([]Device)
	return d, args.Error(1)
}

func (m *mockDevices) ChangeState(ctx context.Context, deviceID, stateID int64) error {
	return m.Called(ctx, deviceID, stateID).Error(0)
}

type mockStates struct{ mock.Mock }

func (m *mockStates) GetByID(ctx context.Context, id int64) (*State, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*State)
	return s, args.Error(1)
}

func (m *mockStates) Insert(ctx context.Context, s *State) error { return m.Called(ctx, s).Error(0) }
func (m *mockStates) Update(ctx context.Context, s *State) error { return m.Called(ctx, s).Error(0) }
func (m *mockStates) Delete(ctx context.Context, id int64) error { return m.Called(ctx, id).Error(0) }

func (m *mockStates) GetByName(ctx context.Context, name string) (*State, error) {
	args := m.Called(ctx, name)
	s, _ := args.Get(0).(*State)
	return s, args.Error(1)
}

func (m *mockStates) List(ctx context.Context) ([]State, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]State)
	return s, args.Error(1)
}

type mockTypes struct{ mock.Mock }

func (m *mockTypes) GetByID(ctx context.Context, id int64) (*DeviceType, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*DeviceType)
	return t, args.Error(1)
}

func (m *mockTypes) Insert(ctx context.Context, t *DeviceType) error { return m.Called(ctx, t).Error(0) }
func (m *mockTypes) Update(ctx context.Context, t *DeviceType) error { return m.Called(ctx, t).Error(0) }
func (m *mockTypes) Delete(ctx context.Context, id int64) error      { return m.Called(ctx, id).Error(0) }

func (m *mockTypes) GetByName(ctx context.Context, name string) (*DeviceType, error) {
	args := m.Called(ctx, name)
	t, _ := args.Get(0).(*DeviceType)
	return t, args.Error(1)
}

func (m *mockTypes) List(ctx context.Context) ([]DeviceType, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).([]DeviceType)
	return t, args.Error(1)
}

type mockLocations struct{ mock.Mock }

func (m *mockLocations) GetByID(ctx context.Context, id int64) (*location.Location, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*location.Location)
	return l, args.Error(1)
}

func (m *mockLocations) Insert(ctx context.Context, l *location.Location) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLocations) Update(ctx context.Context, l *location.Location) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLocations) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockLocations) List(ctx context.Context) ([]location.Location, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]location.Location)
	return l, args.Error(1)
}

func (m *mockLocations) ListByHome(ctx context.Context, homeID int64) ([]location.Location, error) {
	args := m.Called(ctx, homeID)
	l, _ := args.Get(0).([]location.Location)
	return l, args.Error(1)
}

type mockHomes struct{ mock.Mock }

func (m *mockHomes) GetByID(ctx context.Context, id int64) (*location.Home, error) {
	args := m.Called(ctx, id)
	h, _ := args.Get(0).(*location.Home)
	return h, args.Error(1)
}

func (m *mockHomes) Insert(ctx context.Context, h *location.Home) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHomes) Update(ctx context.Context, h *location.Home) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHomes) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockHomes) List(ctx context.Context) ([]location.Home, error) {
	args := m.Called(ctx)
	h, _ := args.Get(0).([]location.Home)
	return h, args.Error(1)
}

func (m *mockHomes) ListByUser(ctx context.Context, email string) ([]location.Home, error) {
	args := m.Called(ctx, email)
	h, _ := args.Get(0).([]location.Home)
	return h, args.Error(1)
}

func (m *mockHomes) AddMember(ctx context.Context, homeID int64, email string) error {
	return m.Called(ctx, homeID, email).Error(0)
}

func (m *mockHomes) RemoveMember(ctx context.Context, homeID int64, email string) error {
	return m.Called(ctx, homeID, email).Error(0)
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) Record(ctx context.Context, deviceID *int64, description string) error {
	return m.Called(ctx, deviceID, description).Error(0)
}
