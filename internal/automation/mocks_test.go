package automation

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nerrad567/smarthome-core/internal/location"
)

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockAutomations struct{ mock.Mock }

func (m *mockAutomations) GetByID(ctx context.Context, id int64) (*Automation, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*Automation)
	return a, args.Error(1)
}

func (m *mockAutomations) Insert(ctx context.Context, a *Automation) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAutomations) Update(ctx context.Context, a *Automation) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAutomations) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAutomations) List(ctx context.Context) ([]Automation, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).([]Automation)
	return a, args.Error(1)
}

func (m *mockAutomations) ListByHome(ctx context.Context, homeID int64) ([]Automation, error) {
	args := m.Called(ctx, homeID)
	a, _ := args.Get(0).([]Automation)
	return a, args.Error(1)
}

func (m *mockAutomations) ListActive(ctx context.Context, homeID int64) ([]Automation, error) {
	args := m.Called(ctx, homeID)
	a, _ := args.Get(0).([]Automation)
	return a, args.Error(1)
}

func (m *mockAutomations) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
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
