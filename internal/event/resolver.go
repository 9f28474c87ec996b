package event

import (
	"context"
	"errors"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/device"
)

// Resolver loads the optional relations of an event. A relation that no
// longer exists resolves to nil without error.
type Resolver interface {
	Device(ctx context.Context, id int64) (*device.Device, error)
	User(ctx context.Context, email string) (*auth.User, error)
}

// UserGetter resolves a user email.
type UserGetter interface {
	GetByEmail(ctx context.Context, email string) (*auth.User, error)
}

// LookupResolver resolves relations one lookup at a time.
type LookupResolver struct {
	devices device.Getter
	users   UserGetter
}

// NewResolver creates a resolver over the device and user repositories.
func NewResolver(devices device.Getter, users UserGetter) *LookupResolver {
	return &LookupResolver{devices: devices, users: users}
}

// Device resolves a device, or nil if it cannot be loaded.
func (r *LookupResolver) Device(ctx context.Context, id int64) (*device.Device, error) {
	d, err := r.devices.GetByID(ctx, id)
	if errors.Is(err, device.ErrDeviceNotFound) {
		return nil, nil //nolint:nilnil // A missing optional relation is not an error
	}
	return d, err
}

// User resolves a user, or nil if it cannot be loaded.
func (r *LookupResolver) User(ctx context.Context, email string) (*auth.User, error) {
	u, err := r.users.GetByEmail(ctx, email)
	if errors.Is(err, auth.ErrUserNotFound) {
		return nil, nil //nolint:nilnil // A missing optional relation is not an error
	}
	return u, err
}
