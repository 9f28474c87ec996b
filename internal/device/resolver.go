package device

import (
	"context"

	"github.com/nerrad567/smarthome-core/internal/location"
)

// Resolver loads the relations of a device row. The default implementation
// issues one lookup per relation; a join-based resolver can replace it
// without touching the repository.
type Resolver interface {
	State(ctx context.Context, id int64) (*State, error)
	DeviceType(ctx context.Context, id int64) (*DeviceType, error)
	Location(ctx context.Context, id int64) (*location.Location, error)
	Home(ctx context.Context, id int64) (*location.Home, error)
}

// LookupResolver resolves each relation through its repository's GetByID.
type LookupResolver struct {
	states    StateGetter
	types     TypeGetter
	locations location.LocationGetter
	homes     location.HomeGetter
}

// NewResolver creates a resolver over the given getters.
func NewResolver(states StateGetter, types TypeGetter, locations location.LocationGetter, homes location.HomeGetter) *LookupResolver {
	return &LookupResolver{states: states, types: types, locations: locations, homes: homes}
}

// State resolves a state ID.
func (r *LookupResolver) State(ctx context.Context, id int64) (*State, error) {
	return r.states.GetByID(ctx, id)
}

// DeviceType resolves a device type ID.
func (r *LookupResolver) DeviceType(ctx context.Context, id int64) (*DeviceType, error) {
	return r.types.GetByID(ctx, id)
}

// Location resolves a location ID.
func (r *LookupResolver) Location(ctx context.Context, id int64) (*location.Location, error) {
	return r.locations.GetByID(ctx, id)
}

// Home resolves a home ID.
func (r *LookupResolver) Home(ctx context.Context, id int64) (*location.Home, error) {
	return r.homes.GetByID(ctx, id)
}
