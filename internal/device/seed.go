package device

import (
	"context"
	"errors"
	"fmt"
)

// SeedCatalog creates the default states and device types that do not
// exist yet and returns how many rows it added.
func SeedCatalog(ctx context.Context, states StateRepository, types TypeRepository) (int, error) {
	created := 0
	for _, name := range DefaultStates {
		_, err := states.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrStateNotFound) {
			return created, fmt.Errorf("checking state %s: %w", name, err)
		}
		if err := states.Insert(ctx, &State{Name: name}); err != nil {
			return created, fmt.Errorf("seeding state %s: %w", name, err)
		}
		created++
	}

	for _, t := range DefaultTypes {
		_, err := types.GetByName(ctx, t.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrDeviceTypeNotFound) {
			return created, fmt.Errorf("checking device type %s: %w", t.Name, err)
		}
		if err := types.Insert(ctx, &t); err != nil {
			return created, fmt.Errorf("seeding device type %s: %w", t.Name, err)
		}
		created++
	}
	return created, nil
}
