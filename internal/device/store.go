package device

import "context"

// Store persists devices and their lifecycle events.
//
// Get and WithDevice return an error matching ErrNotFound when no device
// is stored under the id. WithDevice must hold an exclusive per-id lock
// for the duration of fn, and every write made through tx must commit or
// fail together with fn's result.
type Store interface {
	Get(ctx context.Context, id string) (Device, error)
	Save(ctx context.Context, d Device) (Device, error)
	DeleteByID(ctx context.Context, id string) error
	FindAll(ctx context.Context) ([]Device, error)
	FindByBrand(ctx context.Context, brand string) ([]Device, error)
	FindByState(ctx context.Context, state State) ([]Device, error)

	WithDevice(ctx context.Context, id string, fn func(tx Store, current Device) error) error
	Atomic(ctx context.Context, fn func(tx Store) error) error

	AppendEvent(ctx context.Context, e Event) error
	EventsByDevice(ctx context.Context, deviceID string) ([]Event, error)
}
