package repo

import (
	"context"
	"sort"
	"sync"

	"devicesapi/internal/device"
)

var _ device.Store = (*MemoryStore)(nil)

// MemoryStore keeps devices in process memory. It is used when no
// database driver is configured, and by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	devices map[string]device.Device
	events  map[string][]device.Event

	locksMu sync.Mutex
	locks   map[string]*idLock
}

// idLock is dropped from the map once no caller holds or waits on it.
type idLock struct {
	mu   sync.Mutex
	refs int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices: make(map[string]device.Device),
		events:  make(map[string][]device.Event),
		locks:   make(map[string]*idLock),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (device.Device, error) {
	s.mu.RLock()
	d, ok := s.devices[id]
	s.mu.RUnlock()

	if !ok {
		return device.Device{}, device.NotFound(id)
	}
	return d, nil
}

func (s *MemoryStore) Save(_ context.Context, d device.Device) (device.Device, error) {
	s.mu.Lock()
	if prev, ok := s.devices[d.ID]; ok {
		// created_at is insert-only, as in the SQL store
		d.CreatedAt = prev.CreatedAt
	}
	s.devices[d.ID] = d
	s.mu.Unlock()

	return d, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.devices, id)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) filter(keep func(device.Device) bool) []device.Device {
	s.mu.RLock()
	ds := make([]device.Device, 0, len(s.devices))
	for _, d := range s.devices {
		if keep(d) {
			ds = append(ds, d)
		}
	}
	s.mu.RUnlock()

	sort.Slice(ds, func(i, j int) bool {
		if ds[i].CreatedAt.Equal(ds[j].CreatedAt) {
			return ds[i].ID < ds[j].ID
		}
		return ds[i].CreatedAt.Before(ds[j].CreatedAt)
	})

	return ds
}

func (s *MemoryStore) FindAll(_ context.Context) ([]device.Device, error) {
	return s.filter(func(device.Device) bool { return true }), nil
}

func (s *MemoryStore) FindByBrand(_ context.Context, brand string) ([]device.Device, error) {
	return s.filter(func(d device.Device) bool { return d.Brand == brand }), nil
}

func (s *MemoryStore) FindByState(_ context.Context, state device.State) ([]device.Device, error) {
	return s.filter(func(d device.Device) bool { return d.State == state }), nil
}

func (s *MemoryStore) acquire(id string) *idLock {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &idLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return l
}

func (s *MemoryStore) release(id string, l *idLock) {
	l.mu.Unlock()

	s.locksMu.Lock()
	if l.refs--; l.refs == 0 {
		delete(s.locks, id)
	}
	s.locksMu.Unlock()
}

// WithDevice serializes callers per id. Writes through tx are applied
// directly; the memory store has nothing to roll back.
func (s *MemoryStore) WithDevice(ctx context.Context, id string, fn func(tx device.Store, current device.Device) error) error {
	l := s.acquire(id)
	defer s.release(id, l)

	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return fn(s, current)
}

func (s *MemoryStore) Atomic(_ context.Context, fn func(tx device.Store) error) error {
	return fn(s)
}

func (s *MemoryStore) AppendEvent(_ context.Context, e device.Event) error {
	s.mu.Lock()
	s.events[e.DeviceID] = append(s.events[e.DeviceID], e)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) EventsByDevice(_ context.Context, deviceID string) ([]device.Event, error) {
	s.mu.RLock()
	evs := make([]device.Event, len(s.events[deviceID]))
	copy(evs, s.events[deviceID])
	s.mu.RUnlock()

	return evs, nil
}
