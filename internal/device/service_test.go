package device_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicesapi/internal/device"
	"devicesapi/internal/repo"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)

func newService(t *testing.T) *device.Service {
	t.Helper()

	svc := device.NewService(repo.NewMemoryStore())
	clock := epoch
	svc.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	return svc
}

func create(t *testing.T, svc *device.Service, name, brand, state string) device.Device {
	t.Helper()

	d, err := svc.Create(context.Background(), device.Input{Name: name, Brand: brand, State: state})
	require.NoError(t, err)
	return d
}

func TestCreate(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	svc := newService(t)

	d := create(t, svc, "Pixel", "Google", "available")
	a.NotEmpty(d.ID)
	a.Equal(device.StateAvailable, d.State)
	a.Equal(epoch.Add(time.Second).Truncate(time.Millisecond), d.CreatedAt)

	got, err := svc.GetByID(ctx, d.ID)
	require.NoError(t, err)
	a.Equal(d, got)

	other := create(t, svc, "Pixel", "Google", "AVAILABLE")
	a.NotEqual(d.ID, other.ID)

	_, err = svc.Create(ctx, device.Input{Name: "", Brand: "Google", State: "AVAILABLE"})
	a.True(errors.Is(err, device.ErrInvalidValue))

	_, err = svc.Create(ctx, device.Input{Name: "X", Brand: "Y", State: "BROKEN"})
	a.True(errors.Is(err, device.ErrInvalidValue))

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	a.Len(all, 2)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces mutable fields and keeps identity", func(t *testing.T) {
		a := assert.New(t)
		svc := newService(t)
		d := create(t, svc, "Pixel", "Google", "AVAILABLE")

		got, err := svc.Update(ctx, d.ID, device.Input{Name: "iPhone", Brand: "Apple", State: "INACTIVE"})
		require.NoError(t, err)
		a.Equal(d.ID, got.ID)
		a.Equal(d.CreatedAt, got.CreatedAt)
		a.Equal("iPhone", got.Name)
		a.Equal(device.StateInactive, got.State)

		stored, err := svc.GetByID(ctx, d.ID)
		require.NoError(t, err)
		a.Equal(got, stored)
	})

	t.Run("in use device keeps name and brand", func(t *testing.T) {
		a := assert.New(t)
		svc := newService(t)
		d := create(t, svc, "Pixel", "Google", "IN_USE")

		_, err := svc.Update(ctx, d.ID, device.Input{Name: "Other", Brand: "Google", State: "IN_USE"})
		a.True(errors.Is(err, device.ErrInvariantViolation))

		stored, _ := svc.GetByID(ctx, d.ID)
		a.Equal(d, stored)

		got, err := svc.Update(ctx, d.ID, device.Input{Name: "Pixel", Brand: "Google", State: "AVAILABLE"})
		require.NoError(t, err)
		a.Equal(device.StateAvailable, got.State)
	})

	t.Run("missing device", func(t *testing.T) {
		_, err := newService(t).Update(ctx, "nope", device.Input{Name: "a", Brand: "b", State: "AVAILABLE"})
		assert.True(t, errors.Is(err, device.ErrNotFound))
	})
}

func TestPatch(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only present fields", func(t *testing.T) {
		a := assert.New(t)
		svc := newService(t)
		d := create(t, svc, "Pixel", "Google", "AVAILABLE")

		got, err := svc.Patch(ctx, d.ID, device.Patch{Brand: device.Some("Alphabet")})
		require.NoError(t, err)
		a.Equal("Pixel", got.Name)
		a.Equal("Alphabet", got.Brand)
		a.Equal(device.StateAvailable, got.State)
		a.Equal(d.CreatedAt, got.CreatedAt)
	})

	t.Run("in use device accepts a state change", func(t *testing.T) {
		svc := newService(t)
		d := create(t, svc, "Pixel", "Google", "IN_USE")

		got, err := svc.Patch(ctx, d.ID, device.Patch{State: device.Some("available")})
		require.NoError(t, err)
		assert.Equal(t, device.StateAvailable, got.State)
	})

	t.Run("rejected patch changes nothing", func(t *testing.T) {
		a := assert.New(t)
		svc := newService(t)
		d := create(t, svc, "Pixel", "Google", "IN_USE")

		_, err := svc.Patch(ctx, d.ID, device.Patch{Name: device.Some("X"), State: device.Some("AVAILABLE")})
		a.True(errors.Is(err, device.ErrInvariantViolation))

		stored, _ := svc.GetByID(ctx, d.ID)
		a.Equal(d, stored)
	})

	t.Run("invalid state changes nothing", func(t *testing.T) {
		a := assert.New(t)
		svc := newService(t)
		d := create(t, svc, "Pixel", "Google", "AVAILABLE")

		_, err := svc.Patch(ctx, d.ID, device.Patch{Name: device.Some("X"), State: device.Some("BROKEN")})
		a.True(errors.Is(err, device.ErrInvalidValue))

		stored, _ := svc.GetByID(ctx, d.ID)
		a.Equal(d, stored)
	})

	t.Run("missing device", func(t *testing.T) {
		_, err := newService(t).Patch(ctx, "nope", device.Patch{})
		assert.True(t, errors.Is(err, device.ErrNotFound))
	})
}

func TestDelete(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	svc := newService(t)

	inUse := create(t, svc, "Pixel", "Google", "IN_USE")
	a.True(errors.Is(svc.Delete(ctx, inUse.ID), device.ErrInvariantViolation))
	_, err := svc.GetByID(ctx, inUse.ID)
	a.NoError(err)

	free := create(t, svc, "Galaxy", "Samsung", "INACTIVE")
	a.NoError(svc.Delete(ctx, free.ID))
	_, err = svc.GetByID(ctx, free.ID)
	a.True(errors.Is(err, device.ErrNotFound))

	a.True(errors.Is(svc.Delete(ctx, free.ID), device.ErrNotFound))
}

func TestListFilters(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	svc := newService(t)

	p1 := create(t, svc, "Pixel 8", "Google", "AVAILABLE")
	create(t, svc, "Galaxy", "Samsung", "IN_USE")
	p2 := create(t, svc, "Pixel 9", "Google", "IN_USE")

	google, err := svc.ListByBrand(ctx, "Google")
	require.NoError(t, err)
	a.Equal([]device.Device{p1, p2}, google)

	none, err := svc.ListByBrand(ctx, "Nokia")
	require.NoError(t, err)
	a.Empty(none)

	inUse, err := svc.ListByState(ctx, "in_use")
	require.NoError(t, err)
	a.Len(inUse, 2)
	for _, d := range inUse {
		a.Equal(device.StateInUse, d.State)
	}

	inactive, err := svc.ListByState(ctx, "INACTIVE")
	require.NoError(t, err)
	a.Empty(inactive)

	_, err = svc.ListByState(ctx, "LOST")
	a.True(errors.Is(err, device.ErrInvalidValue))
}

func TestEvents(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	svc := newService(t)

	d := create(t, svc, "Pixel", "Google", "AVAILABLE")
	_, err := svc.Patch(ctx, d.ID, device.Patch{State: device.Some("IN_USE")})
	require.NoError(t, err)

	// same values: nothing to record
	_, err = svc.Update(ctx, d.ID, device.Input{Name: "Pixel", Brand: "Google", State: "IN_USE"})
	require.NoError(t, err)

	_, err = svc.Patch(ctx, d.ID, device.Patch{Name: device.Some("X")})
	require.Error(t, err)

	_, err = svc.Patch(ctx, d.ID, device.Patch{State: device.Some("INACTIVE")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, d.ID))

	evs, err := svc.Events(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, evs, 4)

	a.Equal(device.OpCreate, evs[0].Op)
	a.Len(evs[0].Changes, 3)
	a.Equal(device.OpPatch, evs[1].Op)
	a.Equal([]device.Change{{Field: "state", From: "AVAILABLE", To: "IN_USE"}}, evs[1].Changes)
	a.Equal(device.OpPatch, evs[2].Op)
	a.Equal(device.OpDelete, evs[3].Op)
	for i := 1; i < len(evs); i++ {
		a.True(evs[i-1].At.Before(evs[i].At))
	}

	_, err = svc.Events(ctx, "never-existed")
	a.True(errors.Is(err, device.ErrNotFound))
}

func TestConcurrentMutationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	svc := device.NewService(repo.NewMemoryStore())
	d := create(t, svc, "Pixel", "Google", "AVAILABLE")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Patch(ctx, d.ID, device.Patch{State: device.Some("IN_USE")})
			_, _ = svc.Patch(ctx, d.ID, device.Patch{State: device.Some("AVAILABLE")})
		}()
		go func() {
			defer wg.Done()
			// a rename only lands while the device is not in use
			_, err := svc.Patch(ctx, d.ID, device.Patch{Name: device.Some("Pixel")})
			if err != nil {
				assert.True(t, errors.Is(err, device.ErrInvariantViolation))
			}
		}()
	}
	wg.Wait()

	got, err := svc.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pixel", got.Name)
	assert.Equal(t, "Google", got.Brand)
	assert.Equal(t, d.CreatedAt, got.CreatedAt)
	assert.True(t, got.State.Valid())
}
