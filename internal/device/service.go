package device

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"devicesapi/internal/logs"
)

// Service runs device operations: it loads the current record, asks the
// guard, and writes the outcome together with a lifecycle event.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// SetClock replaces the time source used for CreatedAt and event stamps.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) timestamp() time.Time {
	// millisecond precision survives every supported database
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) Create(ctx context.Context, in Input) (Device, error) {
	r, err := in.Validate()
	if err != nil {
		return Device{}, err
	}

	d := Device{
		ID:        s.newID(),
		Name:      r.Name,
		Brand:     r.Brand,
		State:     r.State,
		CreatedAt: s.timestamp(),
	}

	err = s.store.Atomic(ctx, func(tx Store) error {
		return s.commit(ctx, tx, OpCreate, Device{}, d)
	})
	if err != nil {
		return Device{}, err
	}

	return d, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (updated Device, err error) {
	r, err := in.Validate()
	if err != nil {
		return Device{}, err
	}

	err = s.store.WithDevice(ctx, id, func(tx Store, current Device) error {
		next, err := AuthorizeReplace(current, r)
		if err != nil {
			s.rejected(OpReplace, id, err)
			return err
		}

		updated = next
		return s.commit(ctx, tx, OpReplace, current, next)
	})
	if err != nil {
		return Device{}, err
	}

	return updated, nil
}

func (s *Service) Patch(ctx context.Context, id string, p Patch) (patched Device, err error) {
	err = s.store.WithDevice(ctx, id, func(tx Store, current Device) error {
		next, err := AuthorizePatch(current, p)
		if err != nil {
			s.rejected(OpPatch, id, err)
			return err
		}

		patched = next
		return s.commit(ctx, tx, OpPatch, current, next)
	})
	if err != nil {
		return Device{}, err
	}

	return patched, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.WithDevice(ctx, id, func(tx Store, current Device) error {
		if err := AuthorizeDelete(current); err != nil {
			s.rejected(OpDelete, id, err)
			return err
		}

		if err := tx.DeleteByID(ctx, id); err != nil {
			return errors.Wrapf(err, "failed to delete device: %s", id)
		}

		return s.record(ctx, tx, OpDelete, current, Device{ID: id})
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (Device, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Device, error) {
	return s.store.FindAll(ctx)
}

func (s *Service) ListByBrand(ctx context.Context, brand string) ([]Device, error) {
	return s.store.FindByBrand(ctx, brand)
}

// ListByState accepts the state as sent by the caller, in any case.
func (s *Service) ListByState(ctx context.Context, state string) ([]Device, error) {
	st, err := ParseState(state)
	if err != nil {
		return nil, err
	}
	return s.store.FindByState(ctx, st)
}

// Events returns the lifecycle history of a device, oldest first. A device
// that was deleted still has its history; an id that never existed is
// NotFound.
func (s *Service) Events(ctx context.Context, id string) ([]Event, error) {
	evs, err := s.store.EventsByDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(evs) == 0 {
		if _, err := s.store.Get(ctx, id); err != nil {
			return nil, err
		}
	}

	return evs, nil
}

// commit saves next when it differs from current and records the change.
func (s *Service) commit(ctx context.Context, tx Store, op Op, current, next Device) error {
	changes, err := Changelog(current, next)
	if err != nil {
		return err
	}

	if len(changes) == 0 {
		return nil
	}

	if _, err := tx.Save(ctx, next); err != nil {
		return errors.Wrapf(err, "failed to save device: %s", next.ID)
	}

	return s.appendEvent(ctx, tx, op, next.ID, changes)
}

func (s *Service) record(ctx context.Context, tx Store, op Op, before, after Device) error {
	changes, err := Changelog(before, after)
	if err != nil {
		return err
	}
	return s.appendEvent(ctx, tx, op, before.ID, changes)
}

func (s *Service) appendEvent(ctx context.Context, tx Store, op Op, id string, changes []Change) error {
	// v7 ids sort in creation order, which keeps history stable within a millisecond
	eid, err := uuid.NewV7()
	if err != nil {
		return errors.Wrap(err, "failed to generate event id")
	}

	e := Event{
		ID:       eid.String(),
		DeviceID: id,
		Op:       op,
		Changes:  changes,
		At:       s.timestamp(),
	}

	if err := tx.AppendEvent(ctx, e); err != nil {
		return errors.Wrapf(err, "failed to record %s event for device: %s", op, id)
	}

	logs.Logger.WithFields(logrus.Fields{
		"device_id": id,
		"op":        op,
		"changes":   len(changes),
	}).Info("device mutated")

	return nil
}

func (s *Service) rejected(op Op, id string, err error) {
	logs.Logger.WithFields(logrus.Fields{
		"device_id": id,
		"op":        op,
		"kind":      KindOf(err).String(),
	}).Debug(err.Error())
}
