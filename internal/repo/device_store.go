package repo

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devicesapi/internal/device"
	"devicesapi/internal/models"
)

var ErrNilDatabase = errors.New("database is nil")

var _ device.Store = (*DeviceStore)(nil)

// DeviceStore is the gorm-backed device.Store.
type DeviceStore struct{ db *gorm.DB }

func NewDeviceStore(db *gorm.DB) (*DeviceStore, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}
	return &DeviceStore{db: db}, nil
}

// Migrate creates or updates the tables the store needs.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return ErrNilDatabase
	}
	return errors.Wrap(db.AutoMigrate(models.All()...), "failed to migrate device tables")
}

func toRow(d device.Device) models.Device {
	return models.Device{
		ID:        d.ID,
		Name:      d.Name,
		Brand:     d.Brand,
		State:     string(d.State),
		CreatedAt: d.CreatedAt,
	}
}

func fromRow(r models.Device) device.Device {
	return device.Device{
		ID:        r.ID,
		Name:      r.Name,
		Brand:     r.Brand,
		State:     device.State(r.State),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func fromRows(rows []models.Device) []device.Device {
	ds := make([]device.Device, 0, len(rows))
	for _, r := range rows {
		ds = append(ds, fromRow(r))
	}
	return ds
}

func (s *DeviceStore) Get(ctx context.Context, id string) (device.Device, error) {
	var row models.Device
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return device.Device{}, device.NotFound(id)
	}
	if err != nil {
		return device.Device{}, errors.Wrap(err, "failed to fetch device")
	}
	return fromRow(row), nil
}

func (s *DeviceStore) Save(ctx context.Context, d device.Device) (device.Device, error) {
	if d.ID == "" {
		return d, errors.New("device id is empty")
	}

	row := toRow(d)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return d, errors.Wrap(err, "failed to save device")
	}
	return d, nil
}

func (s *DeviceStore) DeleteByID(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Device{}).Error
	return errors.Wrap(err, "failed to delete device")
}

func (s *DeviceStore) many(ctx context.Context, query any, args ...any) ([]device.Device, error) {
	var rows []models.Device
	q := s.db.WithContext(ctx).Order("created_at asc, id asc")
	if query != nil {
		q = q.Where(query, args...)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch devices")
	}
	return fromRows(rows), nil
}

func (s *DeviceStore) FindAll(ctx context.Context) ([]device.Device, error) {
	return s.many(ctx, nil)
}

func (s *DeviceStore) FindByBrand(ctx context.Context, brand string) ([]device.Device, error) {
	return s.many(ctx, "brand = ?", brand)
}

func (s *DeviceStore) FindByState(ctx context.Context, state device.State) ([]device.Device, error) {
	return s.many(ctx, "state = ?", string(state))
}

// WithDevice locks the device row (SELECT ... FOR UPDATE where the dialect
// has it) inside a transaction and hands fn a store bound to it.
func (s *DeviceStore) WithDevice(ctx context.Context, id string, fn func(tx device.Store, current device.Device) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Device
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return device.NotFound(id)
		}
		if err != nil {
			return errors.Wrap(err, "failed to lock device")
		}

		return fn(&DeviceStore{db: tx}, fromRow(row))
	})
}

func (s *DeviceStore) Atomic(ctx context.Context, fn func(tx device.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DeviceStore{db: tx})
	})
}

func (s *DeviceStore) AppendEvent(ctx context.Context, e device.Event) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return errors.Wrap(err, "failed to encode event changes")
	}

	row := models.DeviceEvent{
		ID:        e.ID,
		DeviceID:  e.DeviceID,
		Op:        string(e.Op),
		Changes:   changes,
		CreatedAt: e.At,
	}

	return errors.Wrap(s.db.WithContext(ctx).Create(&row).Error, "failed to insert device event")
}

func (s *DeviceStore) EventsByDevice(ctx context.Context, deviceID string) ([]device.Event, error) {
	var rows []models.DeviceEvent
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch device events")
	}

	evs := make([]device.Event, 0, len(rows))
	for _, r := range rows {
		e := device.Event{
			ID:       r.ID,
			DeviceID: r.DeviceID,
			Op:       device.Op(r.Op),
			At:       r.CreatedAt.UTC(),
		}
		if err := json.Unmarshal(r.Changes, &e.Changes); err != nil {
			return nil, errors.Wrapf(err, "failed to decode changes of event %s", r.ID)
		}
		evs = append(evs, e)
	}

	return evs, nil
}
