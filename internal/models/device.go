package models

import (
	"time"

	"gorm.io/datatypes"
)

// Device is the devices table row.
type Device struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:255;not null"`
	Brand     string    `gorm:"size:255;not null;index"`
	State     string    `gorm:"size:16;not null;index"`
	CreatedAt time.Time `gorm:"not null;<-:create"`
	UpdatedAt time.Time
}

// DeviceEvent is one row of a device's lifecycle history. There is no
// foreign key to devices: history is kept after a device is deleted.
type DeviceEvent struct {
	ID        string         `gorm:"primaryKey;size:36"`
	DeviceID  string         `gorm:"size:36;not null;index:idx_device_events_device_at,priority:1"`
	Op        string         `gorm:"size:16;not null"`
	Changes   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null;index:idx_device_events_device_at,priority:2"`
}

// All lists every table model, for AutoMigrate.
func All() []any {
	return []any{&Device{}, &DeviceEvent{}}
}
