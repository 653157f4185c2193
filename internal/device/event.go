package device

import (
	"time"

	"github.com/pkg/errors"
	"github.com/r3labs/diff"
)

// Op names the mutation an Event records.
type Op string

const (
	OpCreate  Op = "create"
	OpReplace Op = "replace"
	OpPatch   Op = "patch"
	OpDelete  Op = "delete"
)

// Change is one field-level difference between two versions of a device.
type Change struct {
	Field string      `json:"field"`
	From  interface{} `json:"from"`
	To    interface{} `json:"to"`
}

// Event is an entry in a device's lifecycle history. Events outlive the
// device they describe.
type Event struct {
	ID       string    `json:"id"`
	DeviceID string    `json:"deviceId"`
	Op       Op        `json:"op"`
	Changes  []Change  `json:"changes"`
	At       time.Time `json:"at"`
}

// mutable is the part of a Device that operations are allowed to change.
type mutable struct {
	Name  string `diff:"name"`
	Brand string `diff:"brand"`
	State string `diff:"state"`
}

func mutableOf(d Device) mutable {
	return mutable{Name: d.Name, Brand: d.Brand, State: string(d.State)}
}

// Changelog lists the mutable fields that differ between before and after.
func Changelog(before, after Device) ([]Change, error) {
	cl, err := diff.Diff(mutableOf(before), mutableOf(after))
	if err != nil {
		return nil, errors.Wrap(err, "failed to diff device versions")
	}

	changes := make([]Change, 0, len(cl))
	for _, c := range cl {
		changes = append(changes, Change{Field: c.Path[0], From: c.From, To: c.To})
	}

	return changes, nil
}
