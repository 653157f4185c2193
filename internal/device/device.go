// Package device holds the device lifecycle: the record model, the guard
// deciding which mutations a device's current state permits, and the
// service that runs those decisions against a Store.
package device

import (
	"strings"
	"time"
)

// State is the lifecycle state of a device.
type State string

const (
	StateAvailable State = "AVAILABLE"
	StateInUse     State = "IN_USE"
	StateInactive  State = "INACTIVE"
)

// States lists every lifecycle state in declaration order.
var States = []State{StateAvailable, StateInUse, StateInactive}

// ParseState trims and upper-cases s before matching it against the known
// states. Anything else is an InvalidValue error.
func ParseState(s string) (State, error) {
	st := State(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", Invalid("unknown device state %q", s)
	}
	return st, nil
}

func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

func (s State) String() string { return string(s) }

// Device is a tracked physical unit.
type Device struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d Device) InUse() bool { return d.State == StateInUse }
