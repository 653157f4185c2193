package device

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies domain failures for the API boundary.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvariantViolation
	KindInvalidValue
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvariantViolation:
		return "invariant violation"
	case KindInvalidValue:
		return "invalid value"
	default:
		return "unknown"
	}
}

// Error is a typed domain failure. Two errors match under errors.Is when
// their kinds are equal, so the sentinels below can be used as targets.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound, Msg: "device not found"}
	ErrInvariantViolation = &Error{Kind: KindInvariantViolation, Msg: "device lifecycle rule violated"}
	ErrInvalidValue       = &Error{Kind: KindInvalidValue, Msg: "invalid value"}
)

// NotFound reports that no device is stored under id.
func NotFound(id string) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("device not found with id: %s", id)}
}

// Violation reports a mutation the device's current state forbids.
func Violation(msg string) error {
	return &Error{Kind: KindInvariantViolation, Msg: msg}
}

// Invalid reports malformed caller input.
func Invalid(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidValue, Msg: fmt.Sprintf(format, args...)}
}

// KindOf unwraps err down to a domain Error and returns its kind, or
// KindUnknown for infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
