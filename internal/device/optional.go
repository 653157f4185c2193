package device

import "encoding/json"

// Optional marks a field as present or absent. Decoding JSON into an
// Optional sets it present even when the value is null, so a patch can
// tell "not sent" apart from "sent empty".
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

func (o Optional[T]) IsSet() bool { return o.set }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.set = true
	return json.Unmarshal(b, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
