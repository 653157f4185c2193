package device

import "strings"

// The guard functions decide whether a mutation is allowed for the current
// record. They never touch a Store and never modify current.

const (
	msgFrozenIdentity = "cannot update name or brand while device is in use"
	msgDeleteInUse    = "cannot delete device while it's in use"
)

// AuthorizeReplace checks a full replace against current and returns the
// merged record. ID and CreatedAt always come from current.
func AuthorizeReplace(current Device, proposed Replacement) (Device, error) {
	if current.InUse() && (proposed.Name != current.Name || proposed.Brand != current.Brand) {
		return current, Violation(msgFrozenIdentity)
	}

	next := current
	next.Name = proposed.Name
	next.Brand = proposed.Brand
	next.State = proposed.State

	return next, nil
}

// AuthorizePatch checks every present field of p before applying any of
// them. The first failing field rejects the whole patch.
func AuthorizePatch(current Device, p Patch) (Device, error) {
	next := current

	if name, ok := p.Name.Get(); ok {
		if current.InUse() {
			return current, Violation(msgFrozenIdentity)
		}
		if name = strings.TrimSpace(name); name == "" {
			return current, Invalid("name must not be blank")
		}
		next.Name = name
	}

	if brand, ok := p.Brand.Get(); ok {
		if current.InUse() {
			return current, Violation(msgFrozenIdentity)
		}
		if brand = strings.TrimSpace(brand); brand == "" {
			return current, Invalid("brand must not be blank")
		}
		next.Brand = brand
	}

	if raw, ok := p.State.Get(); ok {
		st, err := ParseState(raw)
		if err != nil {
			return current, err
		}
		next.State = st
	}

	return next, nil
}

// AuthorizeDelete refuses to remove a device that is in use.
func AuthorizeDelete(current Device) error {
	if current.InUse() {
		return Violation(msgDeleteInUse)
	}
	return nil
}
