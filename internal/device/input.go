package device

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// Input is the body of a create or a full replace. Server-assigned fields
// (id, createdAt) have no place here and are dropped when decoding.
type Input struct {
	Name  string `json:"name" valid:"required~name is required"`
	Brand string `json:"brand" valid:"required~brand is required"`
	State string `json:"state" valid:"required~state is required"`
}

// Replacement is a validated Input: the full set of mutable fields.
type Replacement struct {
	Name  string
	Brand string
	State State
}

// Validate trims the text fields, checks presence and parses the state.
func (in Input) Validate() (Replacement, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.State = strings.TrimSpace(in.State)

	if _, err := govalidator.ValidateStruct(in); err != nil {
		return Replacement{}, Invalid("%s", err.Error())
	}

	st, err := ParseState(in.State)
	if err != nil {
		return Replacement{}, err
	}

	return Replacement{Name: in.Name, Brand: in.Brand, State: st}, nil
}

// Patch is a sparse update. Only fields marked present are touched;
// keys the decoder doesn't know (id, createdAt, anything else) are dropped.
type Patch struct {
	Name  Optional[string] `json:"name"`
	Brand Optional[string] `json:"brand"`
	State Optional[string] `json:"state"`
}

func (p Patch) Empty() bool {
	return !p.Name.IsSet() && !p.Brand.IsSet() && !p.State.IsSet()
}
