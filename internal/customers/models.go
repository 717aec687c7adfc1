package customers

import (
	"strings"

	"backoffice/internal/patch"
)

type Customer struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

type NewCustomer struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// Patch is the typed partial update for a customer: only non-nil fields are
// written.
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *string
}

// PatchFromFields decodes the wire map into a Patch. Field names resolve
// case-insensitively; an unknown name or unparsable value rejects the whole
// update.
func PatchFromFields(fields patch.Fields) (Patch, error) {
	var p Patch
	for name, value := range fields {
		var err error
		switch strings.ToLower(name) {
		case "firstname":
			p.FirstName, err = patch.String(name, value)
		case "lastname":
			p.LastName, err = patch.String(name, value)
		case "email":
			p.Email, err = patch.String(name, value)
		case "phone":
			p.Phone, err = patch.String(name, value)
		case "address":
			p.Address, err = patch.String(name, value)
		default:
			err = &patch.UnknownFieldError{Name: name}
		}
		if err != nil {
			return Patch{}, err
		}
	}
	return p, nil
}
