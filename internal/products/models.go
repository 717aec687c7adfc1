package products

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"backoffice/internal/money"
	"backoffice/internal/patch"
)

// Status of a product in the catalog.
type Status int8

const (
	StatusActive Status = iota
	StatusDiscontinued
)

var statusNames = map[Status]string{
	StatusActive:       "Active",
	StatusDiscontinued: "Discontinued",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "undefined"
}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown product status %q", name)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	parsed, err := ParseStatus(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into products.Status", src)
	}
}

type Product struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       money.Cents `json:"price"`
	Status      Status      `json:"status"`
	Stock       int         `json:"stock"`
}

type NewProduct struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Category    string      `json:"category" validate:"required"`
	Price       money.Cents `json:"price" validate:"gte=0"`
	Stock       int         `json:"stock" validate:"gte=0"`
}

// Patch is the typed partial update for a product.
type Patch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *money.Cents
	Status      *Status
	Stock       *int
}

// PatchFromFields decodes the wire map into a Patch. Field names resolve
// case-insensitively; an unknown name or unparsable value rejects the whole
// update.
func PatchFromFields(fields patch.Fields) (Patch, error) {
	var p Patch
	for name, value := range fields {
		var err error
		switch strings.ToLower(name) {
		case "name":
			p.Name, err = patch.String(name, value)
		case "description":
			p.Description, err = patch.String(name, value)
		case "category":
			p.Category, err = patch.String(name, value)
		case "price":
			p.Price, err = patch.Cents(name, value)
			if err == nil && *p.Price < 0 {
				p.Price = nil
				err = &patch.InvalidValueError{Field: name, Value: value}
			}
		case "status":
			status, parseErr := ParseStatus(value)
			if parseErr != nil {
				err = &patch.InvalidValueError{Field: name, Value: value}
			} else {
				p.Status = &status
			}
		case "stock":
			p.Stock, err = patch.Int(name, value)
			if err == nil && *p.Stock < 0 {
				p.Stock = nil
				err = &patch.InvalidValueError{Field: name, Value: value}
			}
		default:
			err = &patch.UnknownFieldError{Name: name}
		}
		if err != nil {
			return Patch{}, err
		}
	}
	return p, nil
}
