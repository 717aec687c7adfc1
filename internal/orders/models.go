package orders

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"backoffice/internal/money"
)

// Status of an order. The order of the constants matters: anything past
// Processing is outside the edit window for line changes.
type Status int8

const (
	StatusNew Status = iota
	StatusProcessing
	StatusShipped
	StatusDelivered
)

var statusNames = map[Status]string{
	StatusNew:        "New",
	StatusProcessing: "Processing",
	StatusShipped:    "Shipped",
	StatusDelivered:  "Delivered",
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
	return 0, fmt.Errorf("unknown order status %q", name)
}

// EditWindowOpen reports whether line items may still be changed.
func (s Status) EditWindowOpen() bool {
	return s <= StatusProcessing
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
		return fmt.Errorf("cannot scan %T into orders.Status", src)
	}
}

// Line is one (order, product) row. Price is the product's catalog price
// snapshotted when the line was added or last edited, never live-joined.
type Line struct {
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"name,omitempty"`
	Count       int         `json:"count"`
	Price       money.Cents `json:"price"`
}

type Order struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Status     Status `json:"status"`
	Products   []Line `json:"products"`
}

// LineChange is one requested (productId, count) pair. A count of zero means
// "remove this line" in merge mode and is skipped in replace mode.
type LineChange struct {
	ProductID int64
	Count     int
}

// ParseLineChanges converts the wire shape [[productId, count], ...] into
// line changes, rejecting malformed pairs and negative counts.
func ParseLineChanges(pairs [][]int64) ([]LineChange, error) {
	changes := make([]LineChange, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("products[%d]: expected [productId, count]", i)
		}
		if pair[1] < 0 {
			return nil, fmt.Errorf("products[%d]: count must not be negative", i)
		}
		changes = append(changes, LineChange{ProductID: pair[0], Count: int(pair[1])})
	}
	return changes, nil
}
