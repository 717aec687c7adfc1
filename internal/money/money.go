package money

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Cents holds a monetary amount in the smallest currency unit, so price
// arithmetic never touches floating point. On the wire it reads and writes
// as a plain 2-decimal number ("19.99" <-> 1999).
type Cents int64

// Parse accepts an invariant-culture decimal string with at most two
// fractional digits. "19.99", "19.9", "19" and "-5.00" are all valid.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q: expected at most two decimals", s)
		}
		c, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		if len(frac) == 1 {
			c *= 10
		}
		cents = c
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return Cents(total), nil
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits a bare 2-decimal number, e.g. 19.99.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts both 19.99 and "19.99".
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value stores the raw cent count (BIGINT column).
func (c Cents) Value() (driver.Value, error) {
	return int64(c), nil
}

func (c *Cents) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*c = Cents(v)
		return nil
	case nil:
		*c = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into money.Cents", src)
	}
}
