package shared

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is a fixed-precision amount stored as thousandths of the base
// currency unit. Matches the DECIMAL(10,3) columns the data was migrated
// from; arithmetic stays in integers end to end.
type Money int64

// moneyScale is the number of decimal places carried.
const moneyScale = 3

// ErrInvalidMoney indicates an unparsable amount.
var ErrInvalidMoney = errors.New("invalid money amount")

// ParseMoney parses a decimal string such as "12.5" or "0.375" into Money.
// More than three decimal places is rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > moneyScale {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidMoney, s, moneyScale)
	}
	for len(frac) < moneyScale {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	v := w*1000 + f
	if neg {
		v = -v
	}
	return Money(v), nil
}

// MulQty multiplies the amount by a unit count.
func (m Money) MulQty(qty int) Money {
	return m * Money(qty)
}

// String renders the amount with exactly three decimal places.
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/1000, v%1000)
}

// Float64 converts to a float for display-only contexts.
func (m Money) Float64() float64 {
	return float64(m) / 1000
}

// MarshalJSON renders Money as a decimal string to preserve precision.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted decimal strings and bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*m = 0
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
