package saga

import (
	"fmt"
	"strconv"
	"strings"
)

// Amount is a monetary value in cents. On the wire it is encoded as a decimal
// string ("15.50") so that independently built participants never disagree on
// floating point rounding.
type Amount int64

// ParseAmount parses a decimal string ("15.5", "0.01", "-3") into cents.
// It never goes through float64.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	wholePart, fracPart, _ := strings.Cut(s, ".")
	if wholePart == "" {
		wholePart = "0"
	}
	whole, err := strconv.ParseUint(wholePart, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	var frac uint64
	if fracPart != "" {
		if len(fracPart) > 2 {
			return 0, fmt.Errorf("parse amount %q: more than two decimal places", s)
		}
		frac, err = strconv.ParseUint(fracPart, 10, 63)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", s, err)
		}
		if len(fracPart) == 1 {
			frac *= 10
		}
	}

	cents := int64(whole)*100 + int64(frac)
	if neg {
		cents = -cents
	}
	return Amount(cents), nil
}

// String renders the amount as a decimal string with two places.
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON encodes the amount as a JSON string, e.g. "15.50".
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts both the canonical string form and a bare JSON number
// (for payloads produced by looser serializers).
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
