package algo

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Units is a whole number of shares.
type Units int64

func (u Units) String() string { return strconv.FormatInt(int64(u), 10) }

// ParseUnits parses a share count.
//
// Integral decimals like "12.0" are accepted, since spreadsheets tend to write them that way.
func ParseUnits(s string) (Units, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid units %q: %w", s, err)
	}
	if !v.IsInteger() {
		return 0, fmt.Errorf("invalid units %q: not a whole number", s)
	}
	if v.IsNegative() {
		return 0, fmt.Errorf("invalid units %q: negative", s)
	}
	return Units(v.IntPart()), nil
}
