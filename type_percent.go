package algo

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percents, for display.
type Percent float64

// PercentOf converts a fraction (0.25) into a Percent (25%).
func PercentOf(fraction decimal.Decimal) Percent {
	return Percent(fraction.Shift(2).InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
