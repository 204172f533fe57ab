package algo

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the currency of every amount handled by the rebalancer.
const Currency = money.INR

// Money represents a monetary value in Currency.
//
// Prices are Money too: the price of one unit of a stock.
type Money struct {
	value decimal.Decimal // as major unit value
}

// M returns the Money of value major units.
func M[T float64 | int | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	}
	panic("unreachable")
}

// ParseMoney parses a decimal amount like "1234.50".
func ParseMoney(s string) (Money, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{value: v}, nil
}

// currency returns the money's currency.
func currency() *money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return money.New(0, Currency).Currency()
}

// String returns the string representation of the money value, like "₹1,234.50".
func (m Money) String() string {
	cur := currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// Decimal returns the plain decimal value, used for persistence.
func (m Money) Decimal() decimal.Decimal { return m.value }

// Float returns an approximate value for statistics and charts.
func (m Money) Float() float64 { return m.value.InexactFloat64() }

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) Cmp(n Money) int                 { return m.value.Cmp(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }

// Mul returns the value of u units priced m.
func (m Money) Mul(u Units) Money { return Money{value: m.value.Mul(decimal.NewFromInt(int64(u)))} }

// Scale multiplies m by a plain factor.
func (m Money) Scale(f decimal.Decimal) Money { return Money{value: m.value.Mul(f)} }

// Truncate drops the digits below the currency's minor unit (rounding towards zero).
func (m Money) Truncate() Money {
	return Money{value: m.value.Truncate(int32(currency().Fraction))}
}

// UnitsFor returns how many whole units priced p fit in m.
// It returns 0 if p is not positive.
func (m Money) UnitsFor(p Money) Units {
	if !p.IsPositive() || !m.IsPositive() {
		return 0
	}
	return Units(m.value.Div(p.value).Floor().IntPart())
}

// Sum returns the sum of all amounts.
func Sum(amounts ...Money) (total Money) {
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
