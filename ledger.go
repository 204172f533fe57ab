package algo

import (
	"fmt"
	"slices"
	"strings"
)

// Ledger is the portfolio: stock holdings plus a single cash balance.
//
// A symbol appears at most once. Stocks keep their insertion order.
type Ledger struct {
	stocks []Stock
	cash   Money
}

// NewLedger returns an empty ledger holding cash.
func NewLedger(cash Money) *Ledger { return &Ledger{cash: cash} }

// Positions returns the stocks, in ledger order, followed by the cash balance.
func (l *Ledger) Positions() []Position {
	positions := make([]Position, 0, len(l.stocks)+1)
	for _, s := range l.stocks {
		positions = append(positions, s)
	}
	return append(positions, CashBalance{Amount: l.cash})
}

// Stocks returns a copy of the stock holdings.
func (l *Ledger) Stocks() []Stock { return slices.Clone(l.stocks) }

// Symbols returns the held symbols in ledger order.
func (l *Ledger) Symbols() []string {
	symbols := make([]string, len(l.stocks))
	for i, s := range l.stocks {
		symbols[i] = s.Symbol
	}
	return symbols
}

// Units returns the units held for symbol, and whether it is held.
func (l *Ledger) Units(symbol string) (Units, bool) {
	i := l.index(symbol)
	if i < 0 {
		return 0, false
	}
	return l.stocks[i].Units, true
}

// Cash returns the cash balance.
func (l *Ledger) Cash() Money { return l.cash }

// SetCash replaces the cash balance.
func (l *Ledger) SetCash(cash Money) { l.cash = cash }

// Deposit adds amount to the cash balance.
func (l *Ledger) Deposit(amount Money) { l.cash = l.cash.Add(amount) }

// Value returns the cash plus every stock valued at its price. Stocks without price count for nothing.
func (l *Ledger) Value(prices Prices) Money {
	total := l.cash
	for _, s := range l.stocks {
		if price, ok := prices.Lookup(s.Symbol); ok {
			total = total.Add(price.Mul(s.Units))
		}
	}
	return total
}

// ApplySell removes a stock and returns the units it held.
func (l *Ledger) ApplySell(symbol string) (Units, error) {
	i := l.index(symbol)
	if i < 0 {
		return 0, fmt.Errorf("cannot sell %q: not in portfolio", symbol)
	}
	units := l.stocks[i].Units
	l.stocks = slices.Delete(l.stocks, i, i+1)
	return units, nil
}

// ApplyBuy adds units of a stock, creating the position if needed.
func (l *Ledger) ApplyBuy(symbol string, units Units) error {
	if err := validSymbol(symbol); err != nil {
		return err
	}
	if units < 0 {
		return fmt.Errorf("cannot buy %s units of %q", units, symbol)
	}
	if i := l.index(symbol); i >= 0 {
		l.stocks[i].Units += units
		return nil
	}
	l.stocks = append(l.stocks, Stock{Symbol: symbol, Units: units})
	return nil
}

// ApplyRedistribution adds delta units to an existing position.
func (l *Ledger) ApplyRedistribution(symbol string, delta Units) error {
	i := l.index(symbol)
	if i < 0 {
		return fmt.Errorf("cannot redistribute to %q: not in portfolio", symbol)
	}
	if delta < 0 {
		return fmt.Errorf("cannot redistribute %s units to %q", delta, symbol)
	}
	l.stocks[i].Units += delta
	return nil
}

func (l *Ledger) index(symbol string) int {
	return slices.IndexFunc(l.stocks, func(s Stock) bool { return s.Symbol == symbol })
}

func validSymbol(symbol string) error {
	switch {
	case strings.TrimSpace(symbol) == "":
		return fmt.Errorf("empty symbol")
	case strings.EqualFold(symbol, CashSymbol):
		return fmt.Errorf("%q is reserved for the cash balance", symbol)
	}
	return nil
}
