package algo

import (
	"fmt"
	"iter"
	"strings"
)

// CashSymbol is the reserved ledger symbol holding the uninvested cash.
// It is never a valid stock symbol.
const CashSymbol = "CASH"

// Instrument is a tradable equity of the universe.
type Instrument struct {
	Symbol string // exchange ticker, like "RELIANCE"
	Key    string // data provider identifier, like "NSE_EQ|INE002A01018"
	Name   string
	ISIN   string
}

// Universe is the ordered set of instruments eligible for ranking.
type Universe struct {
	instruments []Instrument
	bySymbol    map[string]int
}

// NewUniverse builds a Universe. Symbols must be unique and none can be the CASH symbol.
func NewUniverse(instruments []Instrument) (*Universe, error) {
	u := &Universe{bySymbol: make(map[string]int, len(instruments))}
	for _, in := range instruments {
		in.Symbol = strings.TrimSpace(in.Symbol)
		in.Key = strings.TrimSpace(in.Key)
		if in.Symbol == "" {
			return nil, fmt.Errorf("instrument with key %q has no symbol", in.Key)
		}
		if strings.EqualFold(in.Symbol, CashSymbol) {
			return nil, fmt.Errorf("%q is a reserved symbol", in.Symbol)
		}
		if in.Key == "" {
			return nil, fmt.Errorf("instrument %q has no instrument key", in.Symbol)
		}
		if _, exists := u.bySymbol[in.Symbol]; exists {
			return nil, fmt.Errorf("duplicate symbol %q in universe", in.Symbol)
		}
		u.bySymbol[in.Symbol] = len(u.instruments)
		u.instruments = append(u.instruments, in)
	}
	return u, nil
}

// Len returns the number of instruments.
func (u *Universe) Len() int { return len(u.instruments) }

// All iterates over the instruments in universe order.
func (u *Universe) All() iter.Seq[Instrument] {
	return func(yield func(Instrument) bool) {
		for _, in := range u.instruments {
			if !yield(in) {
				return
			}
		}
	}
}

// Instruments returns a copy of the instruments.
func (u *Universe) Instruments() []Instrument {
	return append([]Instrument(nil), u.instruments...)
}

// Lookup returns the instrument of a symbol.
func (u *Universe) Lookup(symbol string) (Instrument, bool) {
	i, ok := u.bySymbol[symbol]
	if !ok {
		return Instrument{}, false
	}
	return u.instruments[i], true
}
