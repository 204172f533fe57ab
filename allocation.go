package algo

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Prices maps symbols to their current unit price.
type Prices map[string]Money

// Lookup returns the price of a symbol, if known and positive.
func (p Prices) Lookup(symbol string) (Money, bool) {
	price, ok := p[symbol]
	return price, ok && price.IsPositive()
}

// Allocation is the cash amount planned for one symbol.
type Allocation struct {
	Symbol string
	Amount Money
	// Weight is the priority weight used to share the remainder, zero in degraded mode.
	Weight decimal.Decimal
}

// AllocationPlan is the split of the available cash across the buy list.
// Its Total never exceeds the cash it was computed from.
type AllocationPlan struct {
	Allocations []Allocation // in buy list order
	// Skipped lists the symbols left out: no price, or too expensive for the guarantee phase.
	Skipped []string
	// Degraded reports that no symbol had a price and the cash was split equally.
	Degraded bool
}

// Total returns the sum of the planned amounts.
func (p AllocationPlan) Total() (total Money) {
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// Amount returns the amount planned for a symbol, zero if none.
func (p AllocationPlan) Amount(symbol string) Money {
	for _, a := range p.Allocations {
		if a.Symbol == symbol {
			return a.Amount
		}
	}
	return Money{}
}

// Weight parameters of the remainder phase: w_i = FirstWeight × WeightDecay^i.
var (
	FirstWeight = decimal.NewFromInt(20)
	WeightDecay = decimal.RequireFromString("0.8")
)

// Weights returns the n decaying priority weights, best rank first.
func Weights(n int) []decimal.Decimal {
	weights := make([]decimal.Decimal, n)
	w := FirstWeight
	for i := range weights {
		weights[i] = w
		w = w.Mul(WeightDecay)
	}
	return weights
}

// Allocate splits cash across the ranked buy list.
//
// The guarantee phase walks the list in rank order and reserves one unit's
// price for every symbol still affordable with the remaining cash. The
// remainder is then shared among those symbols proportionally to Weights.
// Every share is truncated to the currency minor unit, so the plan never spends
// more than cash.
//
// Symbols without a price are skipped. If none has a price, cash is split
// equally across the whole list and the plan is marked Degraded.
func Allocate(buy []string, prices Prices, cash Money) AllocationPlan {
	plan := AllocationPlan{Allocations: []Allocation{}}
	buy = unique(buy)
	if len(buy) == 0 || !cash.IsPositive() {
		return plan
	}

	var priced []string
	for _, s := range buy {
		if _, ok := prices.Lookup(s); ok {
			priced = append(priced, s)
		} else {
			plan.Skipped = append(plan.Skipped, s)
		}
	}
	if len(priced) == 0 {
		share := M(cash.Decimal().Div(decimal.NewFromInt(int64(len(buy))))).Truncate()
		plan.Skipped = nil
		plan.Degraded = true
		for _, s := range buy {
			plan.Allocations = append(plan.Allocations, Allocation{Symbol: s, Amount: share})
		}
		return plan
	}

	// guarantee phase
	remaining := cash
	for _, s := range priced {
		price, _ := prices.Lookup(s)
		if price.GreaterThan(remaining) {
			plan.Skipped = append(plan.Skipped, s)
			continue
		}
		remaining = remaining.Sub(price)
		plan.Allocations = append(plan.Allocations, Allocation{Symbol: s, Amount: price})
	}
	// keep Skipped in buy list order
	order := indexOf(buy)
	slices.SortStableFunc(plan.Skipped, func(a, b string) int { return order[a] - order[b] })
	if len(plan.Allocations) == 0 || !remaining.IsPositive() {
		return plan
	}

	// weighted remainder phase
	weights := Weights(len(plan.Allocations))
	total := decimal.Sum(decimal.Zero, weights...)
	for i := range plan.Allocations {
		a := &plan.Allocations[i]
		a.Weight = weights[i]
		share := M(remaining.Decimal().Mul(weights[i]).Div(total)).Truncate()
		a.Amount = a.Amount.Add(share)
	}
	return plan
}

// Purchase is a number of units bought at a price.
type Purchase struct {
	Symbol string
	Units  Units
	Price  Money
	// Estimated reports that Price is a fallback estimate, not a market price.
	Estimated bool
}

// Cost returns the cash spent.
func (p Purchase) Cost() Money { return p.Price.Mul(p.Units) }

// UnitsFor converts a plan into whole unit purchases: units = floor(amount / price).
// Symbols without price or worth less than one unit are left out.
func UnitsFor(plan AllocationPlan, prices Prices) []Purchase {
	var purchases []Purchase
	for _, a := range plan.Allocations {
		price, ok := prices.Lookup(a.Symbol)
		if !ok {
			continue
		}
		if units := a.Amount.UnitsFor(price); units > 0 {
			purchases = append(purchases, Purchase{Symbol: a.Symbol, Units: units, Price: price})
		}
	}
	return purchases
}

// DefaultRedistributionThreshold is the cash left idle by Redistribute.
var DefaultRedistributionThreshold = M(1000)

// Redistribute spends the ledger cash above threshold on additional units of
// the held stocks.
//
// Stocks are visited by ascending price (then symbol) in round-robin passes;
// each visit buys one unit if the cash is above threshold and covers the price.
// It stops when a pass buys nothing. Stocks without a price are left out.
// The returned purchases are aggregated per symbol, in first purchase order.
//
// The threshold gates each purchase, it is not a floor on the remaining cash:
// a purchase may leave less than threshold behind. With 5000 in cash, a
// threshold of 1000 and prices of 1000 and 1200, it buys 2 units of each and
// ends with 600.
func Redistribute(l *Ledger, prices Prices, threshold Money) []Purchase {
	type candidate struct {
		symbol string
		price  Money
	}
	var candidates []candidate
	for _, s := range l.Stocks() {
		if price, ok := prices.Lookup(s.Symbol); ok {
			candidates = append(candidates, candidate{s.Symbol, price})
		}
	}
	slices.SortFunc(candidates, func(a, b candidate) int {
		if c := a.price.Cmp(b.price); c != 0 {
			return c
		}
		return strings.Compare(a.symbol, b.symbol)
	})

	var purchases []Purchase
	bought := map[string]int{}
	cash := l.Cash()
	for progress := true; progress; {
		progress = false
		for _, c := range candidates {
			if !cash.GreaterThan(threshold) {
				break
			}
			if c.price.GreaterThan(cash) {
				continue
			}
			if err := l.ApplyRedistribution(c.symbol, 1); err != nil {
				continue
			}
			cash = cash.Sub(c.price)
			progress = true
			if i, ok := bought[c.symbol]; ok {
				purchases[i].Units++
				continue
			}
			bought[c.symbol] = len(purchases)
			purchases = append(purchases, Purchase{Symbol: c.symbol, Units: 1, Price: c.price})
		}
	}
	l.SetCash(cash)
	return purchases
}

func unique(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	res := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if !seen[s] {
			seen[s] = true
			res = append(res, s)
		}
	}
	return res
}

func indexOf(symbols []string) map[string]int {
	m := make(map[string]int, len(symbols))
	for i, s := range symbols {
		m[s] = i
	}
	return m
}
