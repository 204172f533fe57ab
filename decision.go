package algo

// Decision partitions symbols into sells, holds and buys.
type Decision struct {
	Buy  []string // the top-K symbols, in rank order, including those already held
	Sell []string // held symbols outside the top-2K, in ledger order
	Hold []string // held symbols inside the top-2K but outside the top-K, in ledger order
}

// Decide computes the rebalancing decision from the currently held symbols and
// the top-K and top-2K symbols of the ranking.
//
// Buy is the whole top-K: cash is spread across every top-K stock, held or not.
// When top-K is a prefix of top-2K, a held stock belongs to exactly one of Buy, Hold or Sell.
func Decide(current, topK, top2K []string) Decision {
	inK := set(topK)
	in2K := set(top2K)
	d := Decision{Buy: append([]string{}, topK...), Sell: []string{}, Hold: []string{}}
	for _, s := range current {
		switch {
		case !in2K[s]:
			d.Sell = append(d.Sell, s)
		case !inK[s]:
			d.Hold = append(d.Hold, s)
		}
	}
	return d
}

func set(symbols []string) map[string]bool {
	m := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		m[s] = true
	}
	return m
}
