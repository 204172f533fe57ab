package algo

// Position is a ledger line: either a Stock or the CashBalance.
type Position interface {
	position()
}

// Stock is a holding of whole units of a symbol.
type Stock struct {
	Symbol string
	Units  Units
}

// CashBalance is the uninvested cash. It is an amount, never a unit count.
type CashBalance struct {
	Amount Money
}

func (Stock) position()       {}
func (CashBalance) position() {}
