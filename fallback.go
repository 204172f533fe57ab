package algo

import "github.com/shopspring/decimal"

// Base prices used by FallbackPrice, per capitalization tier.
var (
	LargeCapBase = M(2000)
	MidCapBase   = M(500)
	DefaultBase  = M(1000)
)

var largeCaps = map[string]bool{
	"RELIANCE": true, "TCS": true, "HDFCBANK": true, "ICICIBANK": true, "INFY": true,
	"HINDUNILVR": true, "ITC": true, "SBIN": true, "BHARTIARTL": true, "KOTAKBANK": true,
	"LT": true, "BAJFINANCE": true, "ASIANPAINT": true, "MARUTI": true, "HCLTECH": true,
	"AXISBANK": true, "SUNPHARMA": true, "TITAN": true, "ULTRACEMCO": true, "NESTLEIND": true,
}

var midCaps = map[string]bool{
	"TATAPOWER": true, "IDFCFIRSTB": true, "ASHOKLEY": true, "FEDERALBNK": true, "BHEL": true,
	"GAIL": true, "NHPC": true, "PNB": true, "BANKBARODA": true, "CANBK": true,
	"SAIL": true, "IRFC": true, "YESBANK": true, "IOC": true, "NMDC": true,
}

var (
	strongGain = decimal.RequireFromString("0.5")
	goodGain   = decimal.RequireFromString("0.2")
	badGain    = decimal.RequireFromString("-0.2")
)

// FallbackPrice estimates a price when no market price can be resolved.
//
// The estimate is a tier base price scaled by the recent gain: ×1.5 above +50%,
// ×1.2 above +20%, ×0.8 below -20%. It is always positive.
func FallbackPrice(symbol string, gain decimal.Decimal) Money {
	base := DefaultBase
	switch {
	case largeCaps[symbol]:
		base = LargeCapBase
	case midCaps[symbol]:
		base = MidCapBase
	}
	switch {
	case gain.GreaterThan(strongGain):
		return base.Scale(decimal.RequireFromString("1.5"))
	case gain.GreaterThan(goodGain):
		return base.Scale(decimal.RequireFromString("1.2"))
	case gain.LessThan(badGain):
		return base.Scale(decimal.RequireFromString("0.8"))
	}
	return base
}
