package algo

import (
	"context"
	"errors"

	"github.com/perryizgr8/algo/date"
)

var (
	// ErrNoData reports that a price series is empty for the requested range.
	ErrNoData = errors.New("no data")
	// ErrRateLimited is matched (errors.Is) by provider errors caused by a rate limit.
	ErrRateLimited = errors.New("rate limited")
	// ErrPriceUnavailable reports that no strategy could resolve a current price.
	ErrPriceUnavailable = errors.New("price not available")
)

// Candle is a single bar of a price series. Only the closing price is used.
type Candle struct {
	Date  date.Date
	Open  Money
	High  Money
	Low   Money
	Close Money
	// Volume is the number of units traded.
	Volume int64
}

// CandleSource fetches historical candles.
//
// Candles returns the candles of the instrument identified by key, at the given
// interval, for dates within r. Order is not guaranteed. An empty result is
// returned as an empty slice, not an error.
type CandleSource interface {
	Candles(ctx context.Context, key string, interval date.Period, r date.Range) ([]Candle, error)
}

// Closes returns the closing prices as a History.
func Closes(candles []Candle) *date.History[Money] {
	h := new(date.History[Money])
	for _, c := range candles {
		h.Append(c.Date, c.Close)
	}
	return h
}
