package algo

import (
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/perryizgr8/algo/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RankedStock is a symbol with its trailing return over the ranking window.
type RankedStock struct {
	Symbol string
	Key    string
	// Gain is the signed return as a fraction: 0.25 is +25%.
	Gain decimal.Decimal
	// Missing reports that no data was available: Gain is then 0.
	Missing bool
}

// Percent returns the gain in percents.
func (r RankedStock) Percent() Percent { return PercentOf(r.Gain) }

// Ranking is a list of stocks sorted by decreasing gain.
type Ranking []RankedStock

// Top returns the first n stocks (all of them if n exceeds the length).
func (r Ranking) Top(n int) Ranking { return r[:min(max(n, 0), len(r))] }

// Symbols returns the symbols in rank order.
func (r Ranking) Symbols() []string {
	symbols := make([]string, len(r))
	for i, s := range r {
		symbols[i] = s.Symbol
	}
	return symbols
}

// Gain returns the gain of a symbol, zero if it is not ranked.
func (r Ranking) Gain(symbol string) decimal.Decimal {
	for _, s := range r {
		if s.Symbol == symbol {
			return s.Gain
		}
	}
	return decimal.Zero
}

// Return computes the trailing return of a series: (latest close - earliest close) / earliest close.
//
// Candles can be in any order. It returns ErrNoData if the series is empty or
// starts with a non positive close.
func Return(candles []Candle) (decimal.Decimal, error) {
	closes := Closes(candles)
	if closes.Len() == 0 {
		return decimal.Zero, ErrNoData
	}
	_, first := closes.First()
	_, last := closes.Latest()
	if !first.IsPositive() {
		return decimal.Zero, ErrNoData
	}
	return last.Sub(first).Decimal().Div(first.Decimal()), nil
}

// Ranker ranks the universe by trailing return.
type Ranker struct {
	Source   CandleSource
	Interval date.Period // candle interval used for returns, Monthly by default.
	Retry    Retry
}

// NewRanker returns a ranker using monthly candles and the default retry policy.
func NewRanker(source CandleSource) *Ranker {
	return &Ranker{Source: source, Interval: date.Monthly, Retry: DefaultRetry()}
}

// Return fetches the candles of key over window and computes the trailing return.
func (r *Ranker) Return(ctx context.Context, key string, window date.Range) (decimal.Decimal, error) {
	var gain decimal.Decimal
	err := r.Retry.Do(ctx, func(attempt int) error {
		candles, err := r.Source.Candles(ctx, key, r.Interval, window)
		if err != nil {
			log.Debug().Err(err).Str("key", key).Int("attempt", attempt).Msg("candles fetch failed")
			return err
		}
		gain, err = Return(candles)
		return err
	})
	return gain, err
}

// Returns lazily computes the trailing return of every instrument of the universe.
// Instruments without data yield a zero gain and Missing set.
// Iteration stops early if ctx is done.
func (r *Ranker) Returns(ctx context.Context, u *Universe, window date.Range) iter.Seq[RankedStock] {
	return func(yield func(RankedStock) bool) {
		for in := range u.All() {
			if ctx.Err() != nil {
				return
			}
			gain, err := r.Return(ctx, in.Key, window)
			rs := RankedStock{Symbol: in.Symbol, Key: in.Key, Gain: gain}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !errors.Is(err, ErrNoData) {
					log.Warn().Err(err).Str("symbol", in.Symbol).Msg("cannot compute return, ranked at 0%")
				}
				rs.Gain, rs.Missing = decimal.Zero, true
			}
			if !yield(rs) {
				return
			}
		}
	}
}

// Rank computes the ranking of the universe over the weeks preceding asOf.
//
// The sort is stable: ties keep the universe order. A missing series ranks as
// a 0% return. The only error is ctx's.
func (r *Ranker) Rank(ctx context.Context, u *Universe, asOf date.Date, weeks int) (Ranking, error) {
	window := date.Lookback(asOf, weeks)
	log.Info().Stringer("window", window).Int("instruments", u.Len()).Msg("ranking universe")
	ranking := make(Ranking, 0, u.Len())
	for rs := range r.Returns(ctx, u, window) {
		ranking = append(ranking, rs)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(ranking, func(a, b RankedStock) int { return b.Gain.Cmp(a.Gain) })
	return ranking, nil
}
