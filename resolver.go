package algo

import (
	"context"
	"fmt"

	"github.com/perryizgr8/algo/date"
	"github.com/rs/zerolog/log"
)

// PriceStrategy is one way to look for a recent price: a candle interval and
// how many days back to search.
type PriceStrategy struct {
	Interval date.Period
	Days     int
}

func (s PriceStrategy) String() string { return fmt.Sprintf("%s/%dd", s.Interval, s.Days) }

// DefaultPriceStrategies are tried in order until one yields a price.
var DefaultPriceStrategies = []PriceStrategy{
	{Interval: date.Daily, Days: 10},
	{Interval: date.Daily, Days: 30},
	{Interval: date.Monthly, Days: 90},
}

// PriceResolver resolves the current price of an instrument from its most recent candle.
type PriceResolver struct {
	Source     CandleSource
	Strategies []PriceStrategy // DefaultPriceStrategies if empty
	Retry      Retry
}

// NewPriceResolver returns a resolver using the default strategies and retry policy.
func NewPriceResolver(source CandleSource) *PriceResolver {
	return &PriceResolver{Source: source, Strategies: DefaultPriceStrategies, Retry: DefaultRetry()}
}

// Resolve returns the closing price of the most recent candle on or before asOf.
//
// Strategies are tried in order, each with the retry policy. It returns an
// error wrapping ErrPriceUnavailable if none yields a candle, or the context
// error if ctx is done.
func (p *PriceResolver) Resolve(ctx context.Context, key string, asOf date.Date) (Money, error) {
	strategies := p.Strategies
	if len(strategies) == 0 {
		strategies = DefaultPriceStrategies
	}
	var last error
	for _, s := range strategies {
		var price Money
		err := p.Retry.Do(ctx, func(attempt int) error {
			candles, err := p.Source.Candles(ctx, key, s.Interval, date.LookbackDays(asOf, s.Days))
			if err != nil {
				log.Debug().Err(err).Str("key", key).Stringer("strategy", s).Int("attempt", attempt).Msg("price fetch failed")
				return err
			}
			v, ok := Closes(candles).ValueAsOf(asOf)
			if !ok {
				return ErrNoData
			}
			price = v
			return nil
		})
		if err == nil && price.IsPositive() {
			return price, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Money{}, ctxErr
		}
		if err == nil {
			err = fmt.Errorf("non positive close %s", price)
		}
		last = err
	}
	return Money{}, fmt.Errorf("%w for %q: %w", ErrPriceUnavailable, key, last)
}
