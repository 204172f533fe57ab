package algo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/perryizgr8/algo/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Sale is a position sold in full.
type Sale struct {
	Symbol string
	Units  Units
	Price  Money
	// Estimated reports that Price is a fallback estimate, not a market price.
	Estimated bool
}

// Proceeds returns the cash received.
func (s Sale) Proceeds() Money { return s.Price.Mul(s.Units) }

// Report describes one rebalance cycle.
type Report struct {
	Strategy Strategy
	AsOf     date.Date
	Ranking  Ranking
	Decision Decision
	Sales    []Sale
	// Available is the cash available for buying, after sales.
	Available      Money
	Plan           AllocationPlan
	Purchases      []Purchase
	Redistribution []Purchase
	// Unpriced lists the symbols whose price could not be resolved.
	Unpriced []string
	Ledger   *Ledger
	// Prices are the resolved market prices of the held stocks.
	Prices Prices
	// Value is the ledger value at Prices, after the cycle.
	Value Money
	// DryRun reports that nothing was persisted.
	DryRun bool
}

// Spent returns the cash spent in purchases and redistribution.
func (r *Report) Spent() Money {
	var total Money
	for _, p := range r.Purchases {
		total = total.Add(p.Cost())
	}
	for _, p := range r.Redistribution {
		total = total.Add(p.Cost())
	}
	return total
}

// Proceeds returns the cash received from sales.
func (r *Report) Proceeds() Money {
	var total Money
	for _, s := range r.Sales {
		total = total.Add(s.Proceeds())
	}
	return total
}

// Rebalancer runs rebalance cycles.
type Rebalancer struct {
	Universe  *Universe
	Ranker    *Ranker
	Prices    *PriceResolver
	Threshold Money // cash left idle by the redistribution
}

// NewRebalancer returns a rebalancer reading candles from source with default settings.
func NewRebalancer(u *Universe, source CandleSource) *Rebalancer {
	return &Rebalancer{
		Universe:  u,
		Ranker:    NewRanker(source),
		Prices:    NewPriceResolver(source),
		Threshold: DefaultRedistributionThreshold,
	}
}

// RunOptions tunes Run.
type RunOptions struct {
	AsOf    date.Date // today if zero
	Deposit Money     // cash added to the portfolio before rebalancing
	DryRun  bool      // compute without saving the portfolio
}

// Run loads the strategy portfolio, rebalances it and saves it, unless DryRun.
func (r *Rebalancer) Run(ctx context.Context, s Strategy, opts RunOptions) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = date.Today()
	}
	l, err := LoadLedger(s.PortfolioFile)
	if err != nil {
		return nil, err
	}
	if !opts.Deposit.IsZero() {
		l.Deposit(opts.Deposit)
		log.Info().Stringer("amount", opts.Deposit).Msg("cash deposited")
	}
	var persist func(*Ledger) error
	if !opts.DryRun {
		persist = func(l *Ledger) error { return SaveLedger(s.PortfolioFile, l) }
	}
	report, err := r.Rebalance(ctx, l, s, asOf, persist)
	if report != nil {
		report.DryRun = opts.DryRun
	}
	return report, err
}

// Rebalance runs one cycle on l: rank, decide, sell, allocate, buy, redistribute.
//
// persist, if not nil, is called after the buys and again after the
// redistribution. A symbol whose price cannot be resolved is skipped; only
// persistence failures and ctx cancellation abort the cycle.
func (r *Rebalancer) Rebalance(ctx context.Context, l *Ledger, s Strategy, asOf date.Date, persist func(*Ledger) error) (*Report, error) {
	logger := log.With().Str("strategy", s.Name).Stringer("date", asOf).Logger()
	report := &Report{Strategy: s, AsOf: asOf, Ledger: l, Prices: Prices{}}

	ranking, err := r.Ranker.Rank(ctx, r.Universe, asOf, s.LookbackWeeks)
	if err != nil {
		return report, err
	}
	report.Ranking = ranking
	report.Decision = Decide(l.Symbols(), ranking.Top(s.TopK).Symbols(), ranking.Top(s.HoldK).Symbols())
	logger.Info().Int("buy", len(report.Decision.Buy)).Int("sell", len(report.Decision.Sell)).Int("hold", len(report.Decision.Hold)).Msg("decision")

	// sells
	for _, symbol := range report.Decision.Sell {
		price, estimated, err := r.priceOrEstimate(ctx, symbol, asOf, ranking.Gain(symbol))
		if err != nil {
			return report, err
		}
		units, err := l.ApplySell(symbol)
		if err != nil {
			logger.Warn().Err(err).Msg("sell skipped")
			continue
		}
		sale := Sale{Symbol: symbol, Units: units, Price: price, Estimated: estimated}
		l.Deposit(sale.Proceeds())
		report.Sales = append(report.Sales, sale)
		if !estimated {
			report.Prices[symbol] = price
		}
		logger.Info().Str("symbol", symbol).Stringer("units", units).Stringer("price", price).Msg("sold")
	}

	// allocation
	report.Available = l.Cash()
	buyPrices := Prices{}
	for _, symbol := range report.Decision.Buy {
		price, err := r.resolve(ctx, symbol, asOf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logger.Warn().Err(err).Str("symbol", symbol).Msg("not priced, skipped from allocation")
			report.Unpriced = append(report.Unpriced, symbol)
			continue
		}
		buyPrices[symbol] = price
		report.Prices[symbol] = price
	}
	report.Plan = Allocate(report.Decision.Buy, buyPrices, report.Available)

	// buys
	estimated := report.Plan.Degraded
	if estimated {
		logger.Warn().Msg("no buy candidate could be priced, cash split equally at estimated prices")
		buyPrices = Prices{}
		for _, symbol := range report.Decision.Buy {
			buyPrices[symbol] = FallbackPrice(symbol, ranking.Gain(symbol))
		}
	}
	for _, p := range UnitsFor(report.Plan, buyPrices) {
		if err := l.ApplyBuy(p.Symbol, p.Units); err != nil {
			logger.Warn().Err(err).Msg("buy skipped")
			continue
		}
		p.Estimated = estimated
		l.SetCash(l.Cash().Sub(p.Cost()))
		report.Purchases = append(report.Purchases, p)
		logger.Info().Str("symbol", p.Symbol).Stringer("units", p.Units).Stringer("price", p.Price).Msg("bought")
	}
	if persist != nil {
		if err := persist(l); err != nil {
			return report, err
		}
	}

	// redistribution
	for _, symbol := range l.Symbols() {
		if _, ok := report.Prices[symbol]; ok || slices.Contains(report.Unpriced, symbol) {
			continue
		}
		price, err := r.resolve(ctx, symbol, asOf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logger.Warn().Err(err).Str("symbol", symbol).Msg("not priced, skipped from redistribution")
			report.Unpriced = append(report.Unpriced, symbol)
			continue
		}
		report.Prices[symbol] = price
	}
	report.Redistribution = Redistribute(l, report.Prices, r.Threshold)
	if persist != nil {
		if err := persist(l); err != nil {
			return report, err
		}
	}
	report.Value = l.Value(report.Prices)
	logger.Info().Stringer("cash", l.Cash()).Stringer("value", report.Value).Msg("rebalanced")
	return report, nil
}

// resolve returns the market price of a symbol of the universe.
func (r *Rebalancer) resolve(ctx context.Context, symbol string, asOf date.Date) (Money, error) {
	in, ok := r.Universe.Lookup(symbol)
	if !ok {
		return Money{}, fmt.Errorf("%w: %q is not in the universe", ErrPriceUnavailable, symbol)
	}
	return r.Prices.Resolve(ctx, in.Key, asOf)
}

// priceOrEstimate returns the market price of a symbol, or its fallback estimate.
func (r *Rebalancer) priceOrEstimate(ctx context.Context, symbol string, asOf date.Date, gain decimal.Decimal) (Money, bool, error) {
	price, err := r.resolve(ctx, symbol, asOf)
	switch {
	case err == nil:
		return price, false, nil
	case errors.Is(err, ErrPriceUnavailable):
		price = FallbackPrice(symbol, gain)
		log.Warn().Str("symbol", symbol).Stringer("estimate", price).Msg("price not available, using estimated price")
		return price, true, nil
	default:
		return Money{}, false, err
	}
}
