package algo

import (
	"context"
	"math"

	"github.com/perryizgr8/algo/date"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// Metrics summarizes the performance of a value series.
type Metrics struct {
	TotalReturn      float64 // (final - initial) / initial
	AnnualizedReturn float64
	Volatility       float64 // annualized standard deviation of the monthly returns
	Sharpe           float64 // annualized return over volatility, 0 without volatility
}

// Performance is the value series of a strategy over a backtest.
type Performance struct {
	Strategy Strategy
	Values   []Money // portfolio value on each rebalance date
	Metrics  Metrics
}

// BacktestResult gathers the performance of every strategy.
type BacktestResult struct {
	Capital      Money
	Dates        []date.Date
	Performances []Performance
}

// Backtest replays monthly rebalances from an initial capital. Portfolios live in
// memory only.
type Backtest struct {
	Rebalancer *Rebalancer
	Capital    Money
}

// Run rebalances every strategy on each monthly anniversary of r.From up to r.To.
func (b *Backtest) Run(ctx context.Context, strategies []Strategy, r date.Range) (*BacktestResult, error) {
	res := &BacktestResult{Capital: b.Capital, Dates: r.Months()}
	ledgers := make([]*Ledger, len(strategies))
	for i, s := range strategies {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		ledgers[i] = NewLedger(b.Capital)
		res.Performances = append(res.Performances, Performance{Strategy: s})
	}
	for month, day := range res.Dates {
		log.Info().Int("month", month+1).Stringer("date", day).Msg("backtest rebalance")
		for i, s := range strategies {
			report, err := b.Rebalancer.Rebalance(ctx, ledgers[i], s, day, nil)
			if err != nil {
				return nil, err
			}
			p := &res.Performances[i]
			p.Values = append(p.Values, report.Value)
		}
	}
	for i := range res.Performances {
		p := &res.Performances[i]
		p.Metrics = ComputeMetrics(b.Capital, res.Dates, p.Values)
	}
	return res, nil
}

// ComputeMetrics computes the metrics of values observed on dates, starting from initial.
func ComputeMetrics(initial Money, dates []date.Date, values []Money) Metrics {
	var m Metrics
	if len(values) == 0 || !initial.IsPositive() {
		return m
	}
	start := initial.Float()
	final := values[len(values)-1].Float()
	m.TotalReturn = (final - start) / start

	if len(dates) > 1 {
		years := float64(dates[0].DaysUntil(dates[len(dates)-1])) / 365.25
		if years > 0 && final > 0 {
			m.AnnualizedReturn = math.Pow(final/start, 1/years) - 1
		}
	}

	var returns []float64
	for i := 1; i < len(values); i++ {
		prev := values[i-1].Float()
		if prev != 0 {
			returns = append(returns, (values[i].Float()-prev)/prev)
		}
	}
	if len(returns) > 0 {
		m.Volatility = math.Sqrt(stat.PopVariance(returns, nil)) * math.Sqrt(12)
	}
	if m.Volatility > 0 {
		m.Sharpe = m.AnnualizedReturn / m.Volatility
	}
	return m
}
