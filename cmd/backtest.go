package cmd

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/date"
	"github.com/perryizgr8/algo/renderer"
	"github.com/rs/zerolog/log"
)

// DefaultCapital is the initial capital of each backtested strategy.
const DefaultCapital = 1_000_000

type backtestCmd struct {
	strategies string
	capital    float64
	months     int
	date       string
	chart      string
}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "replay strategies over the past months" }
func (*backtestCmd) Usage() string {
	return `algo backtest [-strategies 12m,6m] [-capital 1000000] [-months 12] [-chart <file.png>]

Rebalances each strategy every month over the past months, starting from the
same capital, on portfolios kept in memory, and prints their values and
performance metrics. Portfolio files are left untouched.
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategies, "strategies", "", "Comma separated strategies to replay, all by default")
	f.Float64Var(&c.capital, "capital", DefaultCapital, "Initial capital of each strategy")
	f.IntVar(&c.months, "months", 12, "Number of months to replay")
	f.StringVar(&c.date, "date", "", "Last rebalance date, today by default")
	f.StringVar(&c.chart, "chart", "", "Also draw the values as a PNG image to this file")
}

func (c *backtestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.capital <= 0 || c.months <= 0 {
		return failure("-capital and -months must be positive")
	}
	to, err := asOf(c.date)
	if err != nil {
		return failure("%v", err)
	}
	a, err := newApp()
	if err != nil {
		return failure("%v", err)
	}
	strategies := a.cfg.Strategies
	if c.strategies != "" {
		strategies = nil
		for name := range strings.SplitSeq(c.strategies, ",") {
			s, err := a.strategy(strings.TrimSpace(name))
			if err != nil {
				return failure("%v", err)
			}
			strategies = append(strategies, s)
		}
	}
	r, err := a.rebalancer()
	if err != nil {
		return failure("%v", err)
	}

	b := &algo.Backtest{Rebalancer: r, Capital: algo.M(c.capital)}
	res, err := b.Run(ctx, strategies, date.NewRange(to.AddMonth(-c.months), to))
	if err != nil {
		return failure("backtest failed: %v", err)
	}
	printMarkdown(renderer.BacktestMarkdown(res))

	if c.chart != "" {
		out, err := os.Create(c.chart)
		if err != nil {
			return failure("%v", err)
		}
		defer out.Close()
		if err := renderer.BacktestChart(res, out); err != nil {
			return failure("cannot draw chart: %v", err)
		}
		log.Info().Str("file", c.chart).Msg("chart written")
	}
	return subcommands.ExitSuccess
}
