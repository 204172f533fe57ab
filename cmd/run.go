package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/renderer"
	"github.com/rs/zerolog/log"
)

type runCmd struct {
	strategy   string
	date       string
	dryRun     bool
	clearCache bool
	cash       float64
	html       string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "rebalance a strategy portfolio" }
func (*runCmd) Usage() string {
	return `algo run [-strategy 12m] [-dry-run] [-clear-cache] [-cash <amount>] [-html <file>]

Runs one rebalance cycle of the strategy portfolio: ranks the universe, sells
the stocks that dropped out of the hold rank, buys the top ranked stocks and
spends the leftover cash on extra units of the cheapest held stocks.

The portfolio file is saved after the purchases and after the redistribution,
unless -dry-run is set. See 'algo topic rebalance'.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategy, "strategy", "12m", "Strategy to run")
	f.StringVar(&c.date, "date", "", "Rebalance date, today by default")
	f.BoolVar(&c.dryRun, "dry-run", false, "Compute the rebalance without saving the portfolio")
	f.BoolVar(&c.clearCache, "clear-cache", false, "Remove every cached response before running")
	f.Float64Var(&c.cash, "cash", 0, "Cash deposited in the portfolio before rebalancing")
	f.StringVar(&c.html, "html", "", "Also write the report as an HTML page to this file")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.cash < 0 {
		return failure("-cash must not be negative, got %v", c.cash)
	}
	on, err := asOf(c.date)
	if err != nil {
		return failure("%v", err)
	}
	a, err := newApp()
	if err != nil {
		return failure("%v", err)
	}
	s, err := a.strategy(c.strategy)
	if err != nil {
		return failure("%v", err)
	}

	clean := a.cache.ClearExpired
	if c.clearCache {
		clean = a.cache.ClearAll
	}
	if n, err := clean(); err != nil {
		log.Warn().Err(err).Msg("cannot clean the cache")
	} else if n > 0 {
		log.Info().Int("removed", n).Msg("cache cleaned")
	}

	r, err := a.rebalancer()
	if err != nil {
		return failure("%v", err)
	}
	report, err := r.Run(ctx, s, algo.RunOptions{AsOf: on, Deposit: algo.M(c.cash), DryRun: c.dryRun})
	if err != nil {
		return failure("rebalance %s failed: %v", s.Name, err)
	}

	md := renderer.RenderReport(report, renderer.ReportRenderOptions{})
	printMarkdown(md)

	if c.html != "" {
		page, err := renderer.HTMLPage(fmt.Sprintf("Rebalance %s on %s", s.Name, on), md)
		if err != nil {
			return failure("%v", err)
		}
		if err := os.WriteFile(c.html, []byte(page), 0644); err != nil {
			return failure("cannot write report: %v", err)
		}
		log.Info().Str("file", c.html).Msg("report written")
	}
	return subcommands.ExitSuccess
}
