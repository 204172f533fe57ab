package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/perryizgr8/algo/renderer"
)

type rankCmd struct {
	strategy string
	date     string
	n        int
}

func (*rankCmd) Name() string     { return "rank" }
func (*rankCmd) Synopsis() string { return "rank the universe by return" }
func (*rankCmd) Usage() string {
	return `algo rank [-strategy 12m] [-n 20] [-date <date>]

Ranks every stock of the universe by its return over the strategy lookback
and prints the best ones. Nothing is bought or sold.
`
}

func (c *rankCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategy, "strategy", "12m", "Strategy whose lookback is used")
	f.StringVar(&c.date, "date", "", "Ranking date, today by default")
	f.IntVar(&c.n, "n", 0, "Number of stocks to print, the strategy hold rank by default")
}

func (c *rankCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	r, err := a.rebalancer()
	if err != nil {
		return failure("%v", err)
	}
	ranking, err := r.Ranker.Rank(ctx, r.Universe, on, s.LookbackWeeks)
	if err != nil {
		return failure("ranking failed: %v", err)
	}
	n := c.n
	if n <= 0 {
		n = s.HoldK
	}
	title := fmt.Sprintf("Ranking %s on %s", s.Name, on)
	printMarkdown(renderer.RankingMarkdown(title, ranking, n))
	return subcommands.ExitSuccess
}
