package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/renderer"
	"github.com/shopspring/decimal"
)

type priceCmd struct {
	date string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "resolve the price of stocks" }
func (*priceCmd) Usage() string {
	return `algo price [-date <date>] <symbol>...

Resolves the price of stocks of the universe the way a rebalance does: the last
close on or before the date, falling back to an estimate when no candle could
be found.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "Price date, today by default")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := asOf(c.date)
	if err != nil {
		return failure("%v", err)
	}
	a, err := newApp()
	if err != nil {
		return failure("%v", err)
	}
	r, err := a.rebalancer()
	if err != nil {
		return failure("%v", err)
	}

	var lines []renderer.PriceLine
	for _, symbol := range f.Args() {
		line := renderer.PriceLine{Symbol: symbol}
		in, ok := r.Universe.Lookup(symbol)
		if !ok {
			line.Err = fmt.Errorf("not in the universe")
			lines = append(lines, line)
			continue
		}
		line.Price, err = r.Prices.Resolve(ctx, in.Key, on)
		switch {
		case errors.Is(err, algo.ErrPriceUnavailable):
			line.Price, line.Estimated = algo.FallbackPrice(symbol, decimal.Zero), true
		case err != nil:
			return failure("%v", err)
		}
		lines = append(lines, line)
	}
	printMarkdown(renderer.PriceMarkdown(on, lines))
	return subcommands.ExitSuccess
}
