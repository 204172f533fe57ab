package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/perryizgr8/algo/renderer"
)

type cacheCmd struct{}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "inspect or clear the market data cache" }
func (*cacheCmd) Usage() string {
	return `algo cache stats
algo cache clear [-expired]

stats prints the number of cached responses, valid and expired.
clear removes every cached response, or only the expired ones with -expired.
`
}

func (c *cacheCmd) SetFlags(f *flag.FlagSet) {}

func (c *cacheCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		return failure("%v", err)
	}

	switch action, args := f.Arg(0), f.Args()[1:]; action {
	case "stats":
		stats, err := a.cache.Stats()
		if err != nil {
			return failure("%v", err)
		}
		printMarkdown(renderer.CacheStatsMarkdown(stats))

	case "clear":
		clearFlags := flag.NewFlagSet("clear", flag.ContinueOnError)
		expired := clearFlags.Bool("expired", false, "Only remove the expired responses")
		if err := clearFlags.Parse(args); err != nil {
			return subcommands.ExitUsageError
		}
		clean := a.cache.ClearAll
		if *expired {
			clean = a.cache.ClearExpired
		}
		n, err := clean()
		if err != nil {
			return failure("%v", err)
		}
		fmt.Printf("Removed %d cached responses from %s\n", n, a.cache.Dir())

	default:
		fmt.Printf("unknown cache action %q\n", action)
		f.Usage()
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}
