package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/perryizgr8/algo/renderer"
	"github.com/perryizgr8/algo/universe"
)

type updateUniverseCmd struct {
	force  bool
	dryRun bool
}

func (*updateUniverseCmd) Name() string     { return "update-universe" }
func (*updateUniverseCmd) Synopsis() string { return "refresh the universe from the NIFTY 200 constituents" }
func (*updateUniverseCmd) Usage() string {
	return `algo update-universe [-force] [-dry-run]

Downloads the NIFTY 200 constituents from NSE and the Upstox instrument master,
matches them by symbol and rewrites the universe file. The previous file is
copied to the backup folder first.

The update is aborted when less than 90% of the constituents are matched,
unless -force is set. See 'algo topic universe'.
`
}

func (c *updateUniverseCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Write the universe even with a low coverage")
	f.BoolVar(&c.dryRun, "dry-run", false, "Print the changes without writing anything")
}

func (c *updateUniverseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		return failure("%v", err)
	}
	client, err := a.client(false)
	if err != nil {
		return failure("%v", err)
	}
	u := &universe.Updater{Instruments: client, BackupDir: a.cfg.BackupDir}
	res, err := u.Update(ctx, a.cfg.Universe, universe.UpdateOptions{Force: c.force, DryRun: c.dryRun})
	if res != nil {
		printMarkdown(renderer.UpdateMarkdown(a.cfg.Universe, res))
	}
	if errors.Is(err, universe.ErrLowCoverage) {
		fmt.Fprintln(os.Stderr, "Use -force to write the universe anyway.")
	}
	if err != nil {
		return failure("%v", err)
	}
	return subcommands.ExitSuccess
}
