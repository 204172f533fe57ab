package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/perryizgr8/algo/docs"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `algo topic [<topic>...]

Shows the documentation of the given topics, the list of topics by default.
'*' shows every topic.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{docs.Index}
	}
	doc, err := docs.Topics(topics...)
	if err != nil {
		return failure("%v", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
