package cmd

import (
	"flag"
	"strings"

	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the commands and their flags for shell completion.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, c := range Commands {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(f)}
	}

	root.Sub["cache"].Sub = map[string]*complete.Command{
		"stats": {},
		"clear": {Flags: map[string]complete.Predictor{"expired": predict.Nothing}},
	}
	if topics, err := docs.Names(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}

// flagPredictors predicts the values of the flags of f.
func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	var strategies []string
	for _, s := range algo.DefaultStrategies() {
		strategies = append(strategies, s.Name)
	}

	flags := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[fl.Name] = predict.Nothing
			return
		}
		switch {
		case strings.HasPrefix(fl.Name, "strateg"):
			flags[fl.Name] = predict.Set(strategies)
		case fl.Name == "chart":
			flags[fl.Name] = predict.Files("*.png")
		case fl.Name == "html":
			flags[fl.Name] = predict.Files("*.html")
		case fl.Name == "config":
			flags[fl.Name] = predict.Files("*.yaml")
		case strings.HasSuffix(fl.Name, "-file"), strings.HasSuffix(fl.Name, "-dir"):
			flags[fl.Name] = predict.Files("*")
		default:
			flags[fl.Name] = predict.Something
		}
	})
	return flags
}
