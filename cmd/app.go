// Package cmd implements the command line interface of the momentum rebalancer.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/cache"
	"github.com/perryizgr8/algo/date"
	"github.com/perryizgr8/algo/universe"
	"github.com/perryizgr8/algo/upstox"
	"github.com/rs/zerolog/log"
)

// EnvToken is the environment variable holding the Upstox access token.
const EnvToken = "UPSTOX_API_TOKEN"

// EnvLogLevel is the environment variable holding the default log level.
const EnvLogLevel = "ALGO_LOG_LEVEL"

// Commands are the subcommands of the application.
var Commands = []subcommands.Command{
	&runCmd{},
	&rankCmd{},
	&priceCmd{},
	&backtestCmd{},
	&updateUniverseCmd{},
	&cacheCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		group := "rebalancing"
		switch cmd.(type) {
		case *updateUniverseCmd, *cacheCmd:
			group = "data"
		case *topicCmd:
			group = "help"
		}
		c.Register(cmd, group)
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "algo.yaml", "YAML configuration file, optional")
var universeFile = flag.String("universe-file", "", "Universe file (.xlsx or .csv), overrides the configuration")
var cacheDir = flag.String("cache-dir", "", "Market data cache folder, overrides the configuration")
var cacheTTL = flag.Duration("cache-ttl", 0, "Market data cache time to live, overrides the configuration")
var upstoxToken = flag.String("upstox-token", "", "Upstox API access token, defaults to $"+EnvToken)
var logLevel = flag.String("log-level", "", "Log level: debug, info, warn or error, defaults to $"+EnvLogLevel+" or info")
var logJSON = flag.Bool("log-json", false, "Log JSON lines instead of the console output")
var plain = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")

// Setup loads the .env file and configures the logger. It must be called once flags are parsed.
func Setup() {
	// .env is optional
	_ = godotenv.Load()
	level := *logLevel
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}
	SetGlobalLogger(NewLogger(LogConfig{Level: level, JSON: *logJSON}, os.Stderr))
}

// app gathers what the commands share: configuration and market data access.
type app struct {
	cfg   Config
	cache *cache.Cache
	token string
}

// newApp loads the configuration and applies the global flags over it.
func newApp() (*app, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if *universeFile != "" {
		cfg.Universe = *universeFile
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *cacheTTL != 0 {
		cfg.CacheTTL = *cacheTTL
	}
	c, err := cache.New(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	token := *upstoxToken
	if token == "" {
		token = os.Getenv(EnvToken)
	}
	return &app{cfg: cfg, cache: c, token: token}, nil
}

// client returns an Upstox client. The token is only required for market data.
func (a *app) client(requireToken bool) (*upstox.Client, error) {
	if requireToken && a.token == "" {
		return nil, errors.New("no Upstox access token: use -upstox-token or set " + EnvToken)
	}
	return upstox.NewClient(a.token,
		upstox.WithBaseURL(a.cfg.UpstoxURL),
		upstox.WithRateLimit(a.cfg.RateLimit),
		upstox.WithCache(a.cache),
	), nil
}

// universe loads the universe file.
func (a *app) universe() (*algo.Universe, error) {
	u, err := universe.Open(a.cfg.Universe)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", a.cfg.Universe).Int("instruments", u.Len()).Msg("universe loaded")
	return u, nil
}

// rebalancer loads the universe and returns a rebalancer reading market data from Upstox.
func (a *app) rebalancer() (*algo.Rebalancer, error) {
	u, err := a.universe()
	if err != nil {
		return nil, err
	}
	client, err := a.client(true)
	if err != nil {
		return nil, err
	}
	r := algo.NewRebalancer(u, client)
	r.Threshold = algo.M(a.cfg.Threshold)
	return r, nil
}

// strategy returns the configured strategy named name.
func (a *app) strategy(name string) (algo.Strategy, error) {
	return algo.FindStrategy(a.cfg.Strategies, name)
}

// asOf parses a date flag, today if empty.
func asOf(value string) (date.Date, error) {
	if value == "" {
		return date.Today(), nil
	}
	return date.Parse(value)
}

// printMarkdown prints md on stdout, rendered for the terminal when stdout is one.
func printMarkdown(md string) {
	if *plain || !isTerminal(os.Stdout) {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	log.Debug().Err(err).Msg("cannot render markdown")
	fmt.Print(md)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// failure prints a diagnostic on stderr.
func failure(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
