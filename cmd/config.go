package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/cache"
	"github.com/perryizgr8/algo/upstox"
	"gopkg.in/yaml.v3"
)

// Config is the content of the configuration file.
type Config struct {
	Universe  string        `yaml:"universe"`
	CacheDir  string        `yaml:"cache_dir"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	Threshold float64       `yaml:"threshold"`  // cash left idle by the redistribution
	RateLimit float64       `yaml:"rate_limit"` // Upstox requests per second
	UpstoxURL string        `yaml:"upstox_url"`
	BackupDir string        `yaml:"backup_dir"`

	// Strategies replace the default strategy of the same name, or add to them.
	Strategies []algo.Strategy `yaml:"strategies"`
}

// DefaultConfig returns the configuration used without a configuration file.
func DefaultConfig() Config {
	return Config{
		Universe:   "ind_nifty200list.xlsx",
		CacheDir:   ".cache",
		CacheTTL:   cache.DefaultTTL,
		Threshold:  algo.DefaultRedistributionThreshold.Float(),
		RateLimit:  upstox.DefaultRateLimit,
		UpstoxURL:  upstox.DefaultBaseURL,
		BackupDir:  "backups",
		Strategies: algo.DefaultStrategies(),
	}
}

// LoadConfig reads a configuration file over the defaults. A missing file is not an error.
func LoadConfig(file string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read configuration: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("invalid configuration %q: %w", file, err)
	}
	cfg.merge(loaded)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration %q: %w", file, err)
	}
	return cfg, nil
}

// merge overrides c with the fields set in o.
func (c *Config) merge(o Config) {
	if o.Universe != "" {
		c.Universe = o.Universe
	}
	if o.CacheDir != "" {
		c.CacheDir = o.CacheDir
	}
	if o.CacheTTL != 0 {
		c.CacheTTL = o.CacheTTL
	}
	if o.Threshold != 0 {
		c.Threshold = o.Threshold
	}
	if o.RateLimit != 0 {
		c.RateLimit = o.RateLimit
	}
	if o.UpstoxURL != "" {
		c.UpstoxURL = o.UpstoxURL
	}
	if o.BackupDir != "" {
		c.BackupDir = o.BackupDir
	}
	for _, s := range o.Strategies {
		s = s.Normalize()
		if i := c.strategy(s.Name); i >= 0 {
			c.Strategies[i] = s
		} else {
			c.Strategies = append(c.Strategies, s)
		}
	}
}

func (c *Config) strategy(name string) int {
	for i, s := range c.Strategies {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative, got %v", c.Threshold)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	for _, s := range c.Strategies {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
