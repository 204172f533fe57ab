package algo

import (
	"fmt"
	"strings"
)

// Strategy is a named rebalancing configuration with its own portfolio file.
type Strategy struct {
	Name          string `yaml:"name"`
	LookbackWeeks int    `yaml:"lookback_weeks"`
	PortfolioFile string `yaml:"portfolio"`
	TopK          int    `yaml:"top_k"`  // number of stocks to buy
	HoldK         int    `yaml:"hold_k"` // rank under which a held stock is kept, 2×TopK by default
}

// DefaultStrategies are the 12 months and 6 months momentum strategies.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "12m", LookbackWeeks: 52, PortfolioFile: "portfolio.csv", TopK: 20, HoldK: 40},
		{Name: "6m", LookbackWeeks: 26, PortfolioFile: "portfolio6.csv", TopK: 20, HoldK: 40},
	}
}

// Normalize fills the defaults of unset fields.
func (s Strategy) Normalize() Strategy {
	if s.TopK == 0 {
		s.TopK = 20
	}
	if s.HoldK == 0 {
		s.HoldK = 2 * s.TopK
	}
	if s.PortfolioFile == "" {
		s.PortfolioFile = fmt.Sprintf("portfolio_%s.csv", s.Name)
	}
	return s
}

// Validate checks that the strategy can run.
func (s Strategy) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("strategy has no name")
	case s.LookbackWeeks <= 0:
		return fmt.Errorf("strategy %q: lookback must be positive, got %d weeks", s.Name, s.LookbackWeeks)
	case s.TopK <= 0:
		return fmt.Errorf("strategy %q: top_k must be positive, got %d", s.Name, s.TopK)
	case s.HoldK < s.TopK:
		return fmt.Errorf("strategy %q: hold_k (%d) must not be less than top_k (%d)", s.Name, s.HoldK, s.TopK)
	}
	return nil
}

// FindStrategy returns the strategy named name.
func FindStrategy(strategies []Strategy, name string) (Strategy, error) {
	var names []string
	for _, s := range strategies {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
		names = append(names, s.Name)
	}
	return Strategy{}, fmt.Errorf("unknown strategy %q, valid strategies are: %s", name, strings.Join(names, ", "))
}
