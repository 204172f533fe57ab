package renderer

import (
	"bytes"
	"testing"
	"time"

	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/cache"
	"github.com/perryizgr8/algo/date"
	"github.com/perryizgr8/algo/universe"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(t *testing.T) *algo.Report {
	t.Helper()
	l := algo.NewLedger(algo.M(70))
	require.NoError(t, l.ApplyBuy("C", 5))
	require.NoError(t, l.ApplyBuy("A", 3))
	require.NoError(t, l.ApplyBuy("B", 8))
	return &algo.Report{
		Strategy: algo.Strategy{Name: "12m", LookbackWeeks: 52, TopK: 2, HoldK: 3},
		AsOf:     date.New(2025, 1, 31),
		Decision: algo.Decision{Buy: []string{"A", "B"}, Hold: []string{"C"}, Sell: []string{"D"}},
		Sales:    []algo.Sale{{Symbol: "D", Units: 10, Price: algo.M(90)}},
		Available: algo.M(1000),
		Plan: algo.AllocationPlan{
			Allocations: []algo.Allocation{
				{Symbol: "A", Amount: algo.M(455.56), Weight: decimal.NewFromInt(20)},
				{Symbol: "B", Amount: algo.M(364.44), Weight: decimal.NewFromInt(16)},
			},
		},
		Purchases: []algo.Purchase{
			{Symbol: "A", Units: 3, Price: algo.M(150)},
			{Symbol: "B", Units: 8, Price: algo.M(60)},
		},
		Ledger:   l,
		Prices:   algo.Prices{"A": algo.M(150), "B": algo.M(60), "C": algo.M(110)},
		Value:    algo.M(2100),
		Unpriced: []string{"Z"},
	}
}

func TestRenderReport(t *testing.T) {
	got := RenderReport(report(t), ReportRenderOptions{})

	assert.Contains(t, got, "# Rebalance 12m on 2025-01-31")
	assert.Contains(t, got, "| Buy | 2 | A, B |")
	assert.Contains(t, got, "| Hold | 1 | C |")
	assert.Contains(t, got, "| Sell | 1 | D |")
	assert.Contains(t, got, "| D | 10 | ₹90.00 | ₹900.00 |")
	assert.Contains(t, got, "| A | 20 | ₹455.56 | ₹150.00 | 3 | ₹450.00 |")
	assert.Contains(t, got, "| C | 5 | ₹110.00 | ₹550.00 |")
	assert.Contains(t, got, "| CASH | | | ₹70.00 |")
	assert.Contains(t, got, "**₹2,100.00**")
	assert.Contains(t, got, "Not priced: Z.")
	assert.NotContains(t, got, "## Redistribution")
	assert.NotContains(t, got, "error")
}

func TestRenderReportSkipTrades(t *testing.T) {
	got := RenderReport(report(t), ReportRenderOptions{SkipTrades: true})
	assert.NotContains(t, got, "## Sales")
	assert.NotContains(t, got, "## Allocation")
	assert.Contains(t, got, "## Portfolio")
}

func TestRankingMarkdown(t *testing.T) {
	r := algo.Ranking{
		{Symbol: "B", Gain: decimal.RequireFromString("0.5")},
		{Symbol: "A", Gain: decimal.RequireFromString("-0.1")},
		{Symbol: "C", Missing: true},
	}
	got := RankingMarkdown("Ranking", r, 10)
	assert.Contains(t, got, "# Ranking")
	assert.Contains(t, got, "+50.00%")
	assert.Contains(t, got, "-10.00%")
	assert.Contains(t, got, "no data")
	assert.Contains(t, got, "1 of the listed stocks had no data")

	got = RankingMarkdown("Ranking", r, 1)
	assert.NotContains(t, got, "-10.00%")
}

func TestCacheStatsMarkdown(t *testing.T) {
	got := CacheStatsMarkdown(cache.Stats{Dir: "/tmp/cache", TTL: 24 * time.Hour, Total: 3, Valid: 2, Expired: 1})
	assert.Contains(t, got, "/tmp/cache")
	assert.Contains(t, got, "24h0m0s")
}

func backtest() *algo.BacktestResult {
	return &algo.BacktestResult{
		Capital: algo.M(10000),
		Dates:   []date.Date{date.New(2024, 1, 31), date.New(2024, 2, 29), date.New(2024, 3, 31)},
		Performances: []algo.Performance{{
			Strategy: algo.Strategy{Name: "12m"},
			Values:   []algo.Money{algo.M(10000), algo.M(10990), algo.M(11500)},
			Metrics:  algo.Metrics{TotalReturn: 0.15, Sharpe: 1.234},
		}},
	}
}

func TestBacktestMarkdown(t *testing.T) {
	got := BacktestMarkdown(backtest())
	assert.Contains(t, got, "From 2024-01-31 to 2024-03-31")
	assert.Contains(t, got, "+15.00%")
	assert.Contains(t, got, "1.23")
	assert.Contains(t, got, "₹10,990.00")
}

func TestBacktestChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BacktestChart(backtest(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	res := backtest()
	res.Dates = res.Dates[:1]
	assert.Error(t, BacktestChart(res, &buf))
}

func TestUpdateMarkdown(t *testing.T) {
	got := UpdateMarkdown("universe.xlsx", &universe.UpdateResult{
		Constituents: 3,
		Matched:      []universe.Entry{{Symbol: "A"}, {Symbol: "B"}},
		Unmatched:    []string{"C"},
		Coverage:     2.0 / 3,
		Written:      true,
	})
	assert.Contains(t, got, "66.67%")
	assert.Contains(t, got, "**Unmatched** (1): C")
	assert.NotContains(t, got, "Added")
}

func TestHTML(t *testing.T) {
	got, err := HTML("# Title\n\n| A | B |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, got, "<h1>Title</h1>")
	assert.Contains(t, got, "<table>")

	page, err := HTMLPage("a < b", "text")
	require.NoError(t, err)
	assert.Contains(t, page, "<title>a &lt; b</title>")
	assert.Contains(t, page, "<p>text</p>")
}
