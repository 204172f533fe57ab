package renderer

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"
	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/cache"
	"github.com/perryizgr8/algo/date"
	"github.com/perryizgr8/algo/universe"
)

// RankingMarkdown renders the first n stocks of a ranking.
func RankingMarkdown(title string, r algo.Ranking, n int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignRight},
		Header:    []string{"Rank", "Symbol", "Return"},
	}
	missing := 0
	for i, s := range r.Top(n) {
		gain := s.Percent().SignedString()
		if s.Missing {
			gain = "no data"
			missing++
		}
		table.Rows = append(table.Rows, []string{fmt.Sprint(i + 1), s.Symbol, gain})
	}
	doc.Table(table)
	if missing > 0 {
		doc.PlainText(fmt.Sprintf("%d of the listed stocks had no data and rank as flat.", missing))
	}
	return doc.String()
}

// PriceMarkdown renders resolved prices.
func PriceMarkdown(on date.Date, prices []PriceLine) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Prices on %s", on))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft},
		Header:    []string{"Symbol", "Price", "Source"},
	}
	for _, p := range prices {
		price, source := p.Price.String(), "market"
		switch {
		case p.Err != nil:
			price, source = "-", p.Err.Error()
		case p.Estimated:
			source = "estimate"
		}
		table.Rows = append(table.Rows, []string{p.Symbol, price, source})
	}
	doc.Table(table)
	return doc.String()
}

// PriceLine is a price resolution result.
type PriceLine struct {
	Symbol    string
	Price     algo.Money
	Estimated bool
	Err       error
}

// CacheStatsMarkdown renders the cache statistics.
func CacheStatsMarkdown(s cache.Stats) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Cache")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Directory", s.Dir},
		Rows: [][]string{
			{"Time to live", s.TTL.String()},
			{"Entries", fmt.Sprint(s.Total)},
			{"Valid", fmt.Sprint(s.Valid)},
			{"Expired", fmt.Sprint(s.Expired)},
		},
	})
	return doc.String()
}

// BacktestMarkdown renders the values and metrics of a backtest.
func BacktestMarkdown(res *algo.BacktestResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Backtest")
	if len(res.Dates) > 0 {
		doc.PlainText(fmt.Sprintf("From %s to %s, starting with %s.", res.Dates[0], res.Dates[len(res.Dates)-1], res.Capital))
	}

	doc.H2("Performance")
	metrics := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Strategy", "Final Value", "Total Return", "Annualized", "Volatility", "Sharpe"},
	}
	for _, p := range res.Performances {
		final := "-"
		if len(p.Values) > 0 {
			final = p.Values[len(p.Values)-1].String()
		}
		metrics.Rows = append(metrics.Rows, []string{
			p.Strategy.Name,
			final,
			percent(p.Metrics.TotalReturn),
			percent(p.Metrics.AnnualizedReturn),
			percent(p.Metrics.Volatility),
			fmt.Sprintf("%.2f", p.Metrics.Sharpe),
		})
	}
	doc.Table(metrics)

	doc.H2("Monthly Values")
	values := md.TableSet{Header: []string{"Date"}}
	values.Alignment = append(values.Alignment, md.AlignLeft)
	for _, p := range res.Performances {
		values.Header = append(values.Header, p.Strategy.Name)
		values.Alignment = append(values.Alignment, md.AlignRight)
	}
	for i, day := range res.Dates {
		row := []string{day.String()}
		for _, p := range res.Performances {
			if i < len(p.Values) {
				row = append(row, p.Values[i].String())
			} else {
				row = append(row, "-")
			}
		}
		values.Rows = append(values.Rows, row)
	}
	doc.Table(values)
	return doc.String()
}

func percent(f float64) string { return algo.Percent(100 * f).SignedString() }

// UpdateMarkdown renders the outcome of a universe update.
func UpdateMarkdown(file string, res *universe.UpdateResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Universe Update")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"File", file},
		Rows: [][]string{
			{"Constituents", fmt.Sprint(res.Constituents)},
			{"Matched", fmt.Sprint(len(res.Matched))},
			{"Coverage", algo.Percent(100 * res.Coverage).String()},
			{"Written", fmt.Sprint(res.Written)},
		},
	})
	var b strings.Builder
	b.WriteString(doc.String())
	symbolList(&b, "Added", res.Added)
	symbolList(&b, "Removed", res.Removed)
	symbolList(&b, "Unmatched", res.Unmatched)
	if res.Backup != "" {
		fmt.Fprintf(&b, "\nPrevious file saved as `%s`.\n", res.Backup)
	}
	return b.String()
}
