package renderer

import (
	"github.com/perryizgr8/algo"
)

// ReportRenderOptions holds configuration for rendering a rebalance report.
type ReportRenderOptions struct {
	SkipTrades bool // Do not render sales, allocation and redistribution.
}

type allocationRow struct {
	Symbol string
	Weight string
	Amount algo.Money
	Price  string
	Units  algo.Units
	Cost   algo.Money
}

type holdingRow struct {
	Symbol string
	Units  algo.Units
	Price  string
	Value  string
}

// reportView adds the computed rows the templates need.
type reportView struct {
	*algo.Report
	Allocations []allocationRow
	Holdings    []holdingRow
}

func newReportView(r *algo.Report) *reportView {
	v := &reportView{Report: r}
	bought := map[string]algo.Purchase{}
	for _, p := range r.Purchases {
		bought[p.Symbol] = p
	}
	for _, a := range r.Plan.Allocations {
		row := allocationRow{Symbol: a.Symbol, Weight: "-", Amount: a.Amount, Price: "-"}
		if !a.Weight.IsZero() {
			row.Weight = a.Weight.String()
		}
		if p, ok := bought[a.Symbol]; ok {
			row.Price, row.Units, row.Cost = p.Price.String(), p.Units, p.Cost()
			if p.Estimated {
				row.Price += " (est.)"
			}
		} else if price, ok := r.Prices.Lookup(a.Symbol); ok {
			row.Price = price.String()
		}
		v.Allocations = append(v.Allocations, row)
	}
	if r.Ledger != nil {
		for _, s := range r.Ledger.Stocks() {
			row := holdingRow{Symbol: s.Symbol, Units: s.Units, Price: "-", Value: "-"}
			if price, ok := r.Prices.Lookup(s.Symbol); ok {
				row.Price, row.Value = price.String(), price.Mul(s.Units).String()
			}
			v.Holdings = append(v.Holdings, row)
		}
	}
	return v
}

// RenderReport renders a rebalance report to a markdown string.
func RenderReport(r *algo.Report, opts ReportRenderOptions) string {
	partials := map[string]string{
		"report_title":     "report_title.md",
		"report_decision":  "report_decision.md",
		"report_trades":    "report_trades.md",
		"report_portfolio": "report_portfolio.md",
	}
	if opts.SkipTrades {
		partials["report_trades"] = ""
	}
	return renderTemplate("report", "report.md", partials, newReportView(r))
}
