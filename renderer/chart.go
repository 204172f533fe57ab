package renderer

import (
	"errors"
	"io"
	"time"

	"github.com/perryizgr8/algo"
	"github.com/wcharczuk/go-chart/v2"
)

// BacktestChart draws the portfolio value of each strategy over time as a PNG image.
func BacktestChart(res *algo.BacktestResult, w io.Writer) error {
	if len(res.Dates) < 2 {
		return errors.New("a chart needs at least two dates")
	}
	times := make([]time.Time, len(res.Dates))
	for i, d := range res.Dates {
		times[i] = d.Time()
	}

	graph := chart.Chart{
		Title: "Portfolio Value",
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return algo.M(f).String()
				}
				return ""
			},
		},
	}
	for _, p := range res.Performances {
		n := min(len(p.Values), len(times))
		values := make([]float64, n)
		for i := range n {
			values[i] = p.Values[i].Float()
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    p.Strategy.Name,
			XValues: times[:n],
			YValues: values,
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}
