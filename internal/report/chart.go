package report

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/scoring"
	"enterprise-readiness/internal/usage"
)

// ErrNothingToPlot is returned when a chart would have no data.
var ErrNothingToPlot = errors.New("report: nothing to plot")

// WriteRankingPNG renders the top n results as a bar chart on a 0-100 axis.
func WriteRankingPNG(w io.Writer, results []pipeline.Result, n int) error {
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	if len(results) == 0 {
		return ErrNothingToPlot
	}

	bars := make([]chart.Value, 0, len(results))
	for _, r := range results {
		bars = append(bars, chart.Value{
			Label: r.AccountID,
			Value: r.Score.Value,
		})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Enterprise readiness, top %d", len(results)),
		Width:    1280,
		Height:   720,
		BarWidth: barWidth(len(results)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: scoring.MinScore, Max: scoring.MaxScore},
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

// WriteUsagePNG plots each channel's volume per period for one account.
func WriteUsagePNG(w io.Writer, acct usage.Account) error {
	h := usage.NewHistory(acct.Snapshots)
	if h.Empty() {
		return ErrNothingToPlot
	}

	x := make([]float64, len(h.Periods))
	for i, p := range h.Periods {
		x[i] = float64(p.Period)
	}

	series := make([]chart.Series, 0, len(usage.Channels))
	peak := 0.0
	for _, c := range usage.Channels {
		y := make([]float64, len(h.Periods))
		seen := false
		for i, p := range h.Periods {
			v, ok := p.ByChannel[c]
			if ok {
				seen = true
			}
			y[i] = v
			peak = math.Max(peak, v)
		}
		if !seen {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    c.Label(),
			XValues: x,
			YValues: y,
		})
	}

	first, last := x[0], x[len(x)-1]
	if last <= first {
		last = first + 1
	}
	if peak <= 0 {
		peak = 1
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s usage by channel", acct.ID),
		Width:  1280,
		Height: 720,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		XAxis: chart.XAxis{
			Name:  "Period",
			Range: &chart.ContinuousRange{Min: first, Max: last},
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		YAxis: chart.YAxis{
			Name:  "Volume",
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

func barWidth(n int) int {
	width := 1100 / (n * 2)
	if width > 60 {
		return 60
	}
	if width < 4 {
		return 4
	}
	return width
}
