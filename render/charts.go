package render

import (
	"io"
	"math"

	"github.com/hivewatch/beedash/aggregate"
	"github.com/wcharczuk/go-chart/v2"
)

const barWidth = 28

type xySeries struct {
	name string
	xs   []float64
	ys   []float64
}

func (s *xySeries) add(x, y float64) {
	s.xs = append(s.xs, x)
	s.ys = append(s.ys, y)
}

// lineChart draws the series over a year axis. Empty series are skipped.
func lineChart(w io.Writer, title, yName string, series []*xySeries) error {
	lo, hi := math.MaxInt, math.MinInt
	top := 0.0
	var out []chart.Series
	for i, s := range series {
		if len(s.xs) == 0 {
			continue
		}
		for j, x := range s.xs {
			lo = min(lo, int(x))
			hi = max(hi, int(x))
			top = max(top, s.ys[j])
		}
		out = append(out, chart.ContinuousSeries{
			Name:    s.name,
			XValues: s.xs,
			YValues: s.ys,
			Style:   lineStyle(i),
		})
	}
	if len(out) == 0 {
		return noData(w, title)
	}

	ch := chart.Chart{
		Title:      title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      yearAxis(lo, hi),
		YAxis:      chart.YAxis{Name: yName, Range: valueRange(top)},
		Series:     out,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, w)
}

// TrendChart draws mean lost colonies per year, one line per state or a
// single all-states line.
func TrendChart(w io.Writer, points []aggregate.TrendPoint, title string) error {
	var series []*xySeries
	byName := map[string]*xySeries{}
	for _, p := range points {
		name := p.State
		if name == "" {
			name = allStates
		}
		s, ok := byName[name]
		if !ok {
			s = &xySeries{name: name}
			byName[name] = s
			series = append(series, s)
		}
		s.add(float64(p.Year), p.Value)
	}
	return lineChart(w, title, "Lost colonies", series)
}

// FlowChart draws mean added and lost colonies per year.
func FlowChart(w io.Writer, points []aggregate.FlowPoint, title string) error {
	added := &xySeries{name: "Added"}
	lost := &xySeries{name: "Lost"}
	for _, p := range points {
		if p.Added != nil {
			added.add(float64(p.Year), *p.Added)
		}
		if p.Lost != nil {
			lost.add(float64(p.Year), *p.Lost)
		}
	}
	return lineChart(w, title, "Colonies", []*xySeries{added, lost})
}

// LostByStateChart draws one bar per state, labelled by state code when known.
func LostByStateChart(w io.Writer, rows []aggregate.StateValue, title string) error {
	if len(rows) == 0 {
		return noData(w, title)
	}
	bars := make([]chart.Value, 0, len(rows))
	top := 0.0
	for i, r := range rows {
		label := r.StateCode
		if label == "" {
			label = r.State
		}
		top = max(top, r.Value)
		bars = append(bars, chart.Value{
			Label: label,
			Value: r.Value,
			Style: chart.Style{FillColor: chartColor(i), StrokeColor: chartColor(i)},
		})
	}

	width := DefaultWidth
	if need := len(bars)*(barWidth+8) + 120; need > width {
		width = need
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     DefaultHeight,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Name: "Lost colonies", Range: valueRange(top)},
		Bars:       bars,
	}
	return bc.Render(chart.SVG, w)
}

// CauseSharePie draws each cause's share of the pooled loss-cause values.
func CauseSharePie(w io.Writer, shares []aggregate.CauseShare, title string) error {
	var values []chart.Value
	for i, s := range shares {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: s.Label,
			Value: s.Value,
			Style: chart.Style{FillColor: chartColor(i)},
		})
	}
	if len(values) == 0 {
		return noData(w, title)
	}
	pc := chart.PieChart{
		Title:  title,
		Width:  DefaultHeight,
		Height: DefaultHeight,
		Values: values,
	}
	return pc.Render(chart.SVG, w)
}
