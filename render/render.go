// Package render draws the dashboard charts as SVG and builds the tile map
// model consumed by the HTML templates.
package render

import (
	"image/color"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 480

	noDataLabel = "No data"
	allStates   = "All states"
)

var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
	{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff},
	{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
}

func paletteColor(i int) color.RGBA {
	return palette[i%len(palette)]
}

func chartColor(i int) drawing.Color {
	c := paletteColor(i)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func lineStyle(i int) chart.Style {
	return chart.Style{
		StrokeColor: chartColor(i),
		StrokeWidth: 2,
		DotColor:    chartColor(i),
		DotWidth:    3,
	}
}

// niceCeil rounds v up to 1, 2, 2.5 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}

// valueRange is a zero-based axis range with some headroom above top.
func valueRange(top float64) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: 0, Max: niceCeil(top * 1.05)}
}

// yearAxis labels every year between lo and hi. A single year gets one year of
// unlabelled padding on each side.
func yearAxis(lo, hi int) chart.XAxis {
	from, to := float64(lo), float64(hi)
	if lo == hi {
		from, to = from-1, to+1
	}
	step := 1
	if span := hi - lo; span > 12 {
		step = span/12 + 1
	}
	var ticks []chart.Tick
	if lo == hi {
		ticks = append(ticks, chart.Tick{Value: from})
	}
	for y := lo; y <= hi; y += step {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	if lo == hi {
		// go-chart takes the x range from the ticks when they are set.
		ticks = append(ticks, chart.Tick{Value: to})
	}
	return chart.XAxis{
		Name:  "Year",
		Range: &chart.ContinuousRange{Min: from, Max: to},
		Ticks: ticks,
	}
}

// noData renders an empty chart carrying a "No data" annotation.
func noData(w io.Writer, title string) error {
	ch := chart.Chart{
		Title:  title,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		XAxis:  chart.XAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{{XValue: 0.5, YValue: 0.5, Label: noDataLabel}},
			},
		},
	}
	return ch.Render(chart.SVG, w)
}
