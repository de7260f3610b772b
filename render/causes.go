package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/hivewatch/beedash/aggregate"
	"github.com/hivewatch/beedash/colony"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

const groupWidth = 64

// CausesChart draws the long-form cause table as grouped bars: one group per
// cause, one bar per state (or a single all-states bar).
func CausesChart(w io.Writer, rows []aggregate.CauseValue, title string) error {
	if len(rows) == 0 {
		return noData(w, title)
	}

	index := map[colony.Cause]int{}
	labels := make([]string, len(colony.Causes))
	for i, c := range colony.Causes {
		index[c] = i
		labels[i] = c.Label()
	}

	var groups []string
	values := map[string]plotter.Values{}
	present := map[string][]bool{}
	shown := make([]bool, len(colony.Causes))
	for _, r := range rows {
		name := r.State
		if name == "" {
			name = allStates
		}
		vs, ok := values[name]
		if !ok {
			vs = make(plotter.Values, len(colony.Causes))
			values[name] = vs
			present[name] = make([]bool, len(colony.Causes))
			groups = append(groups, name)
		}
		i := index[r.Cause]
		vs[i] = r.Value
		present[name][i] = true
		shown[i] = true
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Impact on colonies"
	p.Y.Min = 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	width := vg.Points(groupWidth) / vg.Length(len(groups))
	for i, name := range groups {
		bars, err := plotter.NewBarChart(values[name], width)
		if err != nil {
			return fmt.Errorf("bars for %s: %w", name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = paletteColor(i)
		bars.Offset = width*vg.Length(i) - width*vg.Length(len(groups)-1)/2
		p.Add(bars)
		p.Legend.Add(legendLabel(name, present[name], shown), bars)
	}
	p.NominalX(labels...)
	p.X.Tick.Label.XAlign = draw.XCenter

	c := vgsvg.New(vg.Points(DefaultWidth), vg.Points(DefaultHeight))
	p.Draw(draw.New(c))
	_, err := c.WriteTo(w)
	return err
}

// legendLabel names the causes a group has no value for while other groups
// do. Those draw as empty bars and would otherwise read as zero.
func legendLabel(name string, present, shown []bool) string {
	var missing []string
	for i, c := range colony.Causes {
		if shown[i] && !present[i] {
			missing = append(missing, c.Label())
		}
	}
	if len(missing) == 0 {
		return name
	}
	return fmt.Sprintf("%s (no data: %s)", name, strings.Join(missing, ", "))
}
