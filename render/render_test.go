package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hivewatch/beedash/aggregate"
	"github.com/hivewatch/beedash/colony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestCharts(t *testing.T) {
	tests := []struct {
		name   string
		render func(*bytes.Buffer) error
	}{
		{"trend all states", func(b *bytes.Buffer) error {
			return TrendChart(b, []aggregate.TrendPoint{{Year: 2019, Value: 20}, {Year: 2020, Value: 35}}, "Trend")
		}},
		{"trend by state single year", func(b *bytes.Buffer) error {
			return TrendChart(b, []aggregate.TrendPoint{
				{State: "California", Year: 2020, Value: 20},
				{State: "Texas", Year: 2020, Value: 5},
			}, "Trend")
		}},
		{"trend all states single year", func(b *bytes.Buffer) error {
			return TrendChart(b, []aggregate.TrendPoint{{Year: 2020, Value: 12}}, "Trend")
		}},
		{"flow single year", func(b *bytes.Buffer) error {
			return FlowChart(b, []aggregate.FlowPoint{{Year: 2020, Added: ptr(3), Lost: ptr(9)}}, "Added vs lost")
		}},
		{"flow with gaps", func(b *bytes.Buffer) error {
			return FlowChart(b, []aggregate.FlowPoint{
				{Year: 2019, Added: ptr(10), Lost: ptr(4)},
				{Year: 2020, Lost: ptr(6)},
			}, "Added vs lost")
		}},
		{"lost by state", func(b *bytes.Buffer) error {
			return LostByStateChart(b, []aggregate.StateValue{
				{State: "California", StateCode: "CA", Value: 30},
				{State: "Other States", Value: 12},
			}, "Lost")
		}},
		{"single bar", func(b *bytes.Buffer) error {
			return LostByStateChart(b, []aggregate.StateValue{{State: "Texas", StateCode: "TX", Value: 0}}, "Lost")
		}},
		{"share", func(b *bytes.Buffer) error {
			return CauseSharePie(b, []aggregate.CauseShare{
				{Cause: colony.CauseVarroaMites, Label: "Varroa mites", Value: 30, Share: 0.75},
				{Cause: colony.CauseDiseases, Label: "Diseases", Value: 10, Share: 0.25},
				{Cause: colony.CauseOther, Label: "Other", Value: 0, Share: 0},
			}, "Share")
		}},
		{"causes grouped", func(b *bytes.Buffer) error {
			return CausesChart(b, []aggregate.CauseValue{
				{State: "California", Year: 2020, Cause: colony.CauseVarroaMites, Value: 30},
				{State: "Texas", Year: 2020, Cause: colony.CauseVarroaMites, Value: 20},
				{State: "California", Year: 2020, Cause: colony.CausePesticides, Value: 4},
			}, "Causes")
		}},
		{"causes ungrouped", func(b *bytes.Buffer) error {
			return CausesChart(b, []aggregate.CauseValue{{Year: 2020, Cause: colony.CauseUnknown, Value: 2}}, "Causes")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer
			require.NoError(t, tt.render(&b))
			assert.Contains(t, b.String(), "<svg")
			assert.NotContains(t, b.String(), noDataLabel)
		})
	}
}

func Test_legendLabel(t *testing.T) {
	rows := []aggregate.CauseValue{
		{State: "California", Year: 2020, Cause: colony.CauseVarroaMites, Value: 30},
		{State: "Texas", Year: 2020, Cause: colony.CauseVarroaMites, Value: 20},
		{State: "California", Year: 2020, Cause: colony.CausePesticides, Value: 4},
	}
	var b bytes.Buffer
	require.NoError(t, CausesChart(&b, rows, "Causes"))
	assert.Contains(t, b.String(), "Texas (no data: Pesticides)")
	assert.NotContains(t, b.String(), "California (no data")

	shown := make([]bool, len(colony.Causes))
	present := make([]bool, len(colony.Causes))
	shown[0], present[0] = true, true
	assert.Equal(t, "Ohio", legendLabel("Ohio", present, shown))
}

func TestCharts_noData(t *testing.T) {
	renders := map[string]func(*bytes.Buffer) error{
		"trend":  func(b *bytes.Buffer) error { return TrendChart(b, nil, "Trend") },
		"flow":   func(b *bytes.Buffer) error { return FlowChart(b, []aggregate.FlowPoint{{Year: 2020}}, "Flow") },
		"lost":   func(b *bytes.Buffer) error { return LostByStateChart(b, nil, "Lost") },
		"share":  func(b *bytes.Buffer) error { return CauseSharePie(b, nil, "Share") },
		"causes": func(b *bytes.Buffer) error { return CausesChart(b, nil, "Causes") },
	}
	for name, render := range renders {
		t.Run(name, func(t *testing.T) {
			var b bytes.Buffer
			require.NoError(t, render(&b))
			assert.True(t, strings.Contains(b.String(), noDataLabel), "missing no-data annotation")
		})
	}
}

func TestChoropleth(t *testing.T) {
	m := Choropleth([]aggregate.StateValue{
		{State: "California", StateCode: "CA", Value: 150},
		{State: "Texas", StateCode: "TX", Value: 50},
		{State: "Other States", Value: 10},
	})

	assert.Equal(t, len(tileGrid), len(m.Tiles))
	assert.Equal(t, 50.0, m.Min)
	assert.Equal(t, 150.0, m.Max)
	require.Len(t, m.Unplaced, 1)
	assert.Equal(t, "Other States", m.Unplaced[0].State)

	tiles := map[string]Tile{}
	for _, tile := range m.Tiles {
		tiles[tile.Code] = tile
	}
	assert.Equal(t, hex(scale[len(scale)-1]), tiles["CA"].Fill)
	assert.Equal(t, hex(scale[0]), tiles["TX"].Fill)
	assert.Equal(t, "California: 150", tiles["CA"].Label)
	assert.False(t, tiles["NY"].HasValue)
	assert.Equal(t, emptyFill, tiles["NY"].Fill)

	assert.Equal(t, 1, m.Tiles[0].Row)
	last := m.Tiles[len(m.Tiles)-1]
	assert.Equal(t, gridRows, last.Row)
	require.Len(t, m.Legend, len(scale))
	assert.Equal(t, 50.0, m.Legend[0].Value)
}

func TestChoropleth_flatAndEmpty(t *testing.T) {
	m := Choropleth([]aggregate.StateValue{{State: "Ohio", StateCode: "OH", Value: 7}})
	require.Len(t, m.Legend, 1)
	assert.Equal(t, "7", m.Legend[0].Label)

	empty := Choropleth(nil)
	assert.Empty(t, empty.Legend)
	for _, tile := range empty.Tiles {
		assert.False(t, tile.HasValue, tile.Code)
	}
}

func TestTileGrid_unique(t *testing.T) {
	seen := map[cell]string{}
	for code, pos := range tileGrid {
		if other, ok := seen[pos]; ok {
			t.Fatalf("%s and %s share tile %v", code, other, pos)
		}
		assert.True(t, pos.row >= 1 && pos.row <= gridRows, code)
		assert.True(t, pos.col >= 1 && pos.col <= gridCols, code)
		assert.True(t, colony.IsStateCode(code), code)
		seen[pos] = code
	}
	assert.Len(t, tileGrid, 52)
}

func Test_yearAxis(t *testing.T) {
	tests := []struct {
		name     string
		lo, hi   int
		from, to float64
		labels   []string
	}{
		{"single year", 2020, 2020, 2019, 2021, []string{"", "2020", ""}},
		{"span", 2015, 2017, 2015, 2017, []string{"2015", "2016", "2017"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axis := yearAxis(tt.lo, tt.hi)
			var labels []string
			for _, tick := range axis.Ticks {
				labels = append(labels, tick.Label)
			}
			assert.Equal(t, tt.labels, labels)
			assert.Equal(t, tt.from, axis.Ticks[0].Value)
			assert.Equal(t, tt.to, axis.Ticks[len(axis.Ticks)-1].Value)
		})
	}
}

func TestNiceCeil(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{-3, 1},
		{0.7, 1},
		{1, 1},
		{13, 20},
		{210, 250},
		{4100, 5000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, niceCeil(tt.in), "niceCeil(%v)", tt.in)
	}
}
