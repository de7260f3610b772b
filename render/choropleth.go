package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"

	"github.com/hivewatch/beedash/aggregate"
)

type cell struct{ row, col int }

// tileGrid places each state on a 8x12 grid that roughly follows the map.
var tileGrid = map[string]cell{
	"AK": {1, 1}, "ME": {1, 12},
	"VT": {2, 11}, "NH": {2, 12},
	"WA": {3, 2}, "ID": {3, 3}, "MT": {3, 4}, "ND": {3, 5}, "MN": {3, 6}, "IL": {3, 7},
	"WI": {3, 8}, "MI": {3, 9}, "NY": {3, 10}, "RI": {3, 11}, "MA": {3, 12},
	"OR": {4, 2}, "NV": {4, 3}, "WY": {4, 4}, "SD": {4, 5}, "IA": {4, 6}, "IN": {4, 7},
	"OH": {4, 8}, "PA": {4, 9}, "NJ": {4, 10}, "CT": {4, 11},
	"CA": {5, 2}, "UT": {5, 3}, "CO": {5, 4}, "NE": {5, 5}, "MO": {5, 6}, "KY": {5, 7},
	"WV": {5, 8}, "VA": {5, 9}, "MD": {5, 10}, "DE": {5, 11},
	"AZ": {6, 3}, "NM": {6, 4}, "KS": {6, 5}, "AR": {6, 6}, "TN": {6, 7}, "NC": {6, 8},
	"SC": {6, 9}, "DC": {6, 10},
	"OK": {7, 5}, "LA": {7, 6}, "MS": {7, 7}, "AL": {7, 8}, "GA": {7, 9},
	"HI": {8, 1}, "TX": {8, 5}, "FL": {8, 10}, "PR": {8, 12},
}

const (
	gridRows = 8
	gridCols = 12

	emptyFill = "#eeeeee"
)

// Yellow to green, light to dark.
var scale = []color.RGBA{
	{R: 0xff, G: 0xff, B: 0xe5, A: 0xff},
	{R: 0xd9, G: 0xf0, B: 0xa3, A: 0xff},
	{R: 0x78, G: 0xc6, B: 0x79, A: 0xff},
	{R: 0x23, G: 0x84, B: 0x43, A: 0xff},
	{R: 0x00, G: 0x45, B: 0x29, A: 0xff},
}

// Tile is one state square of the tile map. Row and Col are 1-based grid
// positions.
type Tile struct {
	Code     string  `json:"code"`
	State    string  `json:"state,omitempty"`
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	Value    float64 `json:"value"`
	HasValue bool    `json:"has_value"`
	Fill     string  `json:"fill"`
	Label    string  `json:"label"`
}

type LegendStop struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Fill  string  `json:"fill"`
}

// TileMap is the choropleth model for the colonies-per-state view.
type TileMap struct {
	Rows   int          `json:"rows"`
	Cols   int          `json:"cols"`
	Tiles  []Tile       `json:"tiles"`
	Min    float64      `json:"min"`
	Max    float64      `json:"max"`
	Legend []LegendStop `json:"legend"`
	// Unplaced holds rows without a grid position, such as "Other States".
	Unplaced []aggregate.StateValue `json:"unplaced,omitempty"`
}

// Choropleth colors every grid state by its value relative to the min and max
// of rows. States missing from rows keep an empty tile.
func Choropleth(rows []aggregate.StateValue) TileMap {
	m := TileMap{Rows: gridRows, Cols: gridCols}
	byCode := map[string]aggregate.StateValue{}
	first := true
	for _, r := range rows {
		if _, ok := tileGrid[r.StateCode]; !ok {
			m.Unplaced = append(m.Unplaced, r)
			continue
		}
		byCode[r.StateCode] = r
		if first {
			m.Min, m.Max = r.Value, r.Value
			first = false
		}
		m.Min = math.Min(m.Min, r.Value)
		m.Max = math.Max(m.Max, r.Value)
	}

	for code, pos := range tileGrid {
		t := Tile{Code: code, Row: pos.row, Col: pos.col, Fill: emptyFill, Label: code}
		if r, ok := byCode[code]; ok {
			t.State = r.State
			t.Value = r.Value
			t.HasValue = true
			t.Fill = hex(interpolate(fraction(r.Value, m.Min, m.Max)))
			t.Label = fmt.Sprintf("%s: %s", r.State, formatValue(r.Value))
		}
		m.Tiles = append(m.Tiles, t)
	}
	sort.Slice(m.Tiles, func(i, j int) bool {
		if m.Tiles[i].Row != m.Tiles[j].Row {
			return m.Tiles[i].Row < m.Tiles[j].Row
		}
		return m.Tiles[i].Col < m.Tiles[j].Col
	})

	if !first {
		steps := len(scale)
		for i := 0; i < steps; i++ {
			f := float64(i) / float64(steps-1)
			v := m.Min + f*(m.Max-m.Min)
			m.Legend = append(m.Legend, LegendStop{Value: v, Label: formatValue(v), Fill: hex(interpolate(f))})
			if m.Min == m.Max {
				break
			}
		}
	}
	return m
}

// fraction maps v into [0,1]. A flat range puts every value at the top.
func fraction(v, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}
	return (v - lo) / (hi - lo)
}

func interpolate(f float64) color.RGBA {
	f = math.Max(0, math.Min(1, f))
	pos := f * float64(len(scale)-1)
	i := int(pos)
	if i >= len(scale)-1 {
		return scale[len(scale)-1]
	}
	t := pos - float64(i)
	a, b := scale[i], scale[i+1]
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + t*(float64(y)-float64(x)))) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func formatValue(v float64) string {
	if v == math.Trunc(v) || math.Abs(v) >= 100 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
