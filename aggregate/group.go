package aggregate

import (
	"sort"
	"strings"

	"github.com/hivewatch/beedash/colony"
	"gonum.org/v1/gonum/floats"
)

// mean is the arithmetic mean of the present values. ok is false when every
// value is missing.
func mean(values []float64) (m float64, ok bool) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !colony.Missing(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0, false
	}
	return floats.Sum(present) / float64(len(present)), true
}

type groupKey struct {
	state string
	year  int
}

func (k groupKey) less(o groupKey) bool {
	if k.state != o.state {
		return k.state < o.state
	}
	return k.year < o.year
}

// grouper collects measure values per key and yields groups in key order.
type grouper struct {
	width  int
	values map[groupKey][][]float64
	codes  map[string]string
}

func newGrouper(width int) *grouper {
	return &grouper{
		width:  width,
		values: map[groupKey][][]float64{},
		codes:  map[string]string{},
	}
}

func (g *grouper) add(k groupKey, code string, measures ...float64) {
	cols, ok := g.values[k]
	if !ok {
		cols = make([][]float64, g.width)
	}
	for i, v := range measures {
		cols[i] = append(cols[i], v)
	}
	g.values[k] = cols
	if g.codes[k.state] == "" && code != "" {
		g.codes[k.state] = code
	}
}

func (g *grouper) code(state string) string {
	return g.codes[state]
}

func (g *grouper) keys() []groupKey {
	keys := make([]groupKey, 0, len(g.values))
	for k := range g.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

// means returns the per-column means of a group; missing columns are NaN.
// found is false when every column is missing.
func (g *grouper) means(k groupKey) (out []float64, found bool) {
	out = make([]float64, g.width)
	for i, col := range g.values[k] {
		if m, ok := mean(col); ok {
			out[i] = m
			found = true
		} else {
			out[i] = colony.NA()
		}
	}
	return out, found
}

// stateFilter matches records against a selection of state names or codes.
// An empty selection matches every record.
type stateFilter map[string]bool

func newStateFilter(states []string) stateFilter {
	f := stateFilter{}
	for _, s := range states {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			f[s] = true
		}
	}
	return f
}

func (f stateFilter) active() bool { return len(f) > 0 }

func (f stateFilter) match(r colony.Record) bool {
	if len(f) == 0 {
		return true
	}
	return f[strings.ToLower(r.State)] || (r.StateCode != "" && f[strings.ToLower(r.StateCode)])
}
