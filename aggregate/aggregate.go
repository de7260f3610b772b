// Package aggregate turns colony records into the chart-ready tables behind
// the dashboard: per-state means for the map, per-year loss trends and the
// long-form loss-cause table.
package aggregate

import (
	"strings"

	"github.com/hivewatch/beedash/colony"
)

// Query is the user selection driving one recomputation.
type Query struct {
	Year   int      `json:"year"`
	States []string `json:"states,omitempty"`
	Period string   `json:"period,omitempty"`
}

// StateValue is the mean of a measure for one state.
type StateValue struct {
	State     string  `json:"state"`
	StateCode string  `json:"state_code"`
	Value     float64 `json:"value"`
}

// TrendPoint is the mean lost colonies for a year. State is empty for the
// all-states series.
type TrendPoint struct {
	State string  `json:"state,omitempty"`
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// CauseValue is one row of the long-form loss-cause table.
type CauseValue struct {
	State string       `json:"state,omitempty"`
	Year  int          `json:"year"`
	Cause colony.Cause `json:"cause"`
	Label string       `json:"label"`
	Value float64      `json:"value"`
}

// StateColonies averages num_colonies per state for the query year. With a
// state selection only the selected states that have data for the year are
// returned.
func StateColonies(ds *colony.Dataset, q Query) []StateValue {
	filter := newStateFilter(q.States)
	g := newGrouper(1)
	for _, r := range ds.Records() {
		if r.Year != q.Year || !filter.match(r) {
			continue
		}
		g.add(groupKey{state: r.State}, r.StateCode, r.NumColonies)
	}

	var out []StateValue
	for _, k := range g.keys() {
		m, ok := g.means(k)
		if !ok {
			continue
		}
		out = append(out, StateValue{State: k.state, StateCode: g.code(k.state), Value: m[0]})
	}
	return out
}

// LossTrend averages lost_colonies per year over the whole dataset. With a
// state selection there is one series per selected state, otherwise a single
// series across all states. The query year is ignored.
func LossTrend(ds *colony.Dataset, q Query) []TrendPoint {
	filter := newStateFilter(q.States)
	g := newGrouper(1)
	for _, r := range ds.Records() {
		if !filter.match(r) {
			continue
		}
		k := groupKey{year: r.Year}
		if filter.active() {
			k.state = r.State
		}
		g.add(k, r.StateCode, r.LostColonies)
	}

	var out []TrendPoint
	for _, k := range g.keys() {
		m, ok := g.means(k)
		if !ok {
			continue
		}
		out = append(out, TrendPoint{State: k.state, Year: k.year, Value: m[0]})
	}
	return out
}

// LossCauses averages every loss-cause column for the query year and melts
// the result into (state, cause) rows, or (cause) rows when no state is
// selected. Rows are ordered by cause, then state.
func LossCauses(ds *colony.Dataset, q Query) []CauseValue {
	wide := causeTable(ds, q, newStateFilter(q.States).active())

	columns := make([]string, len(colony.Causes))
	for i, c := range colony.Causes {
		columns[i] = string(c)
	}

	long := Melt(columns, wide)
	out := make([]CauseValue, 0, len(long))
	for _, row := range long {
		cause := colony.Cause(row.Column)
		out = append(out, CauseValue{
			State: row.ID,
			Year:  row.Year,
			Cause: cause,
			Label: cause.Label(),
			Value: row.Value,
		})
	}
	return out
}

// causeTable is the wide per-group cause means for the query year. When
// byState is false all matching records form one group with an empty ID.
func causeTable(ds *colony.Dataset, q Query, byState bool) []WideRow {
	filter := newStateFilter(q.States)
	g := newGrouper(len(colony.Causes))
	for _, r := range ds.Records() {
		if r.Year != q.Year || !filter.match(r) {
			continue
		}
		k := groupKey{year: r.Year}
		if byState {
			k.state = r.State
		}
		g.add(k, r.StateCode, r.Causes[:]...)
	}

	var rows []WideRow
	for _, k := range g.keys() {
		m, ok := g.means(k)
		if !ok {
			continue
		}
		rows = append(rows, WideRow{ID: k.state, Year: k.year, Values: m})
	}
	return rows
}

// LostByState averages lost_colonies per state for the query year and time
// period. An empty period covers the whole year.
func LostByState(ds *colony.Dataset, q Query) []StateValue {
	filter := newStateFilter(q.States)
	period := strings.TrimSpace(q.Period)
	g := newGrouper(1)
	for _, r := range ds.Records() {
		if r.Year != q.Year || !filter.match(r) {
			continue
		}
		if period != "" && !strings.EqualFold(r.TimePeriod, period) {
			continue
		}
		g.add(groupKey{state: r.State}, r.StateCode, r.LostColonies)
	}

	var out []StateValue
	for _, k := range g.keys() {
		m, ok := g.means(k)
		if !ok {
			continue
		}
		out = append(out, StateValue{State: k.state, StateCode: g.code(k.state), Value: m[0]})
	}
	return out
}
