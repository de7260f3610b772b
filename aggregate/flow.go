package aggregate

import "github.com/hivewatch/beedash/colony"

// FlowPoint compares colonies added and lost in a year. A nil side means the
// dataset has no values for it that year.
type FlowPoint struct {
	Year  int      `json:"year"`
	Added *float64 `json:"added"`
	Lost  *float64 `json:"lost"`
}

// CauseShare is a loss cause's part of the total cause impact, in [0,1].
type CauseShare struct {
	Cause colony.Cause `json:"cause"`
	Label string       `json:"label"`
	Value float64      `json:"value"`
	Share float64      `json:"share"`
}

// ColonyFlow averages added and lost colonies per year for the selected
// states (all states when none are selected).
func ColonyFlow(ds *colony.Dataset, q Query) []FlowPoint {
	filter := newStateFilter(q.States)
	g := newGrouper(2)
	for _, r := range ds.Records() {
		if !filter.match(r) {
			continue
		}
		g.add(groupKey{year: r.Year}, "", r.AddedColonies, r.LostColonies)
	}

	var out []FlowPoint
	for _, k := range g.keys() {
		m, ok := g.means(k)
		if !ok {
			continue
		}
		p := FlowPoint{Year: k.year}
		if !colony.Missing(m[0]) {
			added := m[0]
			p.Added = &added
		}
		if !colony.Missing(m[1]) {
			lost := m[1]
			p.Lost = &lost
		}
		out = append(out, p)
	}
	return out
}

// CauseShares pools the selected states for the query year and reports each
// cause's mean as a share of the summed means. It is empty when the year has
// no cause data.
func CauseShares(ds *colony.Dataset, q Query) []CauseShare {
	rows := causeTable(ds, q, false)
	if len(rows) == 0 {
		return nil
	}
	values := rows[0].Values

	var total float64
	for _, v := range values {
		if !colony.Missing(v) {
			total += v
		}
	}
	if total == 0 {
		return nil
	}

	var out []CauseShare
	for i, c := range colony.Causes {
		if colony.Missing(values[i]) {
			continue
		}
		out = append(out, CauseShare{Cause: c, Label: c.Label(), Value: values[i], Share: values[i] / total})
	}
	return out
}
