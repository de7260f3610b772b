package aggregate

import (
	"strings"

	"github.com/hivewatch/beedash/colony"
)

// Options feeds the dashboard controls.
type Options struct {
	Years      []int              `json:"years"`
	YearMin    int                `json:"year_min"`
	YearMax    int                `json:"year_max"`
	States     []colony.StateInfo `json:"states"`
	Periods    []string           `json:"periods"`
	CauseScale colony.CauseScale  `json:"cause_scale"`
}

func OptionsOf(ds *colony.Dataset) Options {
	lo, hi := ds.YearRange()
	return Options{
		Years:      ds.Years(),
		YearMin:    lo,
		YearMax:    hi,
		States:     ds.States(),
		Periods:    ds.TimePeriods(),
		CauseScale: ds.CauseScale(),
	}
}

// Selects reports whether the query's state selection names st, by name or
// code in any case. An empty selection selects nothing.
func (q Query) Selects(st colony.StateInfo) bool {
	f := newStateFilter(q.States)
	if !f.active() {
		return false
	}
	return f.match(colony.Record{State: st.Name, StateCode: st.Code})
}

// CanonicalPeriod returns the dataset's own spelling of period, matched case
// insensitively, or the trimmed input when the dataset has no such period.
func CanonicalPeriod(ds *colony.Dataset, period string) string {
	period = strings.TrimSpace(period)
	if period == "" || ds == nil {
		return period
	}
	for _, p := range ds.TimePeriods() {
		if strings.EqualFold(p, period) {
			return p
		}
	}
	return period
}

// Views bundles every table derived from one query.
type Views struct {
	Query  Query        `json:"query"`
	Map    []StateValue `json:"map"`
	Trend  []TrendPoint `json:"trend"`
	Causes []CauseValue `json:"causes"`
	Shares []CauseShare `json:"shares"`
	Lost   []StateValue `json:"lost"`
	Flow   []FlowPoint  `json:"flow"`
}

// Compute derives all views for q.
func Compute(ds *colony.Dataset, q Query) Views {
	return Views{
		Query:  q,
		Map:    StateColonies(ds, q),
		Trend:  LossTrend(ds, q),
		Causes: LossCauses(ds, q),
		Shares: CauseShares(ds, q),
		Lost:   LostByState(ds, q),
		Flow:   ColonyFlow(ds, q),
	}
}
