package aggregate

import (
	"math"
	"testing"

	"github.com/hivewatch/beedash/colony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	state   string
	year    int
	period  string
	num     float64
	lost    float64
	added   float64
	varroa  float64
	disease float64
}

func dataset(rows ...row) *colony.Dataset {
	recs := make([]colony.Record, 0, len(rows))
	for _, r := range rows {
		rec := colony.Record{
			State:             r.state,
			StateCode:         colony.StateCode(r.state),
			Year:              r.year,
			TimePeriod:        r.period,
			Quarter:           colony.QuarterOf(r.period),
			NumColonies:       r.num,
			MaxColonies:       colony.NA(),
			LostColonies:      r.lost,
			PercentLost:       colony.NA(),
			AddedColonies:     r.added,
			RenovatedColonies: colony.NA(),
			PercentRenovated:  colony.NA(),
		}
		for i := range rec.Causes {
			rec.Causes[i] = colony.NA()
		}
		rec.Causes[0] = r.varroa
		rec.Causes[2] = r.disease
		recs = append(recs, rec)
	}
	return colony.New("test", recs)
}

var na = math.NaN()

func sample() *colony.Dataset {
	return dataset(
		row{"California", 2020, "Q1", 100, 10, 5, 20, 4},
		row{"California", 2020, "Q2", 200, 30, na, 40, 6},
		row{"Texas", 2020, "Q1", 50, 5, 1, 10, na},
		row{"Texas", 2021, "Q1", 70, 7, 3, 12, 2},
		row{"Ohio", 2021, "Q2", 20, na, na, na, na},
	)
}

func TestStateColonies_example(t *testing.T) {
	got := StateColonies(sample(), Query{Year: 2020})
	want := []StateValue{
		{State: "California", StateCode: "CA", Value: 150},
		{State: "Texas", StateCode: "TX", Value: 50},
	}
	assert.Equal(t, want, got)
}

func TestStateColonies_filter(t *testing.T) {
	tests := []struct {
		name   string
		q      Query
		states []string
	}{
		{"by name", Query{Year: 2020, States: []string{"Texas"}}, []string{"Texas"}},
		{"by code, any case", Query{Year: 2020, States: []string{"ca", " TX "}}, []string{"California", "Texas"}},
		{"selected state without data is absent", Query{Year: 2020, States: []string{"Ohio", "Texas"}}, []string{"Texas"}},
		{"year without data", Query{Year: 1999}, nil},
		{"blank selection means all", Query{Year: 2021, States: []string{""}}, []string{"Ohio", "Texas"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, v := range StateColonies(sample(), tt.q) {
				names = append(names, v.State)
			}
			assert.Equal(t, tt.states, names)
		})
	}
}

func TestLossTrend(t *testing.T) {
	ds := sample()

	all := LossTrend(ds, Query{Year: 2020})
	assert.Equal(t, []TrendPoint{
		{Year: 2020, Value: 15},
		{Year: 2021, Value: 7},
	}, all)

	byState := LossTrend(ds, Query{Year: 2020, States: []string{"Texas", "California"}})
	assert.Equal(t, []TrendPoint{
		{State: "California", Year: 2020, Value: 20},
		{State: "Texas", Year: 2020, Value: 5},
		{State: "Texas", Year: 2021, Value: 7},
	}, byState)

	assert.Empty(t, LossTrend(ds, Query{States: []string{"Ohio"}}), "all-missing groups are omitted")
}

func TestLossCauses_ungrouped(t *testing.T) {
	got := LossCauses(sample(), Query{Year: 2020})
	require.Len(t, got, 2)
	assert.Equal(t, CauseValue{Year: 2020, Cause: colony.CauseVarroaMites, Label: "Varroa mites", Value: 70.0 / 3}, got[0])
	assert.Equal(t, CauseValue{Year: 2020, Cause: colony.CauseDiseases, Label: "Diseases", Value: 5}, got[1])
}

func TestLossCauses_byState(t *testing.T) {
	got := LossCauses(sample(), Query{Year: 2020, States: []string{"TX", "CA"}})
	var order []string
	for _, v := range got {
		order = append(order, string(v.Cause)+"/"+v.State)
	}
	assert.Equal(t, []string{
		"varroa_mites/California",
		"varroa_mites/Texas",
		"diseases/California",
	}, order)
	assert.Equal(t, 30.0, got[0].Value)
}

func TestLossCauses_emptyYear(t *testing.T) {
	assert.Empty(t, LossCauses(sample(), Query{Year: 1990}))
	assert.Empty(t, CauseShares(sample(), Query{Year: 1990}))
}

func TestLostByState(t *testing.T) {
	ds := sample()
	assert.Equal(t, []StateValue{
		{State: "California", StateCode: "CA", Value: 10},
		{State: "Texas", StateCode: "TX", Value: 5},
	}, LostByState(ds, Query{Year: 2020, Period: "q1"}))

	assert.Equal(t, []StateValue{
		{State: "California", StateCode: "CA", Value: 20},
		{State: "Texas", StateCode: "TX", Value: 5},
	}, LostByState(ds, Query{Year: 2020}))
}

func TestColonyFlow(t *testing.T) {
	got := ColonyFlow(sample(), Query{})
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Added)
	assert.Equal(t, 3.0, *got[0].Added)
	assert.Equal(t, 15.0, *got[0].Lost)
	assert.Equal(t, 3.0, *got[1].Added)
	assert.Equal(t, 7.0, *got[1].Lost)

	ohio := ColonyFlow(sample(), Query{States: []string{"Ohio"}})
	assert.Empty(t, ohio)
}

func TestCauseShares(t *testing.T) {
	shares := CauseShares(sample(), Query{Year: 2021})
	require.Len(t, shares, 2)
	var sum float64
	for _, s := range shares {
		sum += s.Share
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 12.0/14.0, shares[0].Share, 1e-9)
}

func TestMelt_preservesSum(t *testing.T) {
	wide := []WideRow{
		{ID: "a", Values: []float64{1, 2, 3}},
		{ID: "b", Values: []float64{4, na, 6}},
		{ID: "c", Values: []float64{0.5, 0.25}},
	}
	var wideSum float64
	for _, r := range wide {
		for _, v := range r.Values {
			if !math.IsNaN(v) {
				wideSum += v
			}
		}
	}

	long := Melt([]string{"x", "y", "z"}, wide)
	var longSum float64
	for _, r := range long {
		longSum += r.Value
	}
	assert.Equal(t, wideSum, longSum)
	assert.Len(t, long, 7)
	assert.Equal(t, LongRow{ID: "a", Column: "x", Value: 1}, long[0])
	assert.Equal(t, LongRow{ID: "b", Column: "z", Value: 6}, long[len(long)-1])
}

func TestMeanProperty(t *testing.T) {
	ds := sample()
	for _, year := range ds.Years() {
		counts := map[string]int{}
		sums := map[string]float64{}
		for _, r := range ds.Records() {
			if r.Year == year && !colony.Missing(r.NumColonies) {
				counts[r.State]++
				sums[r.State] += r.NumColonies
			}
		}
		got := StateColonies(ds, Query{Year: year})
		require.Len(t, got, len(counts))
		for _, v := range got {
			assert.InDelta(t, sums[v.State]/float64(counts[v.State]), v.Value, 1e-9)
		}
	}
}

func TestCompute(t *testing.T) {
	v := Compute(sample(), Query{Year: 2020})
	assert.Equal(t, 2020, v.Query.Year)
	assert.Len(t, v.Map, 2)
	assert.Len(t, v.Trend, 2)
	assert.Len(t, v.Causes, 2)
	assert.Len(t, v.Lost, 2)

	opts := OptionsOf(sample())
	assert.Equal(t, 2020, opts.YearMin)
	assert.Equal(t, 2021, opts.YearMax)
	assert.Equal(t, []string{"Q1", "Q2"}, opts.Periods)
}

func TestQuery_Selects(t *testing.T) {
	texas := colony.StateInfo{Name: "Texas", Code: "TX"}
	tests := []struct {
		name   string
		states []string
		want   bool
	}{
		{"by name", []string{"Texas"}, true},
		{"by lower name", []string{"texas"}, true},
		{"by code", []string{"TX"}, true},
		{"by lower code", []string{" tx "}, true},
		{"other state", []string{"Ohio"}, false},
		{"no selection", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Query{States: tt.states}.Selects(texas))
		})
	}
}

func TestCanonicalPeriod(t *testing.T) {
	ds := sample()
	assert.Equal(t, "Q1", CanonicalPeriod(ds, "q1"))
	assert.Equal(t, "Q2", CanonicalPeriod(ds, " Q2 "))
	assert.Equal(t, "Q4", CanonicalPeriod(ds, "Q4"))
	assert.Equal(t, "", CanonicalPeriod(ds, "  "))
	assert.Equal(t, "q1", CanonicalPeriod(nil, "q1"))
}
