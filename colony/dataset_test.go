package colony

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rec(state string, year int, num float64) Record {
	r := blankRecord()
	r.State = state
	r.StateCode = StateCode(state)
	r.Year = year
	r.NumColonies = num
	return r
}

func TestDataset_indexes(t *testing.T) {
	ds := New("", []Record{
		rec("Texas", 2016, 10),
		rec("California", 2015, 20),
		rec("Texas", 2015, 30),
	})

	assert.Equal(t, "colonies", ds.Source())
	assert.Equal(t, []int{2015, 2016}, ds.Years())
	lo, hi := ds.YearRange()
	assert.Equal(t, 2015, lo)
	assert.Equal(t, 2016, hi)
	assert.True(t, ds.HasYear(2016))
	assert.False(t, ds.HasYear(2017))
	assert.Equal(t, []StateInfo{{"California", "CA"}, {"Texas", "TX"}}, ds.States())
	assert.Equal(t, ScaleFraction, ds.CauseScale())
}

func TestDataset_copiesInput(t *testing.T) {
	in := []Record{rec("Texas", 2016, 10)}
	ds := New("x", in)
	in[0].State = "Ohio"
	assert.Equal(t, "Texas", ds.Records()[0].State)
}

func TestDataset_Fingerprint(t *testing.T) {
	a := New("a", []Record{rec("Texas", 2016, 10)})
	b := New("b", []Record{rec("Texas", 2016, 10)})
	c := New("c", []Record{rec("Texas", 2016, 11)})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestDataset_empty(t *testing.T) {
	ds := New("empty", nil)
	lo, hi := ds.YearRange()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
	assert.Empty(t, ds.Years())
	assert.Empty(t, ds.States())
}

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		period string
		want   int
	}{
		{"January-March", 1},
		{"April-June", 2},
		{"jul-sep", 3},
		{"October-December", 4},
		{"Q2", 2},
		{"q9", 0},
		{"", 0},
		{"annual", 0},
	}
	for _, tt := range tests {
		if got := QuarterOf(tt.period); got != tt.want {
			t.Errorf("QuarterOf(%q) = %d, want %d", tt.period, got, tt.want)
		}
	}
}

func TestStateCode(t *testing.T) {
	assert.Equal(t, "NY", StateCode(" New York "))
	assert.Equal(t, "", StateCode("Other States"))
	assert.True(t, IsStateCode("ca"))
	assert.False(t, IsStateCode("ZZ"))
}
