package colony

import "math"

// Cause is one of the loss-cause columns of the survey.
type Cause string

const (
	CauseVarroaMites Cause = "varroa_mites"
	CauseOtherPests  Cause = "other_pests_and_parasites"
	CauseDiseases    Cause = "diseases"
	CausePesticides  Cause = "pesticides"
	CauseOther       Cause = "other"
	CauseUnknown     Cause = "unknown"
)

const numCauses = 6

// Causes lists the loss causes in their canonical column order. Long-form
// tables are emitted in this order.
var Causes = [numCauses]Cause{
	CauseVarroaMites,
	CauseOtherPests,
	CauseDiseases,
	CausePesticides,
	CauseOther,
	CauseUnknown,
}

// Label is the human readable name used on chart axes.
func (c Cause) Label() string {
	switch c {
	case CauseVarroaMites:
		return "Varroa mites"
	case CauseOtherPests:
		return "Other pests and parasites"
	case CauseDiseases:
		return "Diseases"
	case CausePesticides:
		return "Pesticides"
	case CauseOther:
		return "Other"
	case CauseUnknown:
		return "Unknown"
	}
	return string(c)
}

// Record is one row of the colony dataset. Measures that were absent in the
// source are NaN; use Missing to test for them.
type Record struct {
	State      string `json:"state" binding:"required"`
	StateCode  string `json:"state_code" binding:"omitempty,statecode"`
	Year       int    `json:"year" binding:"required,min=1900,max=2200"`
	Quarter    int    `json:"quarter" binding:"min=0,max=4"`
	TimePeriod string `json:"time_period"`

	NumColonies       float64 `json:"num_colonies"`
	MaxColonies       float64 `json:"max_colonies"`
	LostColonies      float64 `json:"lost_colonies"`
	PercentLost       float64 `json:"percent_lost"`
	AddedColonies     float64 `json:"added_colonies"`
	RenovatedColonies float64 `json:"renovated_colonies"`
	PercentRenovated  float64 `json:"percent_renovated"`

	Causes [numCauses]float64 `json:"-"`
}

// Cause returns the value of the given loss cause, NaN when absent.
func (r Record) Cause(c Cause) float64 {
	for i, name := range Causes {
		if name == c {
			return r.Causes[i]
		}
	}
	return math.NaN()
}

// Key is the natural key of a record.
type Key struct {
	State   string
	Year    int
	Quarter int
}

func (r Record) Key() Key {
	return Key{State: r.State, Year: r.Year, Quarter: r.Quarter}
}

// Missing reports whether v encodes an absent measure.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// NA is the value stored for absent measures.
func NA() float64 {
	return math.NaN()
}

// blankRecord returns a record whose measures are all missing.
func blankRecord() Record {
	r := Record{
		NumColonies:       NA(),
		MaxColonies:       NA(),
		LostColonies:      NA(),
		PercentLost:       NA(),
		AddedColonies:     NA(),
		RenovatedColonies: NA(),
		PercentRenovated:  NA(),
	}
	for i := range r.Causes {
		r.Causes[i] = NA()
	}
	return r
}
