package colony

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// CauseScale tells how loss-cause values are expressed in a dataset.
type CauseScale string

const (
	ScaleFraction CauseScale = "fraction"
	ScalePercent  CauseScale = "percent"
)

// StateInfo pairs a state name with its postal code.
type StateInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Dataset is an immutable, in-memory table of colony records. It is safe for
// concurrent readers.
type Dataset struct {
	source      string
	records     []Record
	years       []int
	states      []StateInfo
	periods     []string
	scale       CauseScale
	fingerprint string
}

// New builds a dataset over a copy of records.
func New(source string, records []Record) *Dataset {
	if source == "" {
		source = "colonies"
	}
	d := &Dataset{
		source:  source,
		records: append([]Record(nil), records...),
		scale:   ScaleFraction,
	}
	d.index()
	return d
}

func (d *Dataset) index() {
	years := map[int]bool{}
	codes := map[string]string{}
	periodSeen := map[string]bool{}
	h := xxhash.New()
	var buf []byte

	for _, r := range d.records {
		years[r.Year] = true
		if code, ok := codes[r.State]; !ok || code == "" {
			codes[r.State] = r.StateCode
		}
		if r.TimePeriod != "" && !periodSeen[r.TimePeriod] {
			periodSeen[r.TimePeriod] = true
			d.periods = append(d.periods, r.TimePeriod)
		}
		for _, v := range r.Causes {
			if !Missing(v) && v > 1 {
				d.scale = ScalePercent
			}
		}

		buf = buf[:0]
		buf = append(buf, r.State...)
		buf = append(buf, 0)
		buf = strconv.AppendInt(buf, int64(r.Year), 10)
		buf = strconv.AppendInt(buf, int64(r.Quarter), 10)
		buf = append(buf, r.TimePeriod...)
		for _, v := range []float64{r.NumColonies, r.LostColonies, r.AddedColonies} {
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		for _, v := range r.Causes {
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		_, _ = h.Write(buf)
	}

	for y := range years {
		d.years = append(d.years, y)
	}
	sort.Ints(d.years)

	for name, code := range codes {
		d.states = append(d.states, StateInfo{Name: name, Code: code})
	}
	sort.Slice(d.states, func(i, j int) bool { return d.states[i].Name < d.states[j].Name })

	d.fingerprint = strconv.FormatUint(h.Sum64(), 16)
}

// Source names where the records came from (file path or database).
func (d *Dataset) Source() string { return d.source }

// Len is the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns the backing slice. Callers must not modify it.
func (d *Dataset) Records() []Record { return d.records }

// Years returns the distinct years in ascending order.
func (d *Dataset) Years() []int { return append([]int(nil), d.years...) }

// YearRange returns the first and last year, or zeros for an empty dataset.
func (d *Dataset) YearRange() (int, int) {
	if len(d.years) == 0 {
		return 0, 0
	}
	return d.years[0], d.years[len(d.years)-1]
}

// HasYear reports whether any record belongs to year.
func (d *Dataset) HasYear(year int) bool {
	i := sort.SearchInts(d.years, year)
	return i < len(d.years) && d.years[i] == year
}

// States returns the distinct states sorted by name.
func (d *Dataset) States() []StateInfo { return append([]StateInfo(nil), d.states...) }

// TimePeriods returns the distinct time period labels in first-seen order.
func (d *Dataset) TimePeriods() []string { return append([]string(nil), d.periods...) }

func (d *Dataset) CauseScale() CauseScale { return d.scale }

// Fingerprint is a content hash that changes whenever the records do.
func (d *Dataset) Fingerprint() string { return d.fingerprint }
