package colony

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"-":    true,
	"(z)":  true,
	"(x)":  true,
	"(na)": true,
	"(d)":  true,
}

var errEmptyValue = errors.New("empty value")

// LoadFile reads a colony CSV from disk.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()
	return Load(f, path)
}

// Load parses a colony CSV. The first row must be a header; columns are
// matched by name so their order and any extra columns do not matter.
// Missing measure cells become NaN. Any other unparseable cell fails the
// whole load.
func Load(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Source: source, Err: ErrNoRecords}
	}
	if err != nil {
		return nil, csvLoadError(source, err)
	}
	l, err := resolveLayout(header)
	if err != nil {
		return nil, &LoadError{Source: source, Line: 1, Err: err}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvLoadError(source, err)
		}
		line, _ := reader.FieldPos(0)
		if blankRow(row) {
			continue
		}
		rec, col, err := parseRow(l, row)
		if err != nil {
			return nil, &LoadError{Source: source, Line: line, Column: col, Err: err}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &LoadError{Source: source, Err: ErrNoRecords}
	}
	return New(source, records), nil
}

func csvLoadError(source string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &LoadError{Source: source, Line: perr.Line, Err: perr.Err}
	}
	return &LoadError{Source: source, Err: err}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRow(l layout, row []string) (Record, string, error) {
	rec := blankRecord()

	rec.State = l.cell(row, colState)
	if rec.State == "" {
		return rec, colState.String(), errEmptyValue
	}

	year, err := parseInt(l.cell(row, colYear))
	if err != nil {
		return rec, colYear.String(), err
	}
	rec.Year = year

	rec.TimePeriod = l.cell(row, colTimePeriod)
	if l.has(colQuarter) && l.cell(row, colQuarter) != "" {
		q, err := parseInt(strings.TrimPrefix(strings.ToUpper(l.cell(row, colQuarter)), "Q"))
		if err != nil {
			return rec, colQuarter.String(), err
		}
		rec.Quarter = q
	} else {
		rec.Quarter = QuarterOf(rec.TimePeriod)
	}
	if rec.TimePeriod == "" {
		rec.TimePeriod = PeriodLabel(rec.Quarter)
	}

	rec.StateCode = strings.ToUpper(l.cell(row, colStateCode))
	if rec.StateCode == "" {
		rec.StateCode = StateCode(rec.State)
	}

	measures := []struct {
		col column
		dst *float64
	}{
		{colNumColonies, &rec.NumColonies},
		{colMaxColonies, &rec.MaxColonies},
		{colLostColonies, &rec.LostColonies},
		{colPercentLost, &rec.PercentLost},
		{colAddedColonies, &rec.AddedColonies},
		{colRenovatedColonies, &rec.RenovatedColonies},
		{colPercentRenovated, &rec.PercentRenovated},
	}
	for _, m := range measures {
		v, err := parseMeasure(l.cell(row, m.col))
		if err != nil {
			return rec, m.col.String(), err
		}
		*m.dst = v
	}
	for i := range rec.Causes {
		col := colVarroaMites + column(i)
		v, err := parseMeasure(l.cell(row, col))
		if err != nil {
			return rec, col.String(), err
		}
		rec.Causes[i] = v
	}

	if field, err := ValidateRecord(rec); err != nil {
		return rec, field, err
	}
	return rec, "", nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errEmptyValue
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int(f), nil
}

func parseMeasure(s string) (float64, error) {
	if missingTokens[strings.ToLower(s)] {
		return NA(), nil
	}
	clean := strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %q", s)
	}
	return v, nil
}
