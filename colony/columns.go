package colony

import "strings"

type column int

const (
	colState column = iota
	colStateCode
	colYear
	colQuarter
	colTimePeriod
	colNumColonies
	colMaxColonies
	colLostColonies
	colPercentLost
	colAddedColonies
	colRenovatedColonies
	colPercentRenovated
	colVarroaMites
	colOtherPests
	colDiseases
	colPesticides
	colOther
	colUnknown
	numColumns
)

var columnAliases = map[string]column{
	"state":                     colState,
	"state_name":                colState,
	"state_code":                colStateCode,
	"code":                      colStateCode,
	"abbreviation":              colStateCode,
	"year":                      colYear,
	"quarter":                   colQuarter,
	"time_period":               colTimePeriod,
	"months":                    colTimePeriod,
	"period":                    colTimePeriod,
	"num_colonies":              colNumColonies,
	"colonies_n":                colNumColonies,
	"colonies":                  colNumColonies,
	"max_colonies":              colMaxColonies,
	"colonies_max":              colMaxColonies,
	"lost_colonies":             colLostColonies,
	"colonies_lost":             colLostColonies,
	"colonies_lost_n":           colLostColonies,
	"percent_lost":              colPercentLost,
	"colonies_lost_pct":         colPercentLost,
	"added_colonies":            colAddedColonies,
	"colonies_added_n":          colAddedColonies,
	"renovated_colonies":        colRenovatedColonies,
	"colonies_reno_n":           colRenovatedColonies,
	"percent_renovated":         colPercentRenovated,
	"colonies_reno_pct":         colPercentRenovated,
	"varroa_mites":              colVarroaMites,
	"other_pests_and_parasites": colOtherPests,
	"other_pests_parasites":     colOtherPests,
	"diseases":                  colDiseases,
	"pesticides":                colPesticides,
	"other":                     colOther,
	"unknown":                   colUnknown,
}

var columnNames = [numColumns]string{
	"state", "state_code", "year", "quarter", "time_period",
	"num_colonies", "max_colonies", "lost_colonies", "percent_lost",
	"added_colonies", "renovated_colonies", "percent_renovated",
	"varroa_mites", "other_pests_and_parasites", "diseases", "pesticides", "other", "unknown",
}

func (c column) String() string {
	if c < 0 || c >= numColumns {
		return "?"
	}
	return columnNames[c]
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	h = strings.ToLower(h)
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(h)
	return strings.Trim(h, "_")
}

// layout maps each known column to its index in a CSV row, -1 when absent.
type layout [numColumns]int

func resolveLayout(header []string) (layout, error) {
	var l layout
	for i := range l {
		l[i] = -1
	}
	for i, h := range header {
		col, ok := columnAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		// first occurrence wins
		if l[col] == -1 {
			l[col] = i
		}
	}
	switch {
	case l[colState] == -1:
		return l, errMissingColumn("state")
	case l[colYear] == -1:
		return l, errMissingColumn("year")
	case l[colNumColonies] == -1 && l[colLostColonies] == -1:
		return l, errMissingColumn("num_colonies or lost_colonies")
	}
	return l, nil
}

func (l layout) has(c column) bool {
	return l[c] >= 0
}

func (l layout) cell(row []string, c column) string {
	i := l[c]
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
