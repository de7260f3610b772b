package aggregate

import "github.com/hivewatch/beedash/colony"

// WideRow is one row of a wide table: an identifier plus one value per column.
type WideRow struct {
	ID     string
	Year   int
	Values []float64
}

// LongRow is one (identifier, column, value) cell of a melted table.
type LongRow struct {
	ID     string
	Year   int
	Column string
	Value  float64
}

// Melt reshapes a wide table into long form. Output is column-major: every
// row for the first column, then every row for the second, and so on. Missing
// cells are dropped, so the sum of the long values equals the sum of the
// present wide values.
func Melt(columns []string, rows []WideRow) []LongRow {
	out := make([]LongRow, 0, len(columns)*len(rows))
	for c, name := range columns {
		for _, row := range rows {
			if c >= len(row.Values) || colony.Missing(row.Values[c]) {
				continue
			}
			out = append(out, LongRow{ID: row.ID, Year: row.Year, Column: name, Value: row.Values[c]})
		}
	}
	return out
}
