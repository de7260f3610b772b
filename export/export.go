// Package export writes the dashboard views to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/hivewatch/beedash/aggregate"
	"github.com/xuri/excelize/v2"
)

const (
	SheetMap    = "Map"
	SheetTrend  = "Trend"
	SheetCauses = "Causes"
	SheetLost   = "Lost"
	SheetFlow   = "Flow"

	colWidth = 18
)

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

func sheets(v aggregate.Views) []sheet {
	mapRows := make([][]any, 0, len(v.Map))
	for _, r := range v.Map {
		mapRows = append(mapRows, []any{r.State, r.StateCode, r.Value})
	}
	trendRows := make([][]any, 0, len(v.Trend))
	for _, r := range v.Trend {
		state := r.State
		if state == "" {
			state = "All states"
		}
		trendRows = append(trendRows, []any{state, r.Year, r.Value})
	}
	causeRows := make([][]any, 0, len(v.Causes))
	for _, r := range v.Causes {
		causeRows = append(causeRows, []any{r.State, r.Year, string(r.Cause), r.Label, r.Value})
	}
	lostRows := make([][]any, 0, len(v.Lost))
	for _, r := range v.Lost {
		lostRows = append(lostRows, []any{r.State, r.StateCode, r.Value})
	}
	flowRows := make([][]any, 0, len(v.Flow))
	for _, r := range v.Flow {
		flowRows = append(flowRows, []any{r.Year, optional(r.Added), optional(r.Lost)})
	}

	return []sheet{
		{SheetMap, []string{"State", "Code", "Mean colonies"}, mapRows},
		{SheetTrend, []string{"State", "Year", "Mean lost colonies"}, trendRows},
		{SheetCauses, []string{"State", "Year", "Cause", "Label", "Value"}, causeRows},
		{SheetLost, []string{"State", "Code", "Mean lost colonies"}, lostRows},
		{SheetFlow, []string{"Year", "Added", "Lost"}, flowRows},
	}
}

// optional leaves the cell blank for a missing value.
func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Workbook builds a workbook with one sheet per view.
func Workbook(v aggregate.Views) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range sheets(v) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, s); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, s sheet) error {
	for i, h := range s.header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.name, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(s.name, "A", last, colWidth); err != nil {
		return err
	}
	for r, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// Write streams the workbook for v to w.
func Write(w io.Writer, v aggregate.Views) error {
	f, err := Workbook(v)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// SaveAs writes the workbook for v to path.
func SaveAs(path string, v aggregate.Views) error {
	f, err := Workbook(v)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
