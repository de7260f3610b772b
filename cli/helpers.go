package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hivewatch/beedash/aggregate"
	"github.com/hivewatch/beedash/colony"
	"github.com/hivewatch/beedash/settings"
	"github.com/hivewatch/beedash/store"
)

const storeTimeout = 30 * time.Second

// loadDataset reads the CSV at DataPath, or the imported SQL snapshot when
// DataSource is sql.
func loadDataset(cfg settings.Config) (*colony.Dataset, error) {
	if cfg.DataSource != settings.SourceSQL {
		return colony.LoadFile(cfg.DataPath)
	}

	db, err := store.OpenFromConfig(cfg.DatabaseURL, cfg.DatabasePath, cfg.DatabaseDriver)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := store.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return store.New(db).Colonies(ctx)
}

// resolveQuery fills a zero year from the config or the first dataset year.
func resolveQuery(cfg settings.Config, ds *colony.Dataset, year int, states []string, period string) aggregate.Query {
	if year == 0 {
		year = cfg.DefaultYear
	}
	if year == 0 {
		year, _ = ds.YearRange()
	}
	var clean []string
	for _, s := range states {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				clean = append(clean, part)
			}
		}
	}
	return aggregate.Query{Year: year, States: clean, Period: aggregate.CanonicalPeriod(ds, period)}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// renderTable draws rows with a rounded border. Columns listed in numeric are
// right aligned.
func renderTable(title string, headers []string, rows [][]string, numeric ...int) string {
	right := map[int]bool{}
	for _, col := range numeric {
		right[col] = true
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
	if len(rows) == 0 {
		return titleStyle.Render(title) + "\n(no data)\n"
	}
	return titleStyle.Render(title) + "\n" + t.String() + "\n"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// summaryTables renders the map, trend and causes views.
func summaryTables(v aggregate.Views) string {
	var b strings.Builder

	mapRows := make([][]string, 0, len(v.Map))
	for _, r := range v.Map {
		mapRows = append(mapRows, []string{r.State, r.StateCode, formatFloat(r.Value)})
	}
	b.WriteString(renderTable(fmt.Sprintf("Mean colonies per state, %d", v.Query.Year),
		[]string{"State", "Code", "Colonies"}, mapRows, 2))

	trendRows := make([][]string, 0, len(v.Trend))
	for _, r := range v.Trend {
		state := r.State
		if state == "" {
			state = "All states"
		}
		trendRows = append(trendRows, []string{state, strconv.Itoa(r.Year), formatFloat(r.Value)})
	}
	b.WriteString(renderTable("Mean lost colonies per year",
		[]string{"State", "Year", "Lost"}, trendRows, 1, 2))

	causeRows := make([][]string, 0, len(v.Causes))
	for _, r := range v.Causes {
		state := r.State
		if state == "" {
			state = "All states"
		}
		causeRows = append(causeRows, []string{state, r.Label, formatFloat(r.Value)})
	}
	b.WriteString(renderTable(fmt.Sprintf("Loss causes, %d", v.Query.Year),
		[]string{"State", "Cause", "Value"}, causeRows, 2))

	return b.String()
}
