package colony

import (
	"fmt"
	"strconv"
	"strings"
)

var monthQuarter = map[string]int{
	"jan": 1, "feb": 1, "mar": 1,
	"apr": 2, "may": 2, "jun": 2,
	"jul": 3, "aug": 3, "sep": 3,
	"oct": 4, "nov": 4, "dec": 4,
}

// QuarterOf derives the calendar quarter from a time period label such as
// "January-March", "Apr-Jun" or "Q3". It returns 0 when the label does not
// name a quarter.
func QuarterOf(period string) int {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "" {
		return 0
	}
	if strings.HasPrefix(p, "q") {
		if n, err := strconv.Atoi(p[1:]); err == nil && n >= 1 && n <= 4 {
			return n
		}
		return 0
	}
	if len(p) >= 3 {
		if q, ok := monthQuarter[p[:3]]; ok {
			return q
		}
	}
	return 0
}

// PeriodLabel is the label synthesized for datasets without a period column.
func PeriodLabel(quarter int) string {
	if quarter < 1 || quarter > 4 {
		return ""
	}
	return fmt.Sprintf("Q%d", quarter)
}
