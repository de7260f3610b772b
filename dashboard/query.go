package dashboard

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hivewatch/beedash/aggregate"
	"github.com/hivewatch/beedash/apperr"
)

// parseQuery reads year, state and period from the request. state may be
// repeated and each value may hold a comma separated list.
func (s *Service) parseQuery(c *fiber.Ctx) (aggregate.Query, error) {
	q := aggregate.Query{Year: s.defaultYear()}

	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperr.BadParam("year", raw, "year must be an integer", err)
		}
		q.Year = year
	}

	for _, v := range c.Context().QueryArgs().PeekMulti("state") {
		q.States = append(q.States, splitStates(string(v))...)
	}
	q.Period = aggregate.CanonicalPeriod(s.Dataset, c.Query("period"))
	return q, nil
}

func splitStates(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// defaultYear is the configured year when set, else the first dataset year.
func (s *Service) defaultYear() int {
	if s.Config.DefaultYear != 0 {
		return s.Config.DefaultYear
	}
	if s.Dataset == nil {
		return 0
	}
	lo, _ := s.Dataset.YearRange()
	return lo
}

// encodeQuery is the inverse of parseQuery, used for chart and export links.
func encodeQuery(q aggregate.Query) string {
	v := url.Values{}
	v.Set("year", strconv.Itoa(q.Year))
	for _, st := range q.States {
		v.Add("state", st)
	}
	if q.Period != "" {
		v.Set("period", q.Period)
	}
	return v.Encode()
}
