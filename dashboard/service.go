// Package dashboard serves the bee colony dashboard: the HTML page, the JSON
// views, rendered charts and the workbook export.
package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sort"

	"github.com/gofiber/fiber/v2"
	gateway "github.com/hivewatch/beedash/apigateway"
	"github.com/hivewatch/beedash/aggregate"
	"github.com/hivewatch/beedash/apperr"
	"github.com/hivewatch/beedash/cache"
	"github.com/hivewatch/beedash/colony"
	"github.com/hivewatch/beedash/export"
	"github.com/hivewatch/beedash/render"
	"github.com/hivewatch/beedash/settings"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/hivewatch/beedash/dashboard")

const (
	svgContentType  = "image/svg+xml"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Service holds the loaded dataset and everything the handlers share. The
// dataset is read-only after startup.
type Service struct {
	Dataset *colony.Dataset
	Config  settings.Config
	Logger  *logrus.Logger
	Cache   cache.Cache
	Metrics *gateway.Metrics
}

func (s *Service) logger() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}

func (s *Service) cache() cache.Cache {
	if s.Cache == nil {
		return cache.Nop{}
	}
	return s.Cache
}

// Routes mounts the dashboard on route.
func (s *Service) Routes(route fiber.Router) {
	route.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard", http.StatusFound)
	})
	route.Get("/dashboard", s.Page)
	route.Get("/healthz", s.Health)
	route.Get("/export.xlsx", s.Export)
	route.Get("/charts/:name.svg", s.Chart)

	api := route.Group("/api")
	api.Get("/options", s.Options)
	api.Get("/map", s.viewHandler("map", func(ds *colony.Dataset, q aggregate.Query) any {
		return nonNil(aggregate.StateColonies(ds, q))
	}))
	api.Get("/trend", s.viewHandler("trend", func(ds *colony.Dataset, q aggregate.Query) any {
		return nonNil(aggregate.LossTrend(ds, q))
	}))
	api.Get("/causes", s.viewHandler("causes", func(ds *colony.Dataset, q aggregate.Query) any {
		return nonNil(aggregate.LossCauses(ds, q))
	}))
	api.Get("/share", s.viewHandler("share", func(ds *colony.Dataset, q aggregate.Query) any {
		return nonNil(aggregate.CauseShares(ds, q))
	}))
	api.Get("/lost", s.viewHandler("lost", func(ds *colony.Dataset, q aggregate.Query) any {
		return nonNil(aggregate.LostByState(ds, q))
	}))
	api.Get("/flow", s.viewHandler("flow", func(ds *colony.Dataset, q aggregate.Query) any {
		return nonNil(aggregate.ColonyFlow(ds, q))
	}))
}

// prepare resolves the dataset and query shared by every data handler.
func (s *Service) prepare(c *fiber.Ctx) (aggregate.Query, error) {
	if s.Dataset == nil {
		return aggregate.Query{}, apperr.ErrNoDataset
	}
	return s.parseQuery(c)
}

func (s *Service) viewHandler(name string, view func(*colony.Dataset, aggregate.Query) any) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := s.prepare(c)
		if err != nil {
			return jsonResponse(c, 0, err)
		}
		result := view(s.Dataset, q)
		s.Metrics.View(name)
		return jsonResponse(c, http.StatusOK, fiber.Map{"query": q, "result": result})
	}
}

func (s *Service) Options(c *fiber.Ctx) error {
	if s.Dataset == nil {
		return jsonResponse(c, 0, apperr.ErrNoDataset)
	}
	return jsonResponse(c, http.StatusOK, aggregate.OptionsOf(s.Dataset))
}

func (s *Service) Health(c *fiber.Ctx) error {
	if s.Dataset == nil {
		return jsonResponse(c, 0, apperr.ErrNoDataset)
	}
	return jsonResponse(c, http.StatusOK, fiber.Map{
		"status":      "ok",
		"records":     s.Dataset.Len(),
		"source":      s.Dataset.Source(),
		"fingerprint": s.Dataset.Fingerprint(),
	})
}

type chartFunc func(w io.Writer, ds *colony.Dataset, q aggregate.Query) error

var charts = map[string]chartFunc{
	"trend": func(w io.Writer, ds *colony.Dataset, q aggregate.Query) error {
		return render.TrendChart(w, aggregate.LossTrend(ds, q), "Lost colonies per year")
	},
	"causes": func(w io.Writer, ds *colony.Dataset, q aggregate.Query) error {
		return render.CausesChart(w, aggregate.LossCauses(ds, q), fmt.Sprintf("Impact of stressors in %d", q.Year))
	},
	"share": func(w io.Writer, ds *colony.Dataset, q aggregate.Query) error {
		return render.CauseSharePie(w, aggregate.CauseShares(ds, q), fmt.Sprintf("Share of stressors in %d", q.Year))
	},
	"lost": func(w io.Writer, ds *colony.Dataset, q aggregate.Query) error {
		return render.LostByStateChart(w, aggregate.LostByState(ds, q), lostTitle(q))
	},
	"flow": func(w io.Writer, ds *colony.Dataset, q aggregate.Query) error {
		return render.FlowChart(w, aggregate.ColonyFlow(ds, q), "Colonies added vs lost")
	},
}

// ChartNames lists the charts served under /charts, sorted.
func ChartNames() []string {
	names := make([]string, 0, len(charts))
	for name := range charts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderChart draws the named chart for q to w.
func RenderChart(w io.Writer, name string, ds *colony.Dataset, q aggregate.Query) error {
	draw, ok := charts[name]
	if !ok {
		return apperr.Wrap(fmt.Errorf("chart %q", name), apperr.ErrNotFound, "unknown chart "+name)
	}
	return draw(w, ds, q)
}

func lostTitle(q aggregate.Query) string {
	if q.Period != "" {
		return fmt.Sprintf("Lost colonies by state, %d %s", q.Year, q.Period)
	}
	return fmt.Sprintf("Lost colonies by state, %d", q.Year)
}

// Chart serves /charts/:name.svg, through the chart cache.
func (s *Service) Chart(c *fiber.Ctx) error {
	name := c.Params("name")
	draw, ok := charts[name]
	if !ok {
		return jsonResponse(c, 0, apperr.Wrap(fmt.Errorf("chart %q", name), apperr.ErrNotFound, "unknown chart "+name))
	}
	q, err := s.prepare(c)
	if err != nil {
		return jsonResponse(c, 0, err)
	}

	ctx := c.UserContext()
	key := cache.Key(name, q, s.Dataset.Fingerprint())
	if body, hit := s.cache().Get(ctx, key); hit {
		s.Metrics.CacheLookup(true)
		c.Locals(gateway.CacheStatusKey, "hit")
		c.Set(fiber.HeaderContentType, svgContentType)
		return c.Send(body)
	}
	s.Metrics.CacheLookup(false)
	c.Locals(gateway.CacheStatusKey, "miss")

	_, span := tracer.Start(ctx, "render chart")
	span.SetAttributes(attribute.String("chart", name), attribute.Int("year", q.Year))
	var buf bytes.Buffer
	err = draw(&buf, s.Dataset, q)
	span.End()
	if err != nil {
		s.logger().WithError(err).WithField("chart", name).Error("chart render failed")
		return jsonResponse(c, 0, apperr.Wrap(err, apperr.ErrRender, "could not render "+name))
	}
	s.Metrics.View(name)
	s.cache().Set(ctx, key, buf.Bytes())

	c.Set(fiber.HeaderContentType, svgContentType)
	return c.Send(buf.Bytes())
}

// Export serves every view for the query as an xlsx workbook.
func (s *Service) Export(c *fiber.Ctx) error {
	q, err := s.prepare(c)
	if err != nil {
		return jsonResponse(c, 0, err)
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, aggregate.Compute(s.Dataset, q)); err != nil {
		s.logger().WithError(err).Error("export failed")
		return jsonResponse(c, 0, apperr.Wrap(err, apperr.ErrExport, "could not build workbook"))
	}
	s.Metrics.View("export")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="beedash-%d.xlsx"`, q.Year))
	return c.Send(buf.Bytes())
}

type page struct {
	Title     string
	Query     aggregate.Query
	Options   aggregate.Options
	YearSpan  int
	Selected  map[string]bool
	Views     aggregate.Views
	Map       render.TileMap
	Charts    map[string]template.URL
	ExportURL template.URL
}

// Page renders the dashboard shell for the query.
func (s *Service) Page(c *fiber.Ctx) error {
	q, err := s.prepare(c)
	if err != nil {
		return jsonResponse(c, 0, err)
	}
	views := aggregate.Compute(s.Dataset, q)
	s.Metrics.View("page")

	options := aggregate.OptionsOf(s.Dataset)
	selected := map[string]bool{}
	for _, st := range options.States {
		if q.Selects(st) {
			selected[st.Name] = true
		}
	}
	encoded := encodeQuery(q)
	chartURLs := map[string]template.URL{}
	for name := range charts {
		chartURLs[name] = template.URL("/charts/" + name + ".svg?" + encoded)
	}

	span := 0
	if len(options.Years) > 0 {
		span = options.YearMax - options.YearMin + 1
	}

	var buf bytes.Buffer
	err = s.renderView(c, &buf, "index", page{
		Title:     s.Config.Title,
		Query:     q,
		Options:   options,
		YearSpan:  span,
		Selected:  selected,
		Views:     views,
		Map:       render.Choropleth(views.Map),
		Charts:    chartURLs,
		ExportURL: template.URL("/export.xlsx?" + encoded),
	})
	if err != nil {
		s.logger().WithError(err).Error("page render failed")
		return jsonResponse(c, 0, apperr.Wrap(err, apperr.ErrRender, "could not render dashboard"))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// renderView executes name inside the app's layout.
func (s *Service) renderView(c *fiber.Ctx, w io.Writer, name string, data any) error {
	cfg := c.App().Config()
	if cfg.Views == nil {
		return fmt.Errorf("no view engine for %q", name)
	}
	var layouts []string
	if cfg.ViewsLayout != "" {
		layouts = append(layouts, cfg.ViewsLayout)
	}
	return cfg.Views.Render(w, name, data, layouts...)
}
