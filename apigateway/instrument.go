package gateway

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const namespace = "beedash"

// Metrics holds the dashboard collectors. They are registered with the default
// registry once per process; later calls to NewMetrics share them.
type Metrics struct {
	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	ResponseSize   *prometheus.HistogramVec
	Aggregations   *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	DatasetRecords prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

func registerCounterVec(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		logrus.Warnf("prometheus counter register failed: %v", err)
	}
	return c
}

func registerHistogramVec(c *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		logrus.Warnf("prometheus histogram register failed: %v", err)
	}
	return c
}

func registerGauge(g prometheus.Gauge) prometheus.Gauge {
	if err := prometheus.Register(g); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Gauge); ok {
				return existing
			}
		}
		logrus.Warnf("prometheus gauge register failed: %v", err)
	}
	return g
}

func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			Requests: registerCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Number of requests per route and status.",
			}, []string{"method", "route", "status"})),
			Duration: registerHistogramVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request duration per route.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"})),
			ResponseSize: registerHistogramVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Response body size per route.",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
			}, []string{"route"})),
			Aggregations: registerCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "views_total",
				Help:      "Number of computed views by name.",
			}, []string{"view"})),
			CacheLookups: registerCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Chart cache lookups by result.",
			}, []string{"result"})),
			DatasetRecords: registerGauge(prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "dataset",
				Name:      "records",
				Help:      "Number of colony records loaded.",
			})),
		}
	})
	return metrics
}

// View counts one computed view.
func (m *Metrics) View(name string) {
	if m == nil {
		return
	}
	m.Aggregations.WithLabelValues(name).Inc()
}

// CacheLookup counts a chart cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Instrumentation records request count, latency and size per route. The
// metrics endpoint itself is not measured.
func Instrumentation(m *Metrics, metricsPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == metricsPath {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := statusOf(c, err)
		route := routeLabel(c, status)
		m.Requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.Duration.WithLabelValues(c.Method(), route).Observe(duration.Seconds())
		m.ResponseSize.WithLabelValues(route).Observe(float64(len(c.Response().Body())))
		return err
	}
}

func routeLabel(c *fiber.Ctx, status int) string {
	if status == fiber.StatusNotFound {
		if r := c.Route(); r == nil || r.Path == "/" && c.Path() != "/" {
			return "unmatched"
		}
	}
	return routeOf(c)
}
