package gateway

import (
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CacheStatusKey is the fiber local a handler sets to "hit" or "miss" when it
// served a cached chart.
const CacheStatusKey = "cache_status"

// LogSamplingConfig throttles successful request logs to one per Tick. Requests
// slower than After and 5xx responses are always logged.
type LogSamplingConfig struct {
	Tick  time.Duration
	After time.Duration
}

// logSampler lets one fast request through per tick. next holds the unix nano
// time from which the next one may pass.
type logSampler struct {
	cfg  LogSamplingConfig
	next atomic.Int64
	now  func() time.Time
}

func newLogSampler(cfg LogSamplingConfig) *logSampler {
	return &logSampler{cfg: cfg, now: time.Now}
}

func (s *logSampler) Allow(took time.Duration) bool {
	if s.cfg.Tick <= 0 || (s.cfg.After > 0 && took >= s.cfg.After) {
		return true
	}
	now := s.now().UnixNano()
	next := s.next.Load()
	if now < next {
		return false
	}
	return s.next.CompareAndSwap(next, now+int64(s.cfg.Tick))
}

// RequestLogger writes one http_request entry per sampled request: errors at
// error level, client errors at warn, the rest at info.
func RequestLogger(logger *logrus.Logger, cfg LogSamplingConfig) fiber.Handler {
	sampler := newLogSampler(cfg)
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		took := time.Since(start)

		status := statusOf(c, err)
		if status < fiber.StatusInternalServerError && !sampler.Allow(took) {
			return err
		}

		entry := logger.WithFields(requestFields(c, status, took))
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Log(levelFor(status), "http_request")
		return err
	}
}

func requestFields(c *fiber.Ctx, status int, took time.Duration) logrus.Fields {
	fields := logrus.Fields{
		"request_id":  RequestIDFromCtx(c),
		"method":      c.Method(),
		"route":       routeOf(c),
		"status":      status,
		"duration_ms": took.Milliseconds(),
		"bytes_out":   len(c.Response().Body()),
		"ip":          c.IP(),
	}
	if q := c.Request().URI().QueryString(); len(q) > 0 {
		fields["query"] = string(q)
	}
	if cs, ok := c.Locals(CacheStatusKey).(string); ok {
		fields["cache"] = cs
	}
	return fields
}

func levelFor(status int) logrus.Level {
	switch {
	case status >= fiber.StatusInternalServerError:
		return logrus.ErrorLevel
	case status >= fiber.StatusBadRequest:
		return logrus.WarnLevel
	}
	return logrus.InfoLevel
}

// statusOf is the response status, or the code of a fiber error that the
// error handler has not written yet.
func statusOf(c *fiber.Ctx, err error) int {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return c.Response().StatusCode()
}

// routeOf prefers the registered route pattern so that label cardinality stays
// bounded.
func routeOf(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return c.Path()
}
