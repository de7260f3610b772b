package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	gateway "github.com/hivewatch/beedash/apigateway"
	"github.com/hivewatch/beedash/apperr"
	"github.com/hivewatch/beedash/dashboard"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsPath = "/metrics"

// GetMainEngine wires the middleware chain, the metrics endpoint and the
// dashboard routes.
func GetMainEngine(svc *dashboard.Service) *fiber.App {
	if svc.Metrics == nil {
		svc.Metrics = gateway.NewMetrics()
	}
	if svc.Logger == nil {
		svc.Logger = logrusLogger
	}

	route := fiber.New(fiber.Config{
		AppName:               svc.Config.Title,
		Views:                 dashboard.NewEngine(svc.Config.TemplateDir),
		ViewsLayout:           "base",
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	route.Use(gateway.RequestID())
	route.Use(gateway.Tracing(nil))
	route.Use(gateway.RequestLogger(logrusLogger, logSampling))
	route.Use(gateway.Instrumentation(svc.Metrics, metricsPath))

	route.Get(metricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	svc.Routes(route)
	return route
}

// errorHandler renders unhandled errors, including fiber's own 404 and 405,
// in the apperr JSON shape.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := strings.ToLower(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_"))
		if code == "" {
			code = "error"
		}
		return c.Status(fe.Code).JSON(apperr.Payload(apperr.New(code, fe.Code, fe.Message)))
	}
	logrusLogger.WithError(err).Error("unhandled error")
	return c.Status(apperr.Status(err)).JSON(apperr.Payload(err))
}
