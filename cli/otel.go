package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/hivewatch/beedash/settings"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const otelShutdownTimeout = 5 * time.Second

// tracingSetup is the tracing config after environment fallbacks.
type tracingSetup struct {
	Enabled    bool
	Endpoint   string
	Insecure   bool
	Service    string
	Version    string
	SampleRate float64
}

// resolveTracing merges the config with the standard OTEL_* variables. An
// endpoint from either source turns tracing on.
func resolveTracing(cfg settings.Config, getenv func(string) string) tracingSetup {
	ts := tracingSetup{
		Endpoint:   firstNonEmpty(cfg.OtelEndpoint, getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Insecure:   cfg.OtelInsecure,
		Service:    firstNonEmpty(cfg.OtelServiceName, getenv("OTEL_SERVICE_NAME"), "beedash"),
		Version:    cfg.OtelServiceVersion,
		SampleRate: clamp01(cfg.OtelSampleRate),
	}
	ts.Enabled = cfg.OtelEnabled || ts.Endpoint != ""
	return ts
}

// initOTel installs a global OTLP tracer provider when tracing is enabled.
// The returned func flushes and stops it and is a no-op otherwise.
func initOTel(ctx context.Context, cfg settings.Config, logger *logrus.Logger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	ts := resolveTracing(cfg, os.Getenv)
	if !ts.Enabled {
		return noop
	}

	var opts []otlptracegrpc.Option
	if ts.Endpoint != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(ts.Endpoint))
	}
	if ts.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		logger.WithError(err).Warn("otel trace exporter init failed")
		return noop
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(ts.Service),
		semconv.ServiceVersionKey.String(ts.Version),
	))
	if err != nil {
		logger.WithError(err).Warn("otel resource init failed")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ts.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.WithFields(logrus.Fields{
		"endpoint":    ts.Endpoint,
		"sample_rate": ts.SampleRate,
		"service":     ts.Service,
	}).Info("otel tracing enabled")
	return tp.Shutdown
}

// clamp01 keeps the sample rate in (0, 1]; unset means 10%.
func clamp01(v float64) float64 {
	switch {
	case v <= 0:
		return 0.1
	case v > 1:
		return 1
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return ""
}
