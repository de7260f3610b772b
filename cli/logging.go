package main

import (
	"io"
	"os"
	"time"

	gateway "github.com/hivewatch/beedash/apigateway"
	"github.com/hivewatch/beedash/settings"
	"github.com/sirupsen/logrus"
)

const (
	defaultLogSamplingTick  = 5 * time.Second
	defaultLogSamplingAfter = 2 * time.Second
)

// configureLogger applies level, format and caller reporting to logrusLogger
// and sets the request log sampling. is_debug forces debug level.
func configureLogger(cfg settings.Config) {
	applyLogConfig(logrusLogger, cfg, os.Stderr)
	logSampling = gateway.LogSamplingConfig{
		Tick:  durationFromMs(cfg.LogSamplingTickMs, defaultLogSamplingTick),
		After: durationFromMs(cfg.LogSamplingAfterMs, defaultLogSamplingAfter),
	}
}

func applyLogConfig(logger *logrus.Logger, cfg settings.Config, out io.Writer) {
	logger.SetOutput(out)

	level := logrus.InfoLevel
	if parsed, err := logrus.ParseLevel(cfg.LogLevel); cfg.LogLevel != "" && err == nil {
		level = parsed
	}
	if cfg.IsDebug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	logger.SetReportCaller(cfg.IsDebug)

	if cfg.LogFormat == settings.LogFormatText {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
		return
	}
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
}

func durationFromMs(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
