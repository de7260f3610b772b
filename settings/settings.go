// Package settings holds the beedash runtime configuration.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SourceCSV = "csv"
	SourceSQL = "sql"

	LogFormatJSON = "json"
	LogFormatText = "text"

	defaultListenAddr = ":8050"
	defaultDataPath   = "save_the_bees.csv"
	defaultDBPath     = "beedash.db"
	defaultTitle      = "Bees Population Visualization"
	defaultCacheTTL   = 10 * time.Minute
)

// Config is decoded from the `beedash` section of config.yaml.
type Config struct {
	ListenAddr string `json:"listen_addr" binding:"required"`
	Title      string `json:"title"`

	// DataSource selects where records are loaded from: the CSV at DataPath
	// or the SQL snapshot written by `beedash import`.
	DataSource string `json:"data_source" binding:"oneof=csv sql"`
	DataPath   string `json:"data_path" binding:"required_if=DataSource csv"`

	DatabasePath   string `json:"db_path"`
	DatabaseURL    string `json:"db_url"`
	DatabaseDriver string `json:"db_driver" binding:"omitempty,oneof=sqlite sqlite3 postgres pgx default"`

	RedisAddr       string `json:"redis_addr" binding:"omitempty,hostname_port"`
	RedisPassword   string `json:"redis_password"`
	RedisDB         int    `json:"redis_db" binding:"min=0"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds" binding:"min=0"`

	TemplateDir string `json:"template_dir"`
	DefaultYear int    `json:"default_year" binding:"omitempty,min=1900"`

	IsDebug            bool   `json:"is_debug"`
	LogLevel           string `json:"log_level" binding:"omitempty,oneof=trace debug info warn warning error"`
	LogFormat          string `json:"log_format" binding:"omitempty,oneof=json text"`
	LogSamplingTickMs  int    `json:"log_sampling_tick_ms"`
	LogSamplingAfterMs int    `json:"log_sampling_after_ms"`

	OtelEnabled        bool    `json:"otel_enabled"`
	OtelEndpoint       string  `json:"otel_endpoint"`
	OtelInsecure       bool    `json:"otel_insecure"`
	OtelServiceName    string  `json:"otel_service_name"`
	OtelServiceVersion string  `json:"otel_service_version"`
	OtelSampleRate     float64 `json:"otel_sample_rate" binding:"min=0,max=1"`
}

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	if c.Title == "" {
		c.Title = defaultTitle
	}
	c.DataSource = strings.ToLower(strings.TrimSpace(c.DataSource))
	if c.DataSource == "" {
		c.DataSource = SourceCSV
	}
	if c.DataPath == "" {
		c.DataPath = defaultDataPath
	}
	if c.DatabasePath == "" {
		c.DatabasePath = defaultDBPath
	}
}

// CacheTTL is the lifetime of cached chart bodies.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("config: %s fails %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
