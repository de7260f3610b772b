package settings

import (
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c.Defaults()
	if c.ListenAddr != ":8050" || c.DataSource != SourceCSV || c.DataPath == "" || c.DatabasePath == "" {
		t.Fatalf("unexpected defaults: %#v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if c.CacheTTL() != 10*time.Minute {
		t.Fatalf("CacheTTL() = %v", c.CacheTTL())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"sql source", func(c *Config) { c.DataSource = "SQL" }, false},
		{"unknown source", func(c *Config) { c.DataSource = "parquet" }, true},
		{"bad redis addr", func(c *Config) { c.RedisAddr = "not an address" }, true},
		{"redis addr", func(c *Config) { c.RedisAddr = "localhost:6379" }, false},
		{"bad driver", func(c *Config) { c.DatabaseDriver = "mysql" }, true},
		{"negative ttl", func(c *Config) { c.CacheTTLSeconds = -1 }, true},
		{"ancient default year", func(c *Config) { c.DefaultYear = 1200 }, true},
		{"text logs", func(c *Config) { c.LogFormat = LogFormatText; c.LogLevel = "debug" }, false},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"sample rate above one", func(c *Config) { c.OtelSampleRate = 1.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			tt.mutate(&c)
			c.Defaults()
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
