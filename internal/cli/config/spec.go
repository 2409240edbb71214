package config

import (
	"fmt"
	"time"

	"github.com/yndnr/lingvo-go/internal/core/service"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
)

// Config is the configuration for lingvo-cli.
type Config struct {
	API     APIConfig     `koanf:"api" yaml:"api"`
	Session SessionConfig `koanf:"session" yaml:"session"`
	List    ListConfig    `koanf:"list" yaml:"list"`
	Output  OutputConfig  `koanf:"output" yaml:"output"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
	Metrics MetricsConfig `koanf:"metrics" yaml:"metrics"`
}

// APIConfig describes how to reach the translation service.
type APIConfig struct {
	BaseURL   string        `koanf:"base_url" yaml:"base_url"`
	Timeout   time.Duration `koanf:"timeout" yaml:"timeout"`
	RateLimit float64       `koanf:"rate_limit" yaml:"rate_limit"` // requests per second, 0 disables
	Burst     int           `koanf:"burst" yaml:"burst"`
	CAFile    string        `koanf:"ca_file" yaml:"ca_file"`
}

// SessionConfig controls credential persistence and logout behavior.
type SessionConfig struct {
	StoreDir     string        `koanf:"store_dir" yaml:"store_dir"`
	TTL          time.Duration `koanf:"ttl" yaml:"ttl"`
	LogoutPolicy string        `koanf:"logout_policy" yaml:"logout_policy"`
	Passphrase   string        `koanf:"passphrase" yaml:"passphrase"`
}

type ListConfig struct {
	ClearOnError bool `koanf:"clear_on_error" yaml:"clear_on_error"`
}

type OutputConfig struct {
	Format string `koanf:"format" yaml:"format"` // table, json, yaml
}

type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

type MetricsConfig struct {
	Textfile string `koanf:"textfile" yaml:"textfile"`
}

// Default returns the default CLI configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
			Burst:   1,
		},
		Session: SessionConfig{
			StoreDir:     "~/.lingvo/credentials",
			TTL:          7 * 24 * time.Hour,
			LogoutPolicy: string(service.LogoutRequireAck),
		},
		Output: OutputConfig{Format: "table"},
		Log:    LogConfig{Level: "warn", Format: "text"},
	}
}

// defaultMap flattens Default into koanf keys.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"api.base_url":          d.API.BaseURL,
		"api.timeout":           d.API.Timeout.String(),
		"api.rate_limit":        d.API.RateLimit,
		"api.burst":             d.API.Burst,
		"api.ca_file":           d.API.CAFile,
		"session.store_dir":     d.Session.StoreDir,
		"session.ttl":           d.Session.TTL.String(),
		"session.logout_policy": d.Session.LogoutPolicy,
		"session.passphrase":    d.Session.Passphrase,
		"list.clear_on_error":   d.List.ClearOnError,
		"output.format":         d.Output.Format,
		"log.level":             d.Log.Level,
		"log.format":            d.Log.Format,
		"metrics.textfile":      d.Metrics.Textfile,
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("config: api.timeout must not be negative")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("config: api.rate_limit must not be negative")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session.ttl must be positive")
	}
	if _, err := service.ParseLogoutPolicy(c.Session.LogoutPolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Output.Format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("config: unknown output.format %q", c.Output.Format)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Session.Passphrase != "" {
		out.Session.Passphrase = logger.RedactedValue
	}
	return &out
}
