package config

import (
	"strings"
	"time"

	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/results"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

// Browse defaults.
const (
	DefaultMaxDepth    = 2
	DefaultConcurrency = 4
	DefaultMetricsPort = 9090
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//
// MaxDepth, RateLimit and DebugLevel are exempt: zero is a meaningful
// setting for them, so their defaults come from GetDefaultConfig instead.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyBrowseDefaults(&cfg.Browse)
	applyDatabaseDefaults(&cfg.Database)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	// stdout carries the report
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

// applyBrowseDefaults sets traversal and protocol client defaults.
func applyBrowseDefaults(cfg *BrowseConfig) {
	if cfg.Port == 0 {
		cfg.Port = smbclient.DefaultPort
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.Burst == 0 {
		cfg.Burst = 1
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Limits.Workgroup == 0 {
		cfg.Limits.Workgroup = auth.DefaultLimits.Workgroup
	}
	if cfg.Limits.Username == 0 {
		cfg.Limits.Username = auth.DefaultLimits.Username
	}
	if cfg.Limits.Password == 0 {
		cfg.Limits.Password = auth.DefaultLimits.Password
	}
}

// applyDatabaseDefaults sets run history database defaults.
func applyDatabaseDefaults(cfg *results.Config) {
	cfg.ApplyDefaults()
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Telemetry: TelemetryConfig{
			Insecure: true,
		},
		Browse: BrowseConfig{
			MaxDepth: DefaultMaxDepth,
		},
		Database: results.Config{
			Type: results.DatabaseTypeSQLite,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
