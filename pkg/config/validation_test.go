package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbenum/pkg/results"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "invalid log level", mutate: func(c *Config) { c.Logging.Level = "TRACE" }, wantErr: "oneof"},
		{name: "invalid log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "Format"},
		{name: "max size", mutate: func(c *Config) { c.Logging.MaxSize = "50MB" }},
		{name: "bad max size", mutate: func(c *Config) { c.Logging.MaxSize = "lots" }, wantErr: "bytesize"},
		{name: "sample rate", mutate: func(c *Config) { c.Telemetry.SampleRate = 1.5 }, wantErr: "SampleRate"},
		{name: "bad endpoint", mutate: func(c *Config) { c.Telemetry.Endpoint = "collector" }, wantErr: "hostname_port"},
		{name: "metrics port", mutate: func(c *Config) { c.Metrics.Port = 70000 }, wantErr: "max"},
		{name: "depth too deep", mutate: func(c *Config) { c.Browse.MaxDepth = 65 }, wantErr: "MaxDepth"},
		{name: "negative depth", mutate: func(c *Config) { c.Browse.MaxDepth = -1 }, wantErr: "MaxDepth"},
		{name: "debug level", mutate: func(c *Config) { c.Browse.DebugLevel = 4 }, wantErr: "DebugLevel"},
		{name: "concurrency", mutate: func(c *Config) { c.Browse.Concurrency = 0 }, wantErr: "Concurrency"},
		{name: "negative rate", mutate: func(c *Config) { c.Browse.RateLimit = -1 }, wantErr: "RateLimit"},
		{
			name:    "hash not hex",
			mutate:  func(c *Config) { c.Credentials.Username = "a"; c.Credentials.NTHash = "zz" },
			wantErr: "NTHash",
		},
		{
			name:    "hash wrong length",
			mutate:  func(c *Config) { c.Credentials.Username = "a"; c.Credentials.NTHash = "8846f7ea" },
			wantErr: "NTHash",
		},
		{
			name:    "password without user",
			mutate:  func(c *Config) { c.Credentials.Password = "pw" },
			wantErr: "username is required",
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Type = results.DatabaseTypePostgres
			},
			wantErr: "postgres host",
		},
		{
			name: "unknown database",
			mutate: func(c *Config) {
				c.Database.Type = "mysql"
			},
			wantErr: "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RedactsCredentials(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Credentials.Username = "alice"
	cfg.Credentials.NTHash = "secret-not-a-hash"

	err := Validate(cfg)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-not-a-hash")
	assert.Contains(t, err.Error(), "<redacted>")
}
