package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/marmos91/smbenum/internal/logger"
	"github.com/marmos91/smbenum/internal/telemetry"
	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/results"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "SMBENUM"

// Config represents the smbenum configuration.
//
// It is built once at startup and passed explicitly to the components that
// need it; nothing reads it through globals.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (SMBENUM_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Credentials are answered to every authentication challenge.
	// Empty username means an anonymous (null) session.
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`

	// Browse controls traversal and the protocol client.
	Browse BrowseConfig `mapstructure:"browse" yaml:"browse"`

	// Database configures the run history (SQLite or PostgreSQL).
	Database results.Config `mapstructure:"database" yaml:"database"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`

	// MaxSize is the size at which a log file is rotated ("50MB").
	// Only used when Output is a file.
	MaxSize string `mapstructure:"max_size" validate:"omitempty,bytesize" yaml:"max_size,omitempty"`

	// MaxBackups is how many rotated files are kept (0 keeps all)
	MaxBackups int `mapstructure:"max_backups" validate:"gte=0" yaml:"max_backups,omitempty"`

	// MaxAgeDays is how long rotated files are kept (0 keeps them forever)
	MaxAgeDays int `mapstructure:"max_age_days" validate:"gte=0" yaml:"max_age_days,omitempty"`

	// Compress gzips rotated files
	Compress bool `mapstructure:"compress" yaml:"compress,omitempty"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, one span per target and per listing is exported to an
// OTLP-compatible collector (e.g., Jaeger, Tempo).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,hostname_port" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// CredentialsConfig is the identity presented to every host.
type CredentialsConfig struct {
	Workgroup string `mapstructure:"workgroup" yaml:"workgroup,omitempty"`
	Username  string `mapstructure:"username" yaml:"username,omitempty"`

	// Password is ignored when NTHash is set.
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// NTHash is the hex encoded NT hash of the password (pass-the-hash).
	NTHash string `mapstructure:"nt_hash" validate:"omitempty,hexadecimal,len=32" yaml:"nt_hash,omitempty"`
}

// BrowseConfig controls traversal and the protocol client.
type BrowseConfig struct {
	// MaxDepth is how many levels below the target are descended.
	// 0 lists only the target's own entries. Default: 2
	MaxDepth int `mapstructure:"max_depth" validate:"gte=0,lte=64" yaml:"max_depth"`

	// Port is the SMB port used when a locator has none. Default: 445
	Port int `mapstructure:"port" validate:"min=1,max=65535" yaml:"port"`

	// DialTimeout bounds the TCP connect. Default: 10s
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"gte=0" yaml:"dial_timeout"`

	// RequireSigning refuses sessions the server will not sign.
	RequireSigning bool `mapstructure:"require_signing" yaml:"require_signing"`

	// RateLimit caps protocol calls per second per target (0 = unlimited).
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0" yaml:"rate_limit"`

	// Burst is the rate limiter bucket size. Default: 1
	Burst int `mapstructure:"burst" validate:"gte=0" yaml:"burst"`

	// DebugLevel is the protocol debug verbosity, 0 (quiet) to 3.
	DebugLevel int `mapstructure:"debug_level" validate:"gte=0,lte=3" yaml:"debug_level"`

	// Concurrency is how many targets run at once. Default: 4
	Concurrency int `mapstructure:"concurrency" validate:"min=1,max=256" yaml:"concurrency"`

	// ShowHidden prints administrative shares (NAME$). They are counted
	// either way.
	ShowHidden bool `mapstructure:"show_hidden" yaml:"show_hidden"`

	// Limits are the credential slot capacities in bytes.
	Limits LimitsConfig `mapstructure:"limits" yaml:"limits"`
}

// LimitsConfig bounds each credential field. Longer values are truncated.
type LimitsConfig struct {
	Workgroup int `mapstructure:"workgroup" validate:"gte=0" yaml:"workgroup"`
	Username  int `mapstructure:"username" validate:"gte=0" yaml:"username"`
	Password  int `mapstructure:"password" validate:"gte=0" yaml:"password"`
}

// AuthCredentials returns the configured identity. The NT hash is decoded
// here, so a malformed one is reported before any connection is made.
func (c CredentialsConfig) AuthCredentials() (auth.Credentials, error) {
	hash, err := auth.ParseHash(c.NTHash)
	if err != nil {
		return auth.Credentials{}, err
	}
	creds := auth.Credentials{
		Workgroup: c.Workgroup,
		Username:  c.Username,
		Hash:      hash,
	}
	if hash == nil {
		creds.Password = c.Password
	}
	return creds, nil
}

// Options returns the protocol client options.
func (c BrowseConfig) Options() smbclient.Options {
	return smbclient.Options{
		Port:           c.Port,
		DialTimeout:    c.DialTimeout,
		RequireSigning: c.RequireSigning,
		RateLimit:      c.RateLimit,
		Burst:          c.Burst,
		DebugLevel:     c.DebugLevel,
		Limits: auth.Limits{
			Workgroup: c.Limits.Workgroup,
			Username:  c.Limits.Username,
			Password:  c.Limits.Password,
		},
	}
}

// LoggerConfig returns the logger configuration.
func (c LoggingConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// TelemetryConfig returns the tracing configuration for version.
func (c TelemetryConfig) TelemetryConfig(version string) telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = c.Enabled
	cfg.Endpoint = c.Endpoint
	cfg.Insecure = c.Insecure
	cfg.SampleRate = c.SampleRate
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}

// Load loads configuration from file, environment, and defaults.
//
// A missing file is not an error: defaults and environment variables still
// apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad is like Load but requires the configuration file to exist,
// returning instructions when it does not.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  smbenum config init\n\n"+
				"Or specify a custom config file:\n"+
				"  smbenum <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  smbenum config init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path,
// replacing any existing file.
func SaveConfig(cfg *Config, path string) error {
	return WriteConfig(cfg, path, true)
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use SMBENUM_ prefix and underscores
	// Example: SMBENUM_BROWSE_MAX_DEPTH=3
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper knows about.
	setDefaults(v, GetDefaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// setDefaults registers every leaf of cfg as a viper default, keyed by its
// mapstructure path.
func setDefaults(v *viper.Viper, cfg *Config) {
	var walk func(prefix string, val reflect.Value)
	walk = func(prefix string, val reflect.Value) {
		t := val.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
			if tag == "" || tag == "-" {
				continue
			}
			key := tag
			if prefix != "" {
				key = prefix + "." + tag
			}
			fv := val.Field(i)
			if fv.Kind() == reflect.Struct && fv.Type() != reflect.TypeOf(time.Duration(0)) {
				walk(key, fv)
				continue
			}
			v.SetDefault(key, fv.Interface())
		}
	}
	walk("", reflect.ValueOf(*cfg))
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		// Explicit config file that doesn't exist
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "smbenum")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "smbenum")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
