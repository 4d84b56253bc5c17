package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbenum/pkg/results"
)

// isolate points every XDG lookup at a temporary directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, `
logging:
  level: debug
credentials:
  workgroup: CORP
  username: alice
  password: secret
browse:
  max_depth: 5
  dial_timeout: 3s
  rate_limit: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "alice", cfg.Credentials.Username)
	assert.Equal(t, 5, cfg.Browse.MaxDepth)
	assert.Equal(t, 3*time.Second, cfg.Browse.DialTimeout)
	assert.Equal(t, 20.0, cfg.Browse.RateLimit)
	assert.Equal(t, 445, cfg.Browse.Port)
	assert.Equal(t, DefaultConcurrency, cfg.Browse.Concurrency)
}

func TestLoad_NoConfigFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(filepath.Join(dir, "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxDepth, cfg.Browse.MaxDepth)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, results.DatabaseTypeSQLite, cfg.Database.Type)
}

func TestLoad_ZeroDepthIsKept(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "browse:\n  max_depth: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Browse.MaxDepth)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "browse:\n  max_depth: 1\n")

	t.Setenv("SMBENUM_BROWSE_MAX_DEPTH", "7")
	t.Setenv("SMBENUM_CREDENTIALS_USERNAME", "bob")
	t.Setenv("SMBENUM_LOGGING_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Browse.MaxDepth)
	assert.Equal(t, "bob", cfg.Credentials.Username)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvWithoutFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("SMBENUM_BROWSE_CONCURRENCY", "9")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Browse.Concurrency)
}

func TestLoad_Invalid(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "browse:\n  max_depth: 100\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxDepth")
}

func TestLoad_BadYAML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "browse: [\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestMustLoad_Missing(t *testing.T) {
	dir := isolate(t)

	_, err := MustLoad("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smbenum config init")

	_, err = MustLoad(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Credentials.Username = "alice"
	cfg.Credentials.NTHash = "8846f7eaee8fb117ad06bdd830b7586c"
	cfg.Browse.MaxDepth = 4
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Credentials.Username)
	assert.Equal(t, cfg.Credentials.NTHash, loaded.Credentials.NTHash)
	assert.Equal(t, 4, loaded.Browse.MaxDepth)
	assert.Equal(t, cfg.Browse.DialTimeout, loaded.Browse.DialTimeout)
}

func TestGetDefaultConfigPath(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, filepath.Join(dir, "config", "smbenum", "config.yaml"), GetDefaultConfigPath())
	assert.False(t, DefaultConfigExists())
}

func TestAuthCredentials(t *testing.T) {
	creds, err := CredentialsConfig{Workgroup: "CORP", Username: "alice", Password: "pw"}.AuthCredentials()
	require.NoError(t, err)
	assert.Equal(t, "pw", creds.Password)
	assert.Nil(t, creds.Hash)

	creds, err = CredentialsConfig{Username: "alice", Password: "ignored", NTHash: "8846f7eaee8fb117ad06bdd830b7586c"}.AuthCredentials()
	require.NoError(t, err)
	assert.Empty(t, creds.Password)
	assert.Len(t, creds.Hash, 16)

	_, err = CredentialsConfig{Username: "alice", NTHash: "zz"}.AuthCredentials()
	assert.Error(t, err)

	anon, err := CredentialsConfig{}.AuthCredentials()
	require.NoError(t, err)
	assert.True(t, anon.IsAnonymous())
}

func TestBrowseOptions(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Browse.RateLimit = 5
	cfg.Browse.DebugLevel = 2
	cfg.Browse.Limits.Password = 14

	opts := cfg.Browse.Options()
	assert.Equal(t, 445, opts.Port)
	assert.Equal(t, 5.0, opts.RateLimit)
	assert.Equal(t, 2, opts.DebugLevel)
	assert.Equal(t, 14, opts.Limits.Password)
	assert.Equal(t, 256, opts.Limits.Username)
}

func TestLoggerAndTelemetryConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Output = "/var/log/smbenum.log"
	cfg.Logging.MaxSize = "10MB"

	lc := cfg.Logging.LoggerConfig()
	assert.Equal(t, "/var/log/smbenum.log", lc.Output)
	assert.Equal(t, "10MB", lc.MaxSize)

	tc := cfg.Telemetry.TelemetryConfig("1.2.3")
	assert.Equal(t, "1.2.3", tc.ServiceVersion)
	assert.Equal(t, "smbenum", tc.ServiceName)
	assert.Equal(t, "localhost:4317", tc.Endpoint)
}
