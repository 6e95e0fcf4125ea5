package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowlabs-org/vts/vts"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := vts.GenerateTestDir(t.Name())

	cfg, err := LoadConfig(dir, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(dir).HTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, vts.DefaultPrivateKeyFile, cfg.PrivateKeyFile)
	assert.Equal(t, vts.DefaultPublicKeyFile, cfg.PublicKeyFile)
	assert.True(t, cfg.MetricsEnabled)

	priv, pub := cfg.KeyPaths()
	assert.Equal(t, filepath.Join(dir, vts.DefaultPrivateKeyFile), priv)
	assert.Equal(t, filepath.Join(dir, vts.DefaultPublicKeyFile), pub)
}

func TestLoadConfigFile(t *testing.T) {
	dir := vts.GenerateTestDir(t.Name())
	yml := `
http_addr: "127.0.0.1:9009"
log_level: info
log_stdout: true
private_key_file: keys/priv.bin
public_key_file: /etc/vts/pub.bin
max_request_bytes: 4096
metrics_enabled: false
sign_rate_limit: 10
sign_rate_window: 30s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yml), 0644))

	cfg, err := LoadConfig(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9009", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogStdout)
	assert.Equal(t, int64(4096), cfg.MaxRequestBytes)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 10, cfg.SignRateLimit)
	assert.Equal(t, 30*time.Second, cfg.SignRateWindow)

	priv, pub := cfg.KeyPaths()
	assert.Equal(t, filepath.Join(dir, "keys", "priv.bin"), priv)
	assert.Equal(t, "/etc/vts/pub.bin", pub)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	dir := vts.GenerateTestDir(t.Name())
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cfg, err := LoadConfig(dir, path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(dir).HTTPAddr, cfg.HTTPAddr)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"unknown key", "http_adr: 127.0.0.1:1\n"},
		{"bad addr", "http_addr: nope\n"},
		{"bad level", "log_level: loud\n"},
		{"bad duration", "sign_rate_window: soon\n"},
		{"negative limit", "sign_rate_limit: -1\n"},
		{"zero body limit", "max_request_bytes: 0\n"},
		{"limit without window", "sign_rate_limit: 5\nsign_rate_window: 0s\n"},
		{"not yaml", "{{{\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := vts.GenerateTestDir(t.Name())
			path := filepath.Join(dir, "vts.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yml), 0644))
			_, err := LoadConfig(dir, path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	dir := vts.GenerateTestDir(t.Name())
	_, err := LoadConfig(dir, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvHTTPAddr:       "127.0.0.1:7000",
		EnvLogLevel:       "error",
		EnvPrivateKeyFile: "/keys/p.bin",
		EnvPublicKeyFile:  "/keys/q.bin",
		EnvMetrics:        "false",
		EnvSignRateLimit:  "3",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig("/tmp/vts")
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTPAddr)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/keys/p.bin", cfg.PrivateKeyFile)
	assert.Equal(t, "/keys/q.bin", cfg.PublicKeyFile)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 3, cfg.SignRateLimit)

	env[EnvMetrics] = "maybe"
	assert.Error(t, cfg.applyEnv(lookup))
	env[EnvMetrics] = "true"
	env[EnvSignRateLimit] = "many"
	assert.Error(t, cfg.applyEnv(lookup))
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := vts.GenerateTestDir(t.Name())
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("http_addr: 127.0.0.1:9009\n"), 0644))
	t.Setenv(EnvHTTPAddr, "127.0.0.1:9010")

	cfg, err := LoadConfig(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9010", cfg.HTTPAddr)
}

func TestParseLogLevel(t *testing.T) {
	for _, ll := range []LogLevel{DEBUG, INFO, WARN, ERROR, FATAL} {
		parsed, err := ParseLogLevel(ll.String())
		require.NoError(t, err)
		assert.Equal(t, ll, parsed)
	}
	parsed, err := ParseLogLevel(" WARNING ")
	require.NoError(t, err)
	assert.Equal(t, WARN, parsed)
	_, err = ParseLogLevel("trace")
	assert.Error(t, err)
}
