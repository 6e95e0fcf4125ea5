package server

// This file contains the configuration of the server. Configuration is layered:
// compiled defaults first, then an optional YAML file, then environment
// variables.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glowlabs-org/vts/vts"
)

// DefaultConfigFile is the name of the config file that LoadConfig looks for
// inside the base dir when no explicit path is given.
const DefaultConfigFile = "vts.yaml"

// Environment variables that override the config file.
const (
	EnvHTTPAddr       = "VTS_HTTP_ADDR"
	EnvLogLevel       = "VTS_LOG_LEVEL"
	EnvPrivateKeyFile = "VTS_PRIVATE_KEY_FILE"
	EnvPublicKeyFile  = "VTS_PUBLIC_KEY_FILE"
	EnvMetrics        = "VTS_METRICS"
	EnvSignRateLimit  = "VTS_SIGN_RATE_LIMIT"
)

// Config holds everything needed to start a VTSServer.
type Config struct {
	BaseDir         string        `yaml:"-"`
	HTTPAddr        string        `yaml:"http_addr"`
	LogLevel        string        `yaml:"log_level"`
	LogStdout       bool          `yaml:"log_stdout"`
	PrivateKeyFile  string        `yaml:"private_key_file"`
	PublicKeyFile   string        `yaml:"public_key_file"`
	MaxRequestBytes int64         `yaml:"max_request_bytes"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	SignRateLimit   int           `yaml:"sign_rate_limit"`
	SignRateWindow  time.Duration `yaml:"sign_rate_window"`

	// Clock replaces the system clock. Only set by tests.
	Clock vts.TimestampSource `yaml:"-"`
}

// DefaultConfig returns the compiled defaults for a server rooted at baseDir.
func DefaultConfig(baseDir string) Config {
	return Config{
		BaseDir:         baseDir,
		HTTPAddr:        net.JoinHostPort(serverIP, strconv.Itoa(httpPort)),
		LogLevel:        defaultLogLevel.String(),
		PrivateKeyFile:  vts.DefaultPrivateKeyFile,
		PublicKeyFile:   vts.DefaultPublicKeyFile,
		MaxRequestBytes: defaultMaxRequestBytes,
		MetricsEnabled:  true,
		SignRateLimit:   defaultSignRateLimit,
		SignRateWindow:  defaultSignRateWindow,
	}
}

// LoadConfig builds the config for a server rooted at baseDir. If path is
// empty, <baseDir>/vts.yaml is used when it exists. An explicit path must
// exist.
func LoadConfig(baseDir, path string) (Config, error) {
	cfg := DefaultConfig(baseDir)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(baseDir, DefaultConfigFile)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeConfig(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unable to parse config file %s: %v", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file, defaults apply.
	default:
		return Config{}, fmt.Errorf("unable to read config file: %v", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeConfig decodes YAML into cfg, rejecting keys that Config does not
// know about. An empty document leaves cfg untouched.
func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// applyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside of tests.
func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		cfg.HTTPAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvPrivateKeyFile); ok && v != "" {
		cfg.PrivateKeyFile = v
	}
	if v, ok := lookup(EnvPublicKeyFile); ok && v != "" {
		cfg.PublicKeyFile = v
	}
	if v, ok := lookup(EnvMetrics); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %v", EnvMetrics, err)
		}
		cfg.MetricsEnabled = b
	}
	if v, ok := lookup(EnvSignRateLimit); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %v", EnvSignRateLimit, err)
		}
		cfg.SignRateLimit = n
	}
	return nil
}

// Validate checks that the config can be used to start a server.
func (cfg Config) Validate() error {
	if cfg.BaseDir == "" {
		return errors.New("config has no base dir")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTPAddr); err != nil {
		return fmt.Errorf("invalid http_addr %q: %v", cfg.HTTPAddr, err)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.PrivateKeyFile == "" || cfg.PublicKeyFile == "" {
		return errors.New("key file paths must not be empty")
	}
	if cfg.MaxRequestBytes <= 0 {
		return fmt.Errorf("max_request_bytes must be positive, got %d", cfg.MaxRequestBytes)
	}
	if cfg.SignRateLimit < 0 {
		return fmt.Errorf("sign_rate_limit must not be negative, got %d", cfg.SignRateLimit)
	}
	if cfg.SignRateLimit > 0 && cfg.SignRateWindow <= 0 {
		return errors.New("sign_rate_window must be positive when rate limiting is enabled")
	}
	return nil
}

// KeyPaths returns the key file paths, resolving relative paths against the
// base dir.
func (cfg Config) KeyPaths() (privatePath, publicPath string) {
	return cfg.resolve(cfg.PrivateKeyFile), cfg.resolve(cfg.PublicKeyFile)
}

func (cfg Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.BaseDir, path)
}
