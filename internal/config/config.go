// Package config loads clockhand configuration from ~/.clockhand/config.yaml
// with CLOCKHAND_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clockhand/clockhand/internal/logging"
)

// Environment variables recognized by Load. Each overrides the corresponding
// config file field.
const (
	EnvConfigDir       = "CLOCKHAND_CONFIG_DIR"
	EnvAPIURL          = "CLOCKHAND_API_URL"
	EnvAPIToken        = "CLOCKHAND_API_TOKEN" //nolint:gosec // env var name, not a credential
	EnvWorkspace       = "CLOCKHAND_WORKSPACE"
	EnvCacheEnabled    = "CLOCKHAND_CACHE_ENABLED"
	EnvCacheTTLSeconds = "CLOCKHAND_CACHE_TTL_SECONDS"
	EnvLogLevel        = "CLOCKHAND_LOG_LEVEL"
	EnvLogFormat       = "CLOCKHAND_LOG_FORMAT"
)

// Defaults applied before the config file and environment are consulted.
const (
	DefaultAPIURL         = "https://api.clockhand.dev/v1"
	DefaultCacheTTL       = 300
	DefaultCacheMaxSizeMB = 10
	DefaultCacheEntries   = 1000
	DefaultTimeoutSeconds = 30
)

// Config is the root configuration object.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig describes the remote time-tracking service.
type APIConfig struct {
	URL            string `yaml:"url"`
	Token          string `yaml:"token"`
	Workspace      string `yaml:"workspace"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig controls the persistent response cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxEntries int    `yaml:"max_entries"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	File       string `yaml:"file"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:            DefaultAPIURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: DefaultCacheTTL,
			MaxEntries: DefaultCacheEntries,
			MaxSizeMB:  DefaultCacheMaxSizeMB,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Dir returns the clockhand configuration directory, honoring
// CLOCKHAND_CONFIG_DIR for tests and unusual setups.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".clockhand"), nil
}

// Load builds the effective configuration: defaults, overlaid by
// config.yaml when present, overlaid by environment variables. A missing
// config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parse %s: %w", path, unmarshalErr)
		}
	case errors.Is(err, os.ErrNotExist):
		// First run, nothing to overlay.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv(EnvWorkspace); v != "" {
		c.API.Workspace = v
	}
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvCacheTTLSeconds); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			c.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// APITimeout returns the HTTP client timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// ToLoggingConfig bridges the config file's logging section to the logging
// package.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		File:   lc.File,
	}
}
