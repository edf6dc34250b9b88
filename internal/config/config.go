// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvDBPath       = "CEDICT_DB_PATH"
	EnvWorkers      = "CEDICT_WORKERS"
	EnvCacheSize    = "CEDICT_CACHE_SIZE"
	EnvLogLevel     = "CEDICT_LOG_LEVEL"
	EnvDefaultLimit = "CEDICT_DEFAULT_LIMIT"
)

const (
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100

	defaultCacheSize = 1000
	defaultLimit     = 20
	defaultLogLevel  = "info"
)

// ErrInvalidConfig is returned for settings that fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds server configuration
type Config struct {
	DBPath       string
	Workers      int
	CacheSize    int
	LogLevel     string
	DefaultLimit int
}

// DefaultDBPath returns ~/.cedict-mcp/dictionary.db, or a path in the
// working directory when the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cedict-mcp.db"
	}
	return filepath.Join(home, ".cedict-mcp", "dictionary.db")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:       DefaultDBPath(),
		Workers:      runtime.NumCPU(),
		CacheSize:    defaultCacheSize,
		LogLevel:     defaultLogLevel,
		DefaultLimit: defaultLimit,
	}
}

// FromEnv overlays environment variables on Default and validates the result.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvWorkers, &cfg.Workers},
		{EnvCacheSize, &cfg.CacheSize},
		{EnvDefaultLimit, &cfg.DefaultLimit},
	}
	for _, it := range ints {
		v := os.Getenv(it.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, it.name, v)
		}
		*it.dst = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: database path must not be empty", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache size must not be negative, got %d", ErrInvalidConfig, c.CacheSize)
	}
	if c.DefaultLimit < 1 || c.DefaultLimit > MaxLimit {
		return fmt.Errorf("%w: default limit must be between 1 and %d, got %d", ErrInvalidConfig, MaxLimit, c.DefaultLimit)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
