package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.DefaultLimit)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/dict.db")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvCacheSize, "0")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvDefaultLimit, "50")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		DBPath:       "/tmp/dict.db",
		Workers:      3,
		CacheSize:    0,
		LogLevel:     "debug",
		DefaultLimit: 50,
	}, cfg)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-integer workers", EnvWorkers, "many"},
		{"zero workers", EnvWorkers, "0"},
		{"negative cache", EnvCacheSize, "-1"},
		{"limit too large", EnvDefaultLimit, "500"},
		{"unknown level", EnvLogLevel, "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
