package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, 60*time.Second, cfg.ReviewCacheTTL)
	assert.Equal(t, 3, cfg.ReviewLimit)
	assert.False(t, cfg.EventsEnabled)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DIVFLOW_DB_DRIVER", "postgres")
	t.Setenv("DIVFLOW_REVIEW_CACHE_TTL", "2m")
	t.Setenv("DIVFLOW_REVIEW_LIMIT", "5")
	t.Setenv("DIVFLOW_EVENTS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, 2*time.Minute, cfg.ReviewCacheTTL)
	assert.Equal(t, 5, cfg.ReviewLimit)
	assert.True(t, cfg.EventsEnabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("DIVFLOW_REVIEW_LIMIT", "lots")
	t.Setenv("DIVFLOW_REVIEW_CACHE_TTL", "soon")
	t.Setenv("DIVFLOW_EVENTS_ENABLED", "yep")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.ReviewLimit)
	assert.Equal(t, 60*time.Second, cfg.ReviewCacheTTL)
	assert.False(t, cfg.EventsEnabled)
}
