package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://tickets.internal")
	t.Setenv("REDIS_DB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://tickets.internal", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, "helpdesk_session", cfg.Auth.CookieName)
	assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://tickets.internal")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "3")
	t.Setenv("AUTH_SESSION_TTL_MINUTES", "20")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_COOKIE_SECURE", "true")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 20*time.Minute, cfg.Auth.SessionTTL())
	assert.True(t, cfg.Auth.CookieSecure)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoad_RequiresBackend(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://tickets.internal")
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	assert.Error(t, err)
}
