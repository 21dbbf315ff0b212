package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAuthEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")
}

func TestLoadRequiresSecret(t *testing.T) {
	clearAuthEnv(t)

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, "5001", cfg.App.Port)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, time.Minute, cfg.Analytics.CacheTTL())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadLegacySecretAndDBParts(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("JWT_SECRET", "legacy")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "safety")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "legacy", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres://app:p%40ss@db:6543/safety?sslmode=disable", cfg.Postgres.DSN)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "x")
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, AppConfig{Env: "Development"}.IsDevelopment())
	assert.False(t, AppConfig{Env: "production"}.IsDevelopment())
}
