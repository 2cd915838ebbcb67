package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_USER", "dombyra")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "dombyra")
	t.Setenv("JWT_SECRET", "jwt-secret")
	for _, key := range []string{
		"SERVER_PORT", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "REDIS_HOST", "REDIS_PORT",
		"REDIS_PASSWORD", "REDIS_DB", "SEQUENCE_CACHE_TTL", "RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 10*time.Minute, cfg.Redis.SequenceCacheTTL)
	assert.Equal(t, 300, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "dombyra:secret@tcp(localhost:3306)/dombyra?parseTime=true&charset=utf8mb4", cfg.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dombyra.kz, ,https://admin.dombyra.kz")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SEQUENCE_CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "60")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://dombyra.kz", "https://admin.dombyra.kz"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.SequenceCacheTTL)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		value       string
		errContains string
	}{
		{name: "missing DB_HOST", key: "DB_HOST", value: "", errContains: "DB_HOST is required"},
		{name: "invalid DB_PORT", key: "DB_PORT", value: "abc", errContains: "invalid DB_PORT"},
		{name: "missing JWT_SECRET", key: "JWT_SECRET", value: "", errContains: "JWT_SECRET is required"},
		{name: "invalid SERVER_PORT", key: "SERVER_PORT", value: "x", errContains: "invalid SERVER_PORT"},
		{name: "invalid REDIS_DB", key: "REDIS_DB", value: "x", errContains: "invalid REDIS_DB"},
		{name: "invalid ttl", key: "SEQUENCE_CACHE_TTL", value: "soon", errContains: "invalid SEQUENCE_CACHE_TTL"},
		{name: "non-positive ttl", key: "SEQUENCE_CACHE_TTL", value: "0s", errContains: "must be positive"},
		{name: "non-positive rate limit", key: "RATE_LIMIT_PER_MINUTE", value: "0", errContains: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Nil(t, cfg)
		})
	}
}
