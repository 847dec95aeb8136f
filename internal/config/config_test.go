package config_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nabhonil04/stockpredict/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfigFrom(context.Background(), map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.ApiServicePort)
	assert.Equal(t, "/api", cfg.ApiPrefix)
	assert.Equal(t, config.DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "bcrypt", cfg.PasswordHasher)
	assert.Equal(t, int64(604800), cfg.AccessTokenExpiration)
	assert.Equal(t, int64(120), cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.SeedDemoUser)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "redis:6379", cfg.RedisAddr())

	tokens := cfg.TokenConfig()
	assert.Equal(t, 7*24*time.Hour, tokens.TTL)
	assert.Equal(t, []byte("stockpredict_secret"), tokens.Secret)
	assert.Equal(t, "stockpredict", tokens.Issuer)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := config.LoadConfigFrom(context.Background(), map[string]string{
		"APP_ENV":                 "production",
		"LOG_LEVEL":               "debug",
		"API_PREFIX":              "v1/",
		"DATABASE_DRIVER":         "SQLite",
		"DATABASE_DSN":            "file::memory:",
		"JWT_SECRET":              "prod-secret",
		"ACCESS_TOKEN_EXPIRATION": "3600",
		"PASSWORD_HASHER":         "Argon2id",
		"REDIS_HOST":              "cache",
		"REDIS_PORT":              "6380",
		"CORS_ALLOWED_ORIGINS":    "https://app.example.com",
		"SEED_DEMO_USER":          "false",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/v1", cfg.ApiPrefix)
	assert.Equal(t, config.DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "argon2id", cfg.PasswordHasher)
	assert.Equal(t, time.Hour, cfg.TokenConfig().TTL)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.SeedDemoUser)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "unknown driver", vars: map[string]string{"DATABASE_DRIVER": "mysql"}},
		{name: "unknown hasher", vars: map[string]string{"PASSWORD_HASHER": "md5"}},
		{name: "default secret in production", vars: map[string]string{"APP_ENV": "production"}},
		{name: "non-positive ttl", vars: map[string]string{"ACCESS_TOKEN_EXPIRATION": "0"}},
		{name: "negative rate limit", vars: map[string]string{"RATE_LIMIT_PER_MINUTE": "-1"}},
		{name: "malformed number", vars: map[string]string{"REDIS_PORT": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfigFrom(context.Background(), tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_UnknownLogLevelFallsBackToInfo(t *testing.T) {
	cfg, err := config.LoadConfigFrom(context.Background(), map[string]string{"LOG_LEVEL": "verbose"})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}
