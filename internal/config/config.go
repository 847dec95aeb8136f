package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/Nabhonil04/stockpredict/internal/auth"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds process-wide settings. It is built once by LoadConfig and must
// be treated as read-only afterwards.
type Config struct {
	AppEnv         string `env:"APP_ENV, default=development"`
	LogLevelName   string `env:"LOG_LEVEL, default=INFO"`
	ApiServicePort string `env:"API_SERVICE_PORT, default=8080"`
	ApiPrefix      string `env:"API_PREFIX, default=/api"`

	DatabaseDriver     string `env:"DATABASE_DRIVER, default=postgres"`
	DatabaseDSN        string `env:"DATABASE_DSN, default=file:stockpredict.db?_foreign_keys=on"` // sqlite only
	PostgreSQLHost     string `env:"POSTGRESQL_HOST, default=db"`
	PostgreSQLPort     int64  `env:"POSTGRESQL_PORT, default=5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER, default=stockpredict_user"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD, default=stockpredict_password"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE, default=stockpredict_db"`

	JWTSecret             string `env:"JWT_SECRET, default=stockpredict_secret"`
	JWTIssuer             string `env:"JWT_ISSUER, default=stockpredict"`
	AccessTokenExpiration int64  `env:"ACCESS_TOKEN_EXPIRATION, default=604800"` // 7 days
	PasswordHasher        string `env:"PASSWORD_HASHER, default=bcrypt"`
	BcryptCost            int    `env:"BCRYPT_COST, default=10"`

	RedisHost          string `env:"REDIS_HOST, default=redis"`
	RedisPort          int64  `env:"REDIS_PORT, default=6379"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDatabase      int64  `env:"REDIS_DATABASE, default=0"`
	RateLimitPerMinute int64  `env:"RATE_LIMIT_PER_MINUTE, default=120"` // 0 disables

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:3000,http://localhost:8000"`
	SeedDemoUser       bool     `env:"SEED_DEMO_USER, default=true"`
	RequestTimeout     int64    `env:"REQUEST_TIMEOUT, default=30"`  // seconds
	ShutdownTimeout    int64    `env:"SHUTDOWN_TIMEOUT, default=10"` // seconds

	LogLevel slog.Level
}

// LoadConfig reads the environment into a Config.
func LoadConfig(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadConfigFrom is LoadConfig over an explicit set of variables.
func LoadConfigFrom(ctx context.Context, vars map[string]string) (*Config, error) {
	return load(ctx, envconfig.MapLookuper(vars))
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.DatabaseDriver = strings.ToLower(cfg.DatabaseDriver)
	cfg.PasswordHasher = strings.ToLower(cfg.PasswordHasher)
	cfg.ApiPrefix = "/" + strings.Trim(cfg.ApiPrefix, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.PasswordHasher {
	case auth.HasherBcrypt, auth.HasherArgon2id:
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.PasswordHasher)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == "stockpredict_secret" {
		return errors.New("JWT_SECRET must be set explicitly in production")
	}
	if c.AccessTokenExpiration <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRATION must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// TokenConfig returns the signing settings handed to the token service.
func (c *Config) TokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		Secret: []byte(c.JWTSecret),
		TTL:    time.Duration(c.AccessTokenExpiration) * time.Second,
		Issuer: c.JWTIssuer,
	}
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
