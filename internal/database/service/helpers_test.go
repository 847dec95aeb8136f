package service_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Nabhonil04/stockpredict/internal/auth"
	"github.com/Nabhonil04/stockpredict/internal/database"
	"github.com/Nabhonil04/stockpredict/internal/database/dbtest"
	"github.com/Nabhonil04/stockpredict/internal/database/repository"
	"github.com/Nabhonil04/stockpredict/internal/database/service"
)

type testEnv struct {
	db        *gorm.DB
	hasher    auth.PasswordHasher
	tokens    *auth.TokenService
	users     service.UserService
	watchlist service.WatchlistService
	auth      service.AuthService
	now       time.Time
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		db:  dbtest.New(t),
		now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	hasher, err := auth.NewPasswordHasher(auth.HasherBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	env.hasher = hasher

	tokens, err := auth.NewTokenServiceWithClock(auth.TokenConfig{
		Secret: []byte("test-secret"),
		TTL:    7 * 24 * time.Hour,
		Issuer: "stockpredict",
	}, func() time.Time { return env.now })
	require.NoError(t, err)
	env.tokens = tokens

	logger := discardLogger()
	tx := database.NewTransactor(env.db)

	env.users = service.NewUserService(repository.NewUserRepository(env.db), tx, hasher, logger)
	env.watchlist = service.NewWatchlistService(repository.NewWatchlistRepository(env.db), tx, logger)

	authService, err := service.NewAuthService(env.users, hasher, tokens, logger)
	require.NoError(t, err)
	env.auth = authService

	return env
}
