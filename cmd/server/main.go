package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nabhonil04/stockpredict/internal/api"
	"github.com/Nabhonil04/stockpredict/internal/auth"
	"github.com/Nabhonil04/stockpredict/internal/config"
	"github.com/Nabhonil04/stockpredict/internal/database"
	"github.com/Nabhonil04/stockpredict/internal/database/repository"
	"github.com/Nabhonil04/stockpredict/internal/database/service"
	"github.com/Nabhonil04/stockpredict/internal/handler"
	"github.com/Nabhonil04/stockpredict/internal/logger"
	"github.com/Nabhonil04/stockpredict/internal/metrics"
	"github.com/Nabhonil04/stockpredict/internal/middleware"
	"github.com/Nabhonil04/stockpredict/internal/prediction"
	"github.com/Nabhonil04/stockpredict/internal/worker"
)

const probeInterval = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// 1. Config
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return err
	}

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting Stock Prediction API...",
		"environment", cfg.AppEnv,
		"database_driver", cfg.DatabaseDriver,
		"api_prefix", cfg.ApiPrefix,
	)

	// 3. Connect to Database
	db, err := database.ConnectDatabase(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		return err
	}
	defer database.Close(db)

	// 4. Credentials
	hasher, err := auth.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(cfg.TokenConfig())
	if err != nil {
		return err
	}

	// 5. Initialize Repositories & Services
	tx := database.NewTransactor(db)
	userService := service.NewUserService(repository.NewUserRepository(db), tx, hasher, appLogger)
	watchlistService := service.NewWatchlistService(repository.NewWatchlistRepository(db), tx, appLogger)
	authService, err := service.NewAuthService(userService, hasher, tokens, appLogger)
	if err != nil {
		return err
	}

	if cfg.SeedDemoUser {
		if _, err := userService.EnsureDemoUser(ctx); err != nil {
			appLogger.Warn("⚠️ Failed to seed demo user", "error", err)
		}
	}

	// 6. Initialize Rate Limiter
	var rateLimiter middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		rateLimiter, err = middleware.NewRateLimiter(cfg, appLogger)
		if err != nil {
			appLogger.Warn("⚠️ Failed to connect to Redis, using no-op rate limiter", "error", err)
		}
	}
	if rateLimiter == nil {
		rateLimiter = middleware.NewNoOpRateLimiter(appLogger)
	}
	defer rateLimiter.Close()

	// 7. Initialize Handlers & Router
	if err := handler.RegisterValidators(); err != nil {
		return err
	}

	r := api.SetupRouter(
		cfg,
		appLogger,
		handler.NewAuthHandler(authService, appLogger),
		handler.NewUserHandler(userService, appLogger),
		handler.NewWatchlistHandler(watchlistService, appLogger),
		handler.NewStockHandler(prediction.NewMockProvider(time.Now), appLogger),
		middleware.NewAuthMiddleware(authService, appLogger),
		rateLimiter,
	)

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	server := &http.Server{
		Addr:              ":" + cfg.ApiServicePort,
		Handler:           r,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	// 8. Start background tasks
	pool := worker.NewPool(ctx, appLogger)

	pool.Go("http-server", func(_ context.Context) error {
		appLogger.Info("🌍 [Go] HTTP Server running on port...", "port", cfg.ApiServicePort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	pool.Every("dependency-probe", probeInterval, func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		dbErr := database.Ping(probeCtx, db)
		setUp("database", dbErr == nil)
		redisErr := rateLimiter.Ping(probeCtx)
		setUp("redis", redisErr == nil)

		return errors.Join(dbErr, redisErr)
	})

	// 9. Wait for a signal or a failed task
	var runErr error
	select {
	case <-ctx.Done():
		appLogger.Info("🛑 [Go] Shutdown signal received")
	case runErr = <-pool.Err():
		appLogger.Error("❌ HTTP Server failed", "error", runErr)
	}

	shutdownTimeout := time.Duration(cfg.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("❌ HTTP Server shutdown failed", "error", err)
	}
	pool.Shutdown(shutdownTimeout)

	appLogger.Info("👋 [Go] Server stopped")
	return runErr
}

func setUp(dependency string, up bool) {
	value := 0.0
	if up {
		value = 1
	}
	metrics.DependencyUp.WithLabelValues(dependency).Set(value)
}
