package api

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nabhonil04/stockpredict/internal/config"
	"github.com/Nabhonil04/stockpredict/internal/handler"
	"github.com/Nabhonil04/stockpredict/internal/middleware"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

func SetupRouter(
	cfg *config.Config,
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	watchlistHandler *handler.WatchlistHandler,
	stockHandler *handler.StockHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	// Client IPs come from the socket; forwarded headers are never trusted.
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Warn("⚠️ [Router] Failed to reset trusted proxies", "error", err)
	}
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		cors.New(corsConfig(cfg.CORSAllowedOrigins)),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	// Public routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Stock Prediction API",
			"docs":    "/docs",
			"version": Version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.ApiPrefix)
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes (Public)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Stock routes (Public, rate limited)
	stocks := api.Group("/stocks")
	stocks.Use(middleware.RateLimit(rateLimiter, logger))
	{
		stocks.GET("/history", stockHandler.History)
		stocks.GET("/predict", stockHandler.Predict)
		stocks.GET("/metrics", stockHandler.Metrics)
		stocks.GET("/search", stockHandler.Search)
	}

	// Protected routes
	users := api.Group("/users")
	users.Use(authMiddleware.RequireAuth())
	{
		users.GET("/me", userHandler.Me)
		users.PUT("/me", userHandler.UpdateMe)
	}

	watchlist := api.Group("/watchlist")
	watchlist.Use(authMiddleware.RequireAuth())
	{
		watchlist.GET("/", watchlistHandler.List)
		watchlist.GET("", watchlistHandler.List)
		watchlist.POST("/", watchlistHandler.Add)
		watchlist.POST("", watchlistHandler.Add)
		watchlist.DELETE("/:ticker", watchlistHandler.Remove)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
