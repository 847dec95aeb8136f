package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nabhonil04/stockpredict/internal/database/service"
	"github.com/Nabhonil04/stockpredict/internal/middleware"
)

// WatchlistHandler handles the current user's watchlist
type WatchlistHandler struct {
	watchlistService service.WatchlistService
	logger           *slog.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlistService service.WatchlistService, logger *slog.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
		logger:           logger,
	}
}

type AddTickerRequest struct {
	Ticker string `json:"ticker" binding:"required,ticker"`
}

// List handles GET /watchlist/
func (h *WatchlistHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	items, err := h.watchlistService.List(c.Request.Context(), user.ID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// Add handles POST /watchlist/
func (h *WatchlistHandler) Add(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req AddTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	item, err := h.watchlistService.Add(c.Request.Context(), user.ID, req.Ticker)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Remove handles DELETE /watchlist/:ticker
func (h *WatchlistHandler) Remove(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.watchlistService.Remove(c.Request.Context(), user.ID, c.Param("ticker")); err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
