package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nabhonil04/stockpredict/internal/prediction"
)

// StockHandler serves market data and forecasts
type StockHandler struct {
	provider prediction.Provider
	logger   *slog.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(provider prediction.Provider, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		provider: provider,
		logger:   logger,
	}
}

type HistoryQuery struct {
	Ticker string `form:"ticker" binding:"required"`
	Range  string `form:"range"`
}

type PredictQuery struct {
	Ticker  string `form:"ticker" binding:"required"`
	Horizon string `form:"horizon"`
	Models  string `form:"models"`
}

type MetricsQuery struct {
	Ticker string `form:"ticker" binding:"required"`
}

type SearchQuery struct {
	Query string `form:"query" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// History handles GET /stocks/history
func (h *StockHandler) History(c *gin.Context) {
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}
	if q.Range == "" {
		q.Range = "1y"
	}

	points, err := h.provider.History(c.Request.Context(), q.Ticker, q.Range)
	if err != nil {
		h.providerError(c, err)
		return
	}

	c.JSON(http.StatusOK, points)
}

// Predict handles GET /stocks/predict
func (h *StockHandler) Predict(c *gin.Context) {
	var q PredictQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}
	if q.Horizon == "" {
		q.Horizon = "1d"
	}

	var models []string
	if q.Models != "" {
		models = strings.Split(q.Models, ",")
	}

	forecast, err := h.provider.Predict(c.Request.Context(), q.Ticker, q.Horizon, models)
	if err != nil {
		h.providerError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}

// Metrics handles GET /stocks/metrics
func (h *StockHandler) Metrics(c *gin.Context) {
	var q MetricsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}

	report, err := h.provider.Metrics(c.Request.Context(), q.Ticker)
	if err != nil {
		h.providerError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Search handles GET /stocks/search
func (h *StockHandler) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = 10
	}

	results, err := h.provider.Search(c.Request.Context(), q.Query, q.Limit)
	if err != nil {
		h.providerError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *StockHandler) providerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, prediction.ErrInvalidHorizon),
		errors.Is(err, prediction.ErrInvalidRange),
		errors.Is(err, prediction.ErrInvalidTicker):
		errorResponse(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("❌ [StockHandler] Provider failed", "path", c.FullPath(), "error", err)
		errorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
