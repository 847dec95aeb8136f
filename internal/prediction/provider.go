// Package prediction serves price history, direction forecasts and model
// metrics for stock tickers.
package prediction

import (
	"context"
	"errors"
)

// Errors returned by providers
var (
	ErrInvalidTicker  = errors.New("ticker is required")
	ErrInvalidRange   = errors.New("invalid range. Must be one of [1w 1m 3m 6m 1y all]")
	ErrInvalidHorizon = errors.New("invalid horizon. Must be one of [1d 5d]")
)

// Supported model names
const (
	ModelXGBoost     = "xgboost"
	ModelLSTM        = "lstm"
	ModelGRU         = "gru"
	ModelARIMA       = "arima"
	ModelMACrossover = "ma_crossover"
)

// AccuracyTarget is reported with every forecast.
const AccuracyTarget = "~70%"

// DefaultModels are used when a forecast request names none.
var DefaultModels = []string{ModelXGBoost, ModelLSTM, ModelMACrossover}

// Horizons lists the accepted forecast horizons.
var Horizons = []string{"1d", "5d"}

// rangeDays maps a history range to the number of calendar days it covers.
var rangeDays = map[string]int{
	"1w":  7,
	"1m":  30,
	"3m":  90,
	"6m":  180,
	"1y":  365,
	"all": 1000,
}

// PricePoint is one trading day.
type PricePoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Forecast is a next-move prediction for one ticker.
type Forecast struct {
	Ticker         string             `json:"ticker"`
	Horizon        string             `json:"horizon"`
	Prediction     string             `json:"prediction"` // "up" or "down"
	Confidence     float64            `json:"confidence"`
	AccuracyTarget string             `json:"accuracy_target"`
	ModelScores    map[string]float64 `json:"model_scores"`
	BestModel      string             `json:"best_model"`
}

// ModelScore holds validation scores of a single model.
type ModelScore struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// MetricsReport holds per-model scores for one ticker.
type MetricsReport struct {
	Ticker  string                `json:"ticker"`
	Metrics map[string]ModelScore `json:"metrics"`
}

// Stock is a searchable listing.
type Stock struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Provider is the source of market data and forecasts
type Provider interface {
	History(ctx context.Context, ticker, rng string) ([]PricePoint, error)
	Predict(ctx context.Context, ticker, horizon string, models []string) (*Forecast, error)
	Metrics(ctx context.Context, ticker string) (*MetricsReport, error)
	Search(ctx context.Context, query string, limit int) ([]Stock, error)
}
