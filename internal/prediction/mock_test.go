package prediction_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nabhonil04/stockpredict/internal/prediction"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC) // a Friday
}

func TestMockProvider_History(t *testing.T) {
	p := prediction.NewMockProvider(fixedNow)
	ctx := context.Background()

	points, err := p.History(ctx, "AAPL", "1m")
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.Less(t, len(points), 30)

	for _, pt := range points {
		date, err := time.Parse(time.DateOnly, pt.Date)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, date.Weekday())
		assert.NotEqual(t, time.Sunday, date.Weekday())
		assert.True(t, date.Before(fixedNow()))

		assert.LessOrEqual(t, pt.Low, pt.Open)
		assert.GreaterOrEqual(t, pt.High, pt.Open)
		assert.GreaterOrEqual(t, pt.Close, pt.Low)
		assert.LessOrEqual(t, pt.Close, pt.High)
		assert.GreaterOrEqual(t, pt.Volume, int64(100_000))
	}

	again, err := p.History(ctx, "aapl", "1m")
	require.NoError(t, err)
	assert.Equal(t, points, again)
}

func TestMockProvider_HistoryRanges(t *testing.T) {
	p := prediction.NewMockProvider(fixedNow)
	ctx := context.Background()

	week, err := p.History(ctx, "MSFT", "1w")
	require.NoError(t, err)
	year, err := p.History(ctx, "MSFT", "1y")
	require.NoError(t, err)
	all, err := p.History(ctx, "MSFT", "all")
	require.NoError(t, err)

	assert.Len(t, week, 5)
	assert.Less(t, len(week), len(year))
	assert.Less(t, len(year), len(all))

	_, err = p.History(ctx, "MSFT", "2y")
	assert.ErrorIs(t, err, prediction.ErrInvalidRange)

	_, err = p.History(ctx, " ", "1y")
	assert.ErrorIs(t, err, prediction.ErrInvalidTicker)
}

func TestMockProvider_Predict(t *testing.T) {
	p := prediction.NewMockProvider(fixedNow)
	ctx := context.Background()

	forecast, err := p.Predict(ctx, "tsla", "1d", nil)
	require.NoError(t, err)

	assert.Equal(t, "TSLA", forecast.Ticker)
	assert.Equal(t, "1d", forecast.Horizon)
	assert.Contains(t, []string{"up", "down"}, forecast.Prediction)
	assert.Equal(t, prediction.AccuracyTarget, forecast.AccuracyTarget)
	assert.Len(t, forecast.ModelScores, len(prediction.DefaultModels))

	for _, model := range prediction.DefaultModels {
		assert.Contains(t, forecast.ModelScores, model)
	}
	for _, score := range forecast.ModelScores {
		assert.LessOrEqual(t, score, forecast.Confidence)
	}
	assert.Equal(t, forecast.ModelScores[forecast.BestModel], forecast.Confidence)

	again, err := p.Predict(ctx, "TSLA", "1d", []string{"xgboost", "lstm", "ma_crossover"})
	require.NoError(t, err)
	assert.Equal(t, forecast, again)
}

func TestMockProvider_PredictModels(t *testing.T) {
	p := prediction.NewMockProvider(fixedNow)

	forecast, err := p.Predict(context.Background(), "NVDA", "5d", []string{" ARIMA ", "arima", "", "prophet"})
	require.NoError(t, err)

	assert.Equal(t, []string{"arima", "prophet"}, keys(forecast.ModelScores))
	assert.GreaterOrEqual(t, forecast.ModelScores["arima"], 0.60)
	assert.LessOrEqual(t, forecast.ModelScores["arima"], 0.65)
	assert.GreaterOrEqual(t, forecast.ModelScores["prophet"], 0.50)
	assert.LessOrEqual(t, forecast.ModelScores["prophet"], 0.70)
}

func TestMockProvider_PredictInvalidHorizon(t *testing.T) {
	p := prediction.NewMockProvider(fixedNow)

	_, err := p.Predict(context.Background(), "AAPL", "1w", nil)
	assert.ErrorIs(t, err, prediction.ErrInvalidHorizon)
}

func TestMockProvider_Metrics(t *testing.T) {
	p := prediction.NewMockProvider(fixedNow)

	report, err := p.Metrics(context.Background(), "goog")
	require.NoError(t, err)

	assert.Equal(t, "GOOG", report.Ticker)
	assert.Len(t, report.Metrics, 4)

	xgb := report.Metrics[prediction.ModelXGBoost]
	assert.GreaterOrEqual(t, xgb.Accuracy, 0.68)
	assert.LessOrEqual(t, xgb.Accuracy, 0.74)

	ma := report.Metrics[prediction.ModelMACrossover]
	assert.Less(t, ma.Accuracy, xgb.Accuracy)
}

func TestMockProvider_Search(t *testing.T) {
	p := prediction.NewMockProvider(fixedNow)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   string
		limit   int
		tickers []string
	}{
		{name: "by ticker", query: "aapl", limit: 10, tickers: []string{"AAPL"}},
		{name: "by name", query: "corporation", limit: 10, tickers: []string{"MSFT", "NVDA", "INTC"}},
		{name: "limit applies", query: "corporation", limit: 2, tickers: []string{"MSFT", "NVDA"}},
		{name: "no match", query: "zzz", limit: 10, tickers: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := p.Search(ctx, tt.query, tt.limit)
			require.NoError(t, err)

			got := make([]string, 0, len(results))
			for _, s := range results {
				got = append(got, s.Ticker)
			}
			assert.Equal(t, tt.tickers, got)
		})
	}
}

func keys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for _, k := range []string{"arima", "prophet", "xgboost", "lstm", "ma_crossover"} {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
