package prediction

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

var catalog = []Stock{
	{Ticker: "AAPL", Name: "Apple Inc."},
	{Ticker: "MSFT", Name: "Microsoft Corporation"},
	{Ticker: "GOOGL", Name: "Alphabet Inc."},
	{Ticker: "AMZN", Name: "Amazon.com Inc."},
	{Ticker: "TSLA", Name: "Tesla, Inc."},
	{Ticker: "META", Name: "Meta Platforms, Inc."},
	{Ticker: "NVDA", Name: "NVIDIA Corporation"},
	{Ticker: "NFLX", Name: "Netflix, Inc."},
	{Ticker: "PYPL", Name: "PayPal Holdings, Inc."},
	{Ticker: "INTC", Name: "Intel Corporation"},
}

// scoreBands are the [min, max) accuracy bands per model.
var scoreBands = map[string][2]float64{
	ModelXGBoost:     {0.68, 0.74},
	ModelLSTM:        {0.67, 0.73},
	ModelGRU:         {0.66, 0.72},
	ModelARIMA:       {0.60, 0.65},
	ModelMACrossover: {0.55, 0.62},
}

var unknownModelBand = [2]float64{0.50, 0.70}

// metricBands are accuracy, precision and recall bands per reported model.
var metricBands = []struct {
	model                       string
	accuracy, precision, recall [2]float64
}{
	{ModelXGBoost, [2]float64{0.68, 0.74}, [2]float64{0.65, 0.75}, [2]float64{0.65, 0.75}},
	{ModelLSTM, [2]float64{0.67, 0.73}, [2]float64{0.64, 0.74}, [2]float64{0.64, 0.74}},
	{ModelARIMA, [2]float64{0.60, 0.65}, [2]float64{0.58, 0.68}, [2]float64{0.58, 0.68}},
	{ModelMACrossover, [2]float64{0.55, 0.62}, [2]float64{0.53, 0.63}, [2]float64{0.53, 0.63}},
}

// MockProvider generates deterministic data seeded by the ticker symbol, so
// repeated requests for one ticker agree with each other.
type MockProvider struct {
	now func() time.Time
}

// NewMockProvider creates a provider that dates history relative to now
func NewMockProvider(now func() time.Time) *MockProvider {
	if now == nil {
		now = time.Now
	}
	return &MockProvider{now: now}
}

func (p *MockProvider) History(_ context.Context, ticker, rng string) ([]PricePoint, error) {
	ticker, err := cleanTicker(ticker)
	if err != nil {
		return nil, err
	}
	days, ok := rangeDays[rng]
	if !ok {
		return nil, ErrInvalidRange
	}

	r := seeded(ticker)
	price := uniform(r, 50, 500)
	end := p.now().UTC()

	points := make([]PricePoint, 0, days)
	for i := 0; i < days; i++ {
		date := end.AddDate(0, 0, i-days)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		price *= 1 + uniform(r, -0.03, 0.03)
		open := price
		high := open * (1 + uniform(r, 0, 0.02))
		low := open * (1 - uniform(r, 0, 0.02))

		points = append(points, PricePoint{
			Date:   date.Format(time.DateOnly),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(uniform(r, low, high)),
			Volume: int64(uniform(r, 100_000, 10_000_000)),
		})
	}
	return points, nil
}

func (p *MockProvider) Predict(_ context.Context, ticker, horizon string, models []string) (*Forecast, error) {
	ticker, err := cleanTicker(ticker)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(Horizons, horizon) {
		return nil, ErrInvalidHorizon
	}
	models = cleanModels(models)

	r := seeded(ticker + horizon)
	scores := make(map[string]float64, len(models))
	best := ""
	for _, model := range models {
		band, ok := scoreBands[model]
		if !ok {
			band = unknownModelBand
		}
		scores[model] = round2(uniform(r, band[0], band[1]))
		// First model wins ties.
		if best == "" || scores[model] > scores[best] {
			best = model
		}
	}

	direction := "down"
	if r.Float64() > 0.45 {
		direction = "up"
	}

	return &Forecast{
		Ticker:         ticker,
		Horizon:        horizon,
		Prediction:     direction,
		Confidence:     scores[best],
		AccuracyTarget: AccuracyTarget,
		ModelScores:    scores,
		BestModel:      best,
	}, nil
}

func (p *MockProvider) Metrics(_ context.Context, ticker string) (*MetricsReport, error) {
	ticker, err := cleanTicker(ticker)
	if err != nil {
		return nil, err
	}

	r := seeded(ticker)
	report := &MetricsReport{
		Ticker:  ticker,
		Metrics: make(map[string]ModelScore, len(metricBands)),
	}
	for _, b := range metricBands {
		report.Metrics[b.model] = ModelScore{
			Accuracy:  round2(uniform(r, b.accuracy[0], b.accuracy[1])),
			Precision: round2(uniform(r, b.precision[0], b.precision[1])),
			Recall:    round2(uniform(r, b.recall[0], b.recall[1])),
		}
	}
	return report, nil
}

func (p *MockProvider) Search(_ context.Context, query string, limit int) ([]Stock, error) {
	query = strings.TrimSpace(query)
	upper := strings.ToUpper(query)
	lower := strings.ToLower(query)

	results := make([]Stock, 0, len(catalog))
	for _, stock := range catalog {
		if limit > 0 && len(results) == limit {
			break
		}
		if strings.Contains(stock.Ticker, upper) || strings.Contains(strings.ToLower(stock.Name), lower) {
			results = append(results, stock)
		}
	}
	return results, nil
}

func cleanTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", ErrInvalidTicker
	}
	return ticker, nil
}

func cleanModels(models []string) []string {
	out := make([]string, 0, len(models))
	for _, model := range models {
		model = strings.ToLower(strings.TrimSpace(model))
		if model != "" && !slices.Contains(out, model) {
			out = append(out, model)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultModels)
	}
	return out
}

// seeded returns a generator whose seed is the byte sum of key.
func seeded(key string) *rand.Rand {
	var sum uint64
	for i := 0; i < len(key); i++ {
		sum += uint64(key[i])
	}
	return rand.New(rand.NewPCG(sum, 0))
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
