// Package predictor asks an external model service for a next-day direction
// call. The service is optional; without one the scanner simply scores on
// indicators alone.
package predictor

import (
	"context"
	"math"
	"net/http"

	"equity-scanner-bot/internal/api"
	"equity-scanner-bot/internal/indicator"
	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/types"
)

// Features is the model input derived from recent bars.
type Features struct {
	Symbol string  `json:"symbol"`
	RSI14  float64 `json:"rsi_14"`
	SMA20  float64 `json:"sma_20"`
	SMA50  float64 `json:"sma_50"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Predictor returns 1 for a predicted up-move, 0 for no call or down.
type Predictor interface {
	Predict(ctx context.Context, symbol string, bars []types.Bar) (int, error)
}

// HTTP posts features to a model endpoint and reads back the direction.
type HTTP struct {
	client *api.Client
	url    string
	retry  *api.RetryConfig
}

// NewHTTP creates a predictor against the given endpoint URL. Transient
// model-service failures are retried with backoff.
func NewHTTP(url string) *HTTP {
	return &HTTP{
		client: api.NewClient(api.WithLogging(true)),
		url:    url,
		retry:  api.DefaultRetryConfig(),
	}
}

// BuildFeatures extracts the model inputs from bar history. NaN indicator
// values are sent as zero so the payload stays valid JSON.
func BuildFeatures(symbol string, bars []types.Bar) Features {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	f := Features{Symbol: symbol}
	if len(bars) > 0 {
		last := bars[len(bars)-1]
		f.Close = last.Close
		f.Volume = last.Volume
	}
	f.RSI14 = zeroNaN(indicator.Last(indicator.RSI(closes, 14)))
	f.SMA20 = zeroNaN(indicator.Last(indicator.SMA(closes, 20)))
	f.SMA50 = zeroNaN(indicator.Last(indicator.SMA(closes, 50)))
	return f
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (h *HTTP) Predict(ctx context.Context, symbol string, bars []types.Bar) (int, error) {
	features := BuildFeatures(symbol, bars)

	req := api.NewRequest(http.MethodPost, h.url).
		WithContext(ctx).
		WithBody(features)
	resp, err := h.client.DoWithRetry(req, h.retry)
	if err != nil {
		return 0, err
	}

	var out struct {
		Prediction int `json:"prediction"`
	}
	if err := resp.ParseJSON(&out); err != nil {
		return 0, err
	}

	logger.Debug(ctx, "Model prediction", "symbol", symbol, "prediction", out.Prediction)
	return out.Prediction, nil
}

// Noop never predicts an up-move.
type Noop struct{}

func (Noop) Predict(_ context.Context, _ string, _ []types.Bar) (int, error) {
	return 0, nil
}
