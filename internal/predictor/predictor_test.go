package predictor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"equity-scanner-bot/internal/api"
	"equity-scanner-bot/internal/types"
)

func fastRetry() *api.RetryConfig {
	return &api.RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

func TestPredictRetriesFlakyService(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"prediction": 1}`))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL)
	h.retry = fastRetry()

	got, err := h.Predict(context.Background(), "TCS.NS", nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 1 {
		t.Errorf("prediction = %d, want 1", got)
	}
	if calls.Load() != 2 {
		t.Errorf("service saw %d calls, want a retry after the first failure", calls.Load())
	}
}

func TestPredictServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL)
	h.retry = fastRetry()

	if _, err := h.Predict(context.Background(), "TCS.NS", nil); err == nil {
		t.Fatal("expected error when the service never recovers")
	}
}

func TestBuildFeatures(t *testing.T) {
	bars := []types.Bar{
		{Close: 100, Volume: 5000},
		{Close: 102, Volume: 6000},
	}

	f := BuildFeatures("TCS.NS", bars)
	if f.Close != 102 || f.Volume != 6000 {
		t.Errorf("last bar not reflected: %+v", f)
	}
	// Windows unsatisfied on 2 bars: NaN indicators become zero on the wire.
	if f.RSI14 != 0 || f.SMA20 != 0 || f.SMA50 != 0 {
		t.Errorf("short history should zero the indicators: %+v", f)
	}
}

func TestNoopNeverPredictsUp(t *testing.T) {
	got, err := Noop{}.Predict(context.Background(), "TCS.NS", nil)
	if err != nil || got != 0 {
		t.Errorf("Noop = (%d, %v), want (0, nil)", got, err)
	}
}
