package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetry(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

func TestDoSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if got := r.Header.Get("X-Token"); got != "abc" {
			t.Errorf("default header not applied, got %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("body decode: %v", err)
		}
		if body["symbol"] != "TCS.NS" {
			t.Errorf("body = %v", body)
		}
		_, _ = w.Write([]byte(`{"prediction": 1}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeader("X-Token", "abc"))
	req := NewRequest(http.MethodPost, "/predict").
		WithContext(context.Background()).
		WithBody(map[string]string{"symbol": "TCS.NS"})

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	var out struct {
		Prediction int `json:"prediction"`
	}
	if err := resp.ParseJSON(&out); err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if out.Prediction != 1 {
		t.Errorf("prediction = %d, want 1", out.Prediction)
	}
}

func TestDoErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.Do(NewRequest(http.MethodGet, srv.URL))
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error %q should carry the status code", err)
	}
}

func TestDoWithRetryRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewClient()
	resp, err := c.DoWithRetry(NewRequest(http.MethodGet, srv.URL), fastRetry(3))
	if err != nil {
		t.Fatalf("DoWithRetry: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestDoWithRetryExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.DoWithRetry(NewRequest(http.MethodGet, srv.URL), fastRetry(2))
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}
