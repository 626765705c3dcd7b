// Package marketdata supplies daily OHLCV history and live quotes. The
// YAHOO provider pulls from Yahoo Finance; STATIC synthesizes a
// deterministic walk per symbol for offline runs and tests.
package marketdata

import (
	"context"
	"errors"

	"equity-scanner-bot/internal/types"
)

// ErrNoData is returned when a provider has no bars for a symbol.
var ErrNoData = errors.New("no market data for symbol")

// Provider serves bar history and last traded prices.
type Provider interface {
	// History returns daily bars in ascending time order.
	History(ctx context.Context, symbol string) ([]types.Bar, error)
	// LatestPrice returns the most recent traded price.
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}
