package marketdata

import (
	"context"
	"math/rand"
	"time"

	"equity-scanner-bot/internal/types"
)

// Static synthesizes a random walk per symbol, seeded from the symbol name
// so the same symbol always yields the same history. Useful offline and in
// tests where live quotes are unavailable.
type Static struct {
	days int
}

// NewStatic creates a provider generating days of daily bars.
func NewStatic(days int) *Static {
	if days <= 0 {
		days = 90
	}
	return &Static{days: days}
}

func symbolSeed(symbol string) int64 {
	var seed int64
	for _, c := range symbol {
		seed = seed*31 + int64(c)
	}
	return seed
}

func (s *Static) History(_ context.Context, symbol string) ([]types.Bar, error) {
	r := rand.New(rand.NewSource(symbolSeed(symbol)))

	base := 500 + r.Float64()*2000
	drift := (r.Float64() - 0.4) * 2 // mild upward bias on most symbols

	bars := make([]types.Bar, 0, s.days)
	now := time.Now().Truncate(24 * time.Hour)
	price := base
	for i := s.days; i > 0; i-- {
		price += drift + (r.Float64()-0.5)*base*0.02
		if price < 1 {
			price = 1
		}
		open := price + (r.Float64()-0.5)*base*0.005
		high := max(open, price) + r.Float64()*base*0.008
		low := min(open, price) - r.Float64()*base*0.008
		bars = append(bars, types.Bar{
			Timestamp: now.AddDate(0, 0, -i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    100000 + r.Float64()*900000,
		})
	}
	return bars, nil
}

func (s *Static) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	bars, err := s.History(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return bars[len(bars)-1].Close, nil
}
