package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/types"
)

// Yahoo fetches daily candles and quotes from Yahoo Finance. NSE symbols
// carry the .NS suffix on the wire.
type Yahoo struct {
	historyDays int
}

// NewYahoo creates a provider that requests historyDays of daily bars.
func NewYahoo(historyDays int) *Yahoo {
	if historyDays <= 0 {
		historyDays = 90
	}
	return &Yahoo{historyDays: historyDays}
}

func (y *Yahoo) History(ctx context.Context, symbol string) ([]types.Bar, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -y.historyDays)

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	bars := make([]types.Bar, 0, y.historyDays)
	for iter.Next() {
		b := iter.Bar()
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		closep, _ := b.Close.Float64()
		bars = append(bars, types.Bar{
			Timestamp: time.Unix(int64(b.Timestamp), 0),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closep,
			Volume:    float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("chart fetch for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	logger.Debug(ctx, "Fetched history", "symbol", symbol, "bars", len(bars))
	return bars, nil
}

func (y *Yahoo) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return 0, fmt.Errorf("quote fetch for %s: %w", symbol, err)
	}
	if q == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	logger.Debug(ctx, "Fetched quote", "symbol", symbol, "price", q.RegularMarketPrice)
	return q.RegularMarketPrice, nil
}
