package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-scanner-bot/internal/executor"
	"equity-scanner-bot/internal/notifier"
	"equity-scanner-bot/internal/store"
	"equity-scanner-bot/internal/types"
)

func entry(symbol string, side types.Side, qty int, price float64) types.LedgerEntry {
	return types.LedgerEntry{
		Timestamp:  time.Now(),
		Symbol:     symbol,
		Action:     side,
		Quantity:   qty,
		Price:      price,
		TotalValue: price * float64(qty),
	}
}

func TestOpenPositions(t *testing.T) {
	entries := []types.LedgerEntry{
		entry("TCS.NS", types.Buy, 10, 3500),
		entry("INFY.NS", types.Buy, 5, 1500),
		entry("TCS.NS", types.Buy, 5, 3600),
		entry("INFY.NS", types.Sell, 5, 1550),
		entry("SBIN.NS", types.Buy, 20, 600),
	}

	positions := OpenPositions(entries)

	require.Len(t, positions, 2, "fully closed INFY should drop out")
	assert.Equal(t, "TCS.NS", positions[0].Symbol)
	assert.Equal(t, 15, positions[0].Quantity)
	assert.Equal(t, 3600.0, positions[0].LastBuyPrice, "last buy anchors the exit bands")
	assert.Equal(t, "SBIN.NS", positions[1].Symbol)
}

func TestOpenPositionsEmpty(t *testing.T) {
	assert.Empty(t, OpenPositions(nil))
}

// priceStub serves canned prices and errors per symbol.
type priceStub struct {
	prices map[string]float64
	errs   map[string]error
}

func (p *priceStub) History(context.Context, string) ([]types.Bar, error) {
	return nil, errors.New("not used")
}

func (p *priceStub) LatestPrice(_ context.Context, symbol string) (float64, error) {
	if err, ok := p.errs[symbol]; ok {
		return 0, err
	}
	return p.prices[symbol], nil
}

func newMonitor(t *testing.T, prices map[string]float64, errs map[string]error) (*ExitMonitor, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir(), 100000)
	require.NoError(t, err)
	exec := executor.NewManager(st, notifier.Noop{}, executor.Options{RequireApproval: true})
	em := NewExitMonitor(st, &priceStub{prices: prices, errs: errs}, exec, 2.0, 1.0)
	return em, st
}

func buyAt(t *testing.T, st store.Store, symbol string, qty int, price float64) {
	t.Helper()
	e := entry(symbol, types.Buy, qty, price)
	e.Status = types.LedgerOpen
	require.NoError(t, st.RecordTrade(context.Background(), e, -price*float64(qty)))
}

func TestExitMonitorTargetHit(t *testing.T) {
	em, st := newMonitor(t, map[string]float64{"TCS.NS": 102.5}, nil)
	ctx := context.Background()
	buyAt(t, st, "TCS.NS", 10, 100)

	reports, err := em.ScanAndClose(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, ActionSold, reports[0].Action)
	assert.Equal(t, ReasonTargetHit, reports[0].Reason)

	// The closing SELL bypasses approval and lands in the ledger directly.
	entries, err := st.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, types.Sell, entries[1].Action)

	orders, err := st.PendingOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestExitMonitorInsideBands(t *testing.T) {
	em, st := newMonitor(t, map[string]float64{"TCS.NS": 99.5}, nil)
	ctx := context.Background()
	buyAt(t, st, "TCS.NS", 10, 100)

	reports, err := em.ScanAndClose(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, ActionHold, reports[0].Action)
	assert.Empty(t, reports[0].Reason)

	entries, err := st.Ledger(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no sell inside the bands")
}

func TestExitMonitorStopLoss(t *testing.T) {
	em, st := newMonitor(t, map[string]float64{"TCS.NS": 98.5}, nil)
	ctx := context.Background()
	buyAt(t, st, "TCS.NS", 10, 100)

	reports, err := em.ScanAndClose(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, ActionSold, reports[0].Action)
	assert.Equal(t, ReasonStopLossHit, reports[0].Reason)
}

func TestExitMonitorSkipsUnpricedSymbols(t *testing.T) {
	em, st := newMonitor(t,
		map[string]float64{"TCS.NS": 102.5},
		map[string]error{"INFY.NS": errors.New("feed down")})
	ctx := context.Background()
	buyAt(t, st, "INFY.NS", 5, 1500)
	buyAt(t, st, "TCS.NS", 10, 100)

	reports, err := em.ScanAndClose(ctx)
	require.NoError(t, err)

	// INFY is skipped outright, TCS still gets its exit.
	require.Len(t, reports, 1)
	assert.Equal(t, "TCS.NS", reports[0].Symbol)
	assert.Equal(t, ActionSold, reports[0].Action)
}
