package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-scanner-bot/internal/types"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), 100000)
	require.NoError(t, err)
	return s
}

func TestFileStoreSeedsBalance(t *testing.T) {
	s := newTestStore(t)

	bal, err := s.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100000.0, bal.InitialBalance)
	assert.Equal(t, 100000.0, bal.CurrentCash)
	assert.Equal(t, 100000.0, bal.TotalEquity)
}

func TestFileStoreSeedOnlyOnce(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, 100000)
	require.NoError(t, err)

	err = s.RecordTrade(context.Background(), types.LedgerEntry{Symbol: "TCS.NS"}, -5000)
	require.NoError(t, err)

	// Reopening must not reset the balance.
	s2, err := NewFileStore(dir, 100000)
	require.NoError(t, err)
	bal, err := s2.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 95000.0, bal.CurrentCash)
}

func TestRecordTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := types.LedgerEntry{
		Timestamp:  time.Now(),
		Symbol:     "INFY.NS",
		Action:     types.Buy,
		Quantity:   10,
		Price:      1500,
		TotalValue: 15000,
		Status:     types.LedgerOpen,
	}
	require.NoError(t, s.RecordTrade(ctx, entry, -15000))

	entries, err := s.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFY.NS", entries[0].Symbol)
	assert.Equal(t, types.Buy, entries[0].Action)

	bal, err := s.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 85000.0, bal.CurrentCash)
	assert.Equal(t, bal.CurrentCash+bal.PortfolioValue, bal.TotalEquity)
}

func TestPendingLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order := types.PendingOrder{
		ID:        "ord_1",
		CreatedAt: time.Now(),
		Status:    types.StatusWaitingApproval,
		TradeProposal: types.TradeProposal{
			Symbol:   "TCS.NS",
			Side:     types.Buy,
			Quantity: 5,
			Price:    3500,
		},
	}
	require.NoError(t, s.AppendPending(ctx, order))

	orders, err := s.PendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	taken, found, err := s.TakePending(ctx, "ord_1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "TCS.NS", taken.Symbol)

	orders, err = s.PendingOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestTakePendingUnknownID(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.TakePending(context.Background(), "ord_missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCorruptFileRecovers(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, 100000)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ledgerFile), []byte("{not json"), 0o644))

	// Corrupt ledger reads as empty, and the balance stays readable.
	entries, err := s.Ledger(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	bal, err := s.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, bal.CurrentCash)

	// Writes after corruption start from a clean slate.
	require.NoError(t, s.RecordTrade(ctx, types.LedgerEntry{Symbol: "SBIN.NS"}, -100))
	entries, err = s.Ledger(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
