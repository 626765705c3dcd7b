// Package store persists the paper-trading state: cash balance, the trade
// ledger and orders waiting for approval. Two backends exist, JSON files for
// zero-setup runs and sqlite for anything longer lived. All writes go
// through one Store instance, which serializes them.
package store

import (
	"context"
	"errors"
	"fmt"

	"equity-scanner-bot/internal/types"
)

// ErrUnknownBackend is returned for an unrecognized storage backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is the persistence boundary for balance, ledger and pending orders.
type Store interface {
	// Balance returns the current account snapshot.
	Balance(ctx context.Context) (types.Balance, error)
	// Ledger returns all recorded trades in insertion order.
	Ledger(ctx context.Context) ([]types.LedgerEntry, error)
	// PendingOrders returns orders still waiting for approval.
	PendingOrders(ctx context.Context) ([]types.PendingOrder, error)
	// AppendPending adds an order to the approval queue.
	AppendPending(ctx context.Context, order types.PendingOrder) error
	// TakePending removes and returns the order with the given id. The bool
	// reports whether it existed; absence is not an error.
	TakePending(ctx context.Context, id string) (types.PendingOrder, bool, error)
	// RecordTrade appends a ledger entry and applies cashDelta to the
	// balance in one atomic step. Positive delta credits cash.
	RecordTrade(ctx context.Context, entry types.LedgerEntry, cashDelta float64) error
}

// Options selects and configures a backend.
type Options struct {
	Backend        string // "file" or "sqlite"
	Dir            string // file backend: directory for the JSON files
	DSN            string // sqlite backend: database path
	InitialBalance float64
}

// New creates the configured backend, seeding the initial balance on first
// run.
func New(opts Options) (Store, error) {
	switch opts.Backend {
	case "file", "":
		return NewFileStore(opts.Dir, opts.InitialBalance)
	case "sqlite":
		return NewSQLStore(opts.DSN, opts.InitialBalance)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
