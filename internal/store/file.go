package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/types"
)

const (
	balanceFile = "balance.json"
	ledgerFile  = "paper_trades.json"
	pendingFile = "pending_orders.json"
)

// FileStore keeps state in three JSON files under one directory. A single
// mutex serializes every operation; writes go to a temp file first and are
// renamed into place so a crash never leaves a half-written file behind.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore opens (or initializes) the directory, seeding the balance
// file with the initial cash on first run.
func NewFileStore(dir string, initialBalance float64) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}

	s := &FileStore{dir: dir}

	if _, err := os.Stat(filepath.Join(dir, balanceFile)); errors.Is(err, os.ErrNotExist) {
		seed := types.Balance{
			InitialBalance: initialBalance,
			CurrentCash:    initialBalance,
			TotalEquity:    initialBalance,
		}
		if err := s.writeJSON(balanceFile, seed); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readJSON loads a file into v. A missing or corrupt file leaves v at its
// zero value; corruption is logged rather than surfaced, so the bot keeps
// running on a fresh slate instead of wedging on a bad file.
func (s *FileStore) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn(context.Background(), "Corrupt store file, starting empty", "file", name, "error", err.Error())
		return nil
	}
	return nil
}

func (s *FileStore) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Balance(_ context.Context) (types.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bal types.Balance
	if err := s.readJSON(balanceFile, &bal); err != nil {
		return types.Balance{}, err
	}
	return bal, nil
}

func (s *FileStore) Ledger(_ context.Context) ([]types.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []types.LedgerEntry{}
	if err := s.readJSON(ledgerFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *FileStore) PendingOrders(_ context.Context) ([]types.PendingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []types.PendingOrder{}
	if err := s.readJSON(pendingFile, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *FileStore) AppendPending(_ context.Context, order types.PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []types.PendingOrder{}
	if err := s.readJSON(pendingFile, &orders); err != nil {
		return err
	}
	orders = append(orders, order)
	return s.writeJSON(pendingFile, orders)
}

func (s *FileStore) TakePending(_ context.Context, id string) (types.PendingOrder, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []types.PendingOrder{}
	if err := s.readJSON(pendingFile, &orders); err != nil {
		return types.PendingOrder{}, false, err
	}

	for i, o := range orders {
		if o.ID == id {
			remaining := append(orders[:i:i], orders[i+1:]...)
			if err := s.writeJSON(pendingFile, remaining); err != nil {
				return types.PendingOrder{}, false, err
			}
			return o, true, nil
		}
	}
	return types.PendingOrder{}, false, nil
}

func (s *FileStore) RecordTrade(_ context.Context, entry types.LedgerEntry, cashDelta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []types.LedgerEntry{}
	if err := s.readJSON(ledgerFile, &entries); err != nil {
		return err
	}
	var bal types.Balance
	if err := s.readJSON(balanceFile, &bal); err != nil {
		return err
	}

	entries = append(entries, entry)
	bal.CurrentCash += cashDelta
	bal.TotalEquity = bal.CurrentCash + bal.PortfolioValue

	// Ledger first: if the balance write fails the trade is at least on
	// record for manual reconciliation.
	if err := s.writeJSON(ledgerFile, entries); err != nil {
		return err
	}
	return s.writeJSON(balanceFile, bal)
}
