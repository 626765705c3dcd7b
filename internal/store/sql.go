package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"equity-scanner-bot/internal/types"
)

type balanceRow struct {
	ID             uint `gorm:"primarykey"`
	InitialBalance float64
	CurrentCash    float64
	PortfolioValue float64
	UpdatedAt      time.Time
}

type ledgerRow struct {
	ID         uint `gorm:"primarykey"`
	Timestamp  time.Time
	Symbol     string `gorm:"index"`
	Action     string
	Quantity   int
	Price      float64
	TotalValue float64
	StopLoss   float64
	Target     float64
	Status     string
}

type pendingRow struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	Symbol    string
	Side      string
	Quantity  int
	Price     float64
	StopLoss  float64
	Target    float64
	Score     int
	Status    string
}

// SQLStore persists state in sqlite through gorm. RecordTrade and
// TakePending run inside transactions so the ledger and balance can never
// diverge.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (or creates) the database at dsn and seeds the balance
// row on first run.
func NewSQLStore(dsn string, initialBalance float64) (*SQLStore, error) {
	if dsn == "" {
		dsn = filepath.Join("data", "scanner.db")
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&balanceRow{}, &ledgerRow{}, &pendingRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	var count int64
	db.Model(&balanceRow{}).Count(&count)
	if count == 0 {
		seed := balanceRow{
			InitialBalance: initialBalance,
			CurrentCash:    initialBalance,
		}
		if err := db.Create(&seed).Error; err != nil {
			return nil, fmt.Errorf("failed to seed balance: %w", err)
		}
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Balance(ctx context.Context) (types.Balance, error) {
	var row balanceRow
	if err := s.db.WithContext(ctx).First(&row).Error; err != nil {
		return types.Balance{}, fmt.Errorf("failed to load balance: %w", err)
	}
	return types.Balance{
		InitialBalance: row.InitialBalance,
		CurrentCash:    row.CurrentCash,
		PortfolioValue: row.PortfolioValue,
		TotalEquity:    row.CurrentCash + row.PortfolioValue,
	}, nil
}

func (s *SQLStore) Ledger(ctx context.Context) ([]types.LedgerEntry, error) {
	var rows []ledgerRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	entries := make([]types.LedgerEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, types.LedgerEntry{
			Timestamp:  r.Timestamp,
			Symbol:     r.Symbol,
			Action:     types.Side(r.Action),
			Quantity:   r.Quantity,
			Price:      r.Price,
			TotalValue: r.TotalValue,
			StopLoss:   r.StopLoss,
			Target:     r.Target,
			Status:     r.Status,
		})
	}
	return entries, nil
}

func (s *SQLStore) PendingOrders(ctx context.Context) ([]types.PendingOrder, error) {
	var rows []pendingRow
	if err := s.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending orders: %w", err)
	}

	orders := make([]types.PendingOrder, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, pendingToOrder(r))
	}
	return orders, nil
}

func pendingToOrder(r pendingRow) types.PendingOrder {
	return types.PendingOrder{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Status:    r.Status,
		TradeProposal: types.TradeProposal{
			Symbol:   r.Symbol,
			Side:     types.Side(r.Side),
			Quantity: r.Quantity,
			Price:    r.Price,
			StopLoss: r.StopLoss,
			Target:   r.Target,
			Score:    r.Score,
		},
	}
}

func (s *SQLStore) AppendPending(ctx context.Context, order types.PendingOrder) error {
	row := pendingRow{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Symbol:    order.Symbol,
		Side:      string(order.Side),
		Quantity:  order.Quantity,
		Price:     order.Price,
		StopLoss:  order.StopLoss,
		Target:    order.Target,
		Score:     order.Score,
		Status:    order.Status,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save pending order: %w", err)
	}
	return nil
}

func (s *SQLStore) TakePending(ctx context.Context, id string) (types.PendingOrder, bool, error) {
	var order types.PendingOrder
	found := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row pendingRow
		res := tx.Where("id = ?", id).First(&row)
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Delete(&pendingRow{}, "id = ?", id).Error; err != nil {
			return err
		}
		order = pendingToOrder(row)
		found = true
		return nil
	})
	if err != nil {
		return types.PendingOrder{}, false, fmt.Errorf("failed to take pending order: %w", err)
	}
	return order, found, nil
}

func (s *SQLStore) RecordTrade(ctx context.Context, entry types.LedgerEntry, cashDelta float64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := ledgerRow{
			Timestamp:  entry.Timestamp,
			Symbol:     entry.Symbol,
			Action:     string(entry.Action),
			Quantity:   entry.Quantity,
			Price:      entry.Price,
			TotalValue: entry.TotalValue,
			StopLoss:   entry.StopLoss,
			Target:     entry.Target,
			Status:     entry.Status,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		var bal balanceRow
		if err := tx.First(&bal).Error; err != nil {
			return err
		}
		bal.CurrentCash += cashDelta
		return tx.Save(&bal).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	return nil
}
