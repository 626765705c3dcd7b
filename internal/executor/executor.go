// Package executor runs the order lifecycle: proposals either wait in the
// approval queue or fill immediately, paper fills settle against the store,
// and live orders go to the broker. Every accepted trade lands in the
// ledger.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/notifier"
	"equity-scanner-bot/internal/store"
	"equity-scanner-bot/internal/types"
)

// Sentinel errors surfaced to callers; the API layer maps them to response
// payloads.
var (
	ErrUnknownOrder         = errors.New("order not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// Result statuses reported to callers.
const (
	StatusPendingApproval = "Pending Approval"
	StatusExecuted        = "Executed"
	StatusRejected        = "Rejected"
	StatusFailed          = "Failed"
)

// Result describes the outcome of submitting, approving or rejecting an
// order.
type Result struct {
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

// Options configures the manager.
type Options struct {
	RequireApproval bool
	Live            bool
	Backend         Backend // used only when Live
}

// Manager owns the order state machine.
type Manager struct {
	store    store.Store
	notifier notifier.Notifier
	opts     Options
}

// NewManager creates an order manager.
func NewManager(st store.Store, n notifier.Notifier, opts Options) *Manager {
	if n == nil {
		n = notifier.Noop{}
	}
	return &Manager{store: st, notifier: n, opts: opts}
}

// Execute runs a proposal through the lifecycle. With approval required and
// bypass false the proposal parks in the pending queue; otherwise it fills
// now. Exit sells pass bypass true so a closing trade never waits on a
// human.
func (m *Manager) Execute(ctx context.Context, p types.TradeProposal, bypassApproval bool) (Result, error) {
	if m.opts.RequireApproval && !bypassApproval {
		return m.park(ctx, p)
	}
	return m.fill(ctx, p)
}

// park queues the proposal for approval.
func (m *Manager) park(ctx context.Context, p types.TradeProposal) (Result, error) {
	order := types.PendingOrder{
		ID:            fmt.Sprintf("ord_%d", time.Now().UnixNano()),
		CreatedAt:     time.Now(),
		Status:        types.StatusWaitingApproval,
		TradeProposal: p,
	}
	if err := m.store.AppendPending(ctx, order); err != nil {
		return Result{Status: StatusFailed, Detail: err.Error()}, err
	}

	logger.Info(ctx, "Order parked for approval", "order_id", order.ID, "symbol", p.Symbol, "side", string(p.Side))
	_ = m.notifier.Notify(ctx, fmt.Sprintf(
		"*Approval needed*\n%s %s x%d @ %.2f\nScore: %d\nOrder: `%s`",
		p.Side, p.Symbol, p.Quantity, p.Price, p.Score, order.ID))

	return Result{Status: StatusPendingApproval, OrderID: order.ID}, nil
}

// fill executes the proposal now. Paper mode settles against the store;
// live mode forwards to the broker first.
func (m *Manager) fill(ctx context.Context, p types.TradeProposal) (Result, error) {
	cost := p.Price * float64(p.Quantity)

	switch p.Side {
	case types.Buy:
		bal, err := m.store.Balance(ctx)
		if err != nil {
			return Result{Status: StatusFailed, Detail: err.Error()}, err
		}
		if cost > bal.CurrentCash {
			logger.Risk(ctx, p.Symbol, "insufficient_funds")
			return Result{Status: StatusFailed, Detail: ErrInsufficientFunds.Error()}, ErrInsufficientFunds
		}
	case types.Sell:
		held, err := m.holdings(ctx, p.Symbol)
		if err != nil {
			return Result{Status: StatusFailed, Detail: err.Error()}, err
		}
		if held < p.Quantity {
			logger.Risk(ctx, p.Symbol, "insufficient_holdings")
			return Result{Status: StatusFailed, Detail: ErrInsufficientHoldings.Error()}, ErrInsufficientHoldings
		}
	}

	orderID := ""
	if m.opts.Live && m.opts.Backend != nil {
		id, err := m.opts.Backend.PlaceOrder(ctx, p.Symbol, p.Side, p.Quantity)
		if err != nil {
			return Result{Status: StatusFailed, Detail: err.Error()}, err
		}
		orderID = id
	}

	entry := types.LedgerEntry{
		Timestamp:  time.Now(),
		Symbol:     p.Symbol,
		Action:     p.Side,
		Quantity:   p.Quantity,
		Price:      p.Price,
		TotalValue: cost,
		StopLoss:   p.StopLoss,
		Target:     p.Target,
		Status:     types.LedgerOpen,
	}
	cashDelta := -cost
	if p.Side == types.Sell {
		entry.Status = types.LedgerClosed
		cashDelta = cost
	}

	if err := m.store.RecordTrade(ctx, entry, cashDelta); err != nil {
		return Result{Status: StatusFailed, Detail: err.Error()}, err
	}

	logger.Trade(ctx, p.Symbol, string(p.Side), p.Quantity, p.Price)
	_ = m.notifier.Notify(ctx, fmt.Sprintf(
		"*%s executed*\n%s x%d @ %.2f (%.2f total)",
		p.Side, p.Symbol, p.Quantity, p.Price, cost))

	return Result{Status: StatusExecuted, OrderID: orderID}, nil
}

// Approve removes the order from the queue and fills it. The funds and
// holdings guards run again at fill time; balances may have moved since the
// order was parked.
func (m *Manager) Approve(ctx context.Context, id string) (Result, error) {
	order, found, err := m.store.TakePending(ctx, id)
	if err != nil {
		return Result{Status: StatusFailed, Detail: err.Error()}, err
	}
	if !found {
		return Result{Status: StatusFailed, Detail: ErrUnknownOrder.Error()}, ErrUnknownOrder
	}

	logger.Info(ctx, "Order approved", "order_id", id, "symbol", order.Symbol)
	return m.Execute(ctx, order.TradeProposal, true)
}

// Reject drops the order from the queue without trading.
func (m *Manager) Reject(ctx context.Context, id string) (Result, error) {
	order, found, err := m.store.TakePending(ctx, id)
	if err != nil {
		return Result{Status: StatusFailed, Detail: err.Error()}, err
	}
	if !found {
		return Result{Status: StatusFailed, Detail: ErrUnknownOrder.Error()}, ErrUnknownOrder
	}

	logger.Info(ctx, "Order rejected", "order_id", id, "symbol", order.Symbol)
	_ = m.notifier.Notify(ctx, fmt.Sprintf("*Rejected* %s %s x%d", order.Side, order.Symbol, order.Quantity))

	return Result{Status: StatusRejected, OrderID: id}, nil
}

// holdings returns the net quantity currently held for a symbol.
func (m *Manager) holdings(ctx context.Context, symbol string) (int, error) {
	entries, err := m.store.Ledger(ctx)
	if err != nil {
		return 0, err
	}

	held := 0
	for _, e := range entries {
		if e.Symbol != symbol {
			continue
		}
		switch e.Action {
		case types.Buy:
			held += e.Quantity
		case types.Sell:
			held -= e.Quantity
		}
	}
	return held, nil
}
