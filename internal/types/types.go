package types

import "time"

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Bar is one period of OHLCV history. Sequences are chronological with
// unique dates and are treated as read-only by everything downstream.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// TradeProposal is an actionable trade produced by the scanner or the exit
// monitor. Immutable once created.
type TradeProposal struct {
	Symbol   string   `json:"symbol"`
	Side     Side     `json:"side"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
	StopLoss float64  `json:"stop_loss"`
	Target   float64  `json:"target"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons,omitempty"`
}

// PendingOrder is a proposal parked for human approval. Exactly one pending
// order exists per id; ids are never reused.
type PendingOrder struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"` // always StatusWaitingApproval while stored
	TradeProposal
}

const StatusWaitingApproval = "WAITING_APPROVAL"

// LedgerEntry is one executed paper trade. Append-only: entries are never
// mutated or deleted after creation.
type LedgerEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Symbol     string    `json:"symbol"`
	Action     Side      `json:"action"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	TotalValue float64   `json:"total_value"`
	StopLoss   float64   `json:"stop_loss"`
	Target     float64   `json:"target"`
	Status     string    `json:"status"` // LedgerOpen or LedgerClosed
}

const (
	LedgerOpen   = "OPEN"
	LedgerClosed = "CLOSED"
)

// Balance is the paper account. TotalEquity == CurrentCash + PortfolioValue
// after every update.
type Balance struct {
	InitialBalance float64 `json:"initial_balance"`
	CurrentCash    float64 `json:"current_cash"`
	PortfolioValue float64 `json:"portfolio_value"`
	TotalEquity    float64 `json:"total_equity"`
}

// Position is derived from the ledger, never stored. A symbol is open iff
// Quantity > 0.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     int     `json:"quantity"`
	LastBuyPrice float64 `json:"last_buy_price"`
}
