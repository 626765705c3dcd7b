package portfolio

import (
	"context"

	"equity-scanner-bot/internal/executor"
	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/marketdata"
	"equity-scanner-bot/internal/store"
	"equity-scanner-bot/internal/types"
)

// Exit actions reported per position.
const (
	ActionSold = "SOLD"
	ActionHold = "HOLD"
)

// Exit reasons.
const (
	ReasonTargetHit   = "Target Hit"
	ReasonStopLossHit = "Stop Loss Hit"
)

// ExitReport records what the monitor did with one open position.
type ExitReport struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Action    string  `json:"action"`
	Reason    string  `json:"reason,omitempty"`
}

// ExitMonitor closes open positions when price moves outside the configured
// bands around the last buy.
type ExitMonitor struct {
	store     store.Store
	market    marketdata.Provider
	exec      *executor.Manager
	targetPct float64
	stopPct   float64
}

// NewExitMonitor creates a monitor selling at +targetPct or -stopPct from
// the last buy price.
func NewExitMonitor(st store.Store, market marketdata.Provider, exec *executor.Manager, targetPct, stopPct float64) *ExitMonitor {
	return &ExitMonitor{
		store:     st,
		market:    market,
		exec:      exec,
		targetPct: targetPct,
		stopPct:   stopPct,
	}
}

// ScanAndClose walks every open position, checks the live price against the
// bands and sells breaches immediately. Exit sells bypass the approval
// queue; a stale stop is worse than an unreviewed close. Positions whose
// price cannot be fetched are skipped, not treated as holds.
func (em *ExitMonitor) ScanAndClose(ctx context.Context) ([]ExitReport, error) {
	entries, err := em.store.Ledger(ctx)
	if err != nil {
		return nil, err
	}

	reports := []ExitReport{}
	for _, pos := range OpenPositions(entries) {
		price, err := em.market.LatestPrice(ctx, pos.Symbol)
		if err != nil {
			logger.Warn(ctx, "Skipping exit check, price unavailable", "symbol", pos.Symbol, "error", err.Error())
			continue
		}
		if pos.LastBuyPrice <= 0 {
			continue
		}

		changePct := (price - pos.LastBuyPrice) / pos.LastBuyPrice * 100

		report := ExitReport{
			Symbol:    pos.Symbol,
			Price:     price,
			ChangePct: changePct,
			Action:    ActionHold,
		}

		switch {
		case changePct >= em.targetPct:
			report.Reason = ReasonTargetHit
		case changePct <= -em.stopPct:
			report.Reason = ReasonStopLossHit
		}

		if report.Reason != "" {
			logger.Risk(ctx, pos.Symbol, report.Reason)
			_, err := em.exec.Execute(ctx, types.TradeProposal{
				Symbol:   pos.Symbol,
				Side:     types.Sell,
				Quantity: pos.Quantity,
				Price:    price,
			}, true)
			if err != nil {
				logger.ErrorWithErr(ctx, "Exit sell failed", err, "symbol", pos.Symbol)
			} else {
				report.Action = ActionSold
			}
		}

		reports = append(reports, report)
	}
	return reports, nil
}
