// Package portfolio derives open positions from the ledger and watches them
// for exit conditions.
package portfolio

import (
	"equity-scanner-bot/internal/types"
)

// OpenPositions folds the ledger into net holdings per symbol, in the order
// symbols first appear. Fully closed positions drop out; LastBuyPrice is
// the most recent buy, which anchors the exit bands.
func OpenPositions(entries []types.LedgerEntry) []types.Position {
	index := make(map[string]int)
	positions := []types.Position{}

	for _, e := range entries {
		i, seen := index[e.Symbol]
		if !seen {
			index[e.Symbol] = len(positions)
			i = len(positions)
			positions = append(positions, types.Position{Symbol: e.Symbol})
		}

		switch e.Action {
		case types.Buy:
			positions[i].Quantity += e.Quantity
			positions[i].LastBuyPrice = e.Price
		case types.Sell:
			positions[i].Quantity -= e.Quantity
		}
	}

	open := positions[:0]
	for _, p := range positions {
		if p.Quantity > 0 {
			open = append(open, p)
		}
	}
	return open
}
