package pattern

import "equity-scanner-bot/internal/types"

// DefaultBreakoutWindow is the Donchian lookback used by the scanner.
const DefaultBreakoutWindow = 20

// DetectBreakout compares today's close against the prior window-bar
// high/low channel (today excluded) and requires volume above the 20-bar
// average to confirm. Histories shorter than window+1 bars yield NoSignal.
func DetectBreakout(bars []types.Bar, window int) Signal {
	if window <= 0 || len(bars) < window+1 {
		return NoSignal
	}

	today := bars[len(bars)-1]

	pastHigh := bars[len(bars)-1-window].High
	pastLow := bars[len(bars)-1-window].Low
	for _, b := range bars[len(bars)-window : len(bars)-1] {
		if b.High > pastHigh {
			pastHigh = b.High
		}
		if b.Low < pastLow {
			pastLow = b.Low
		}
	}

	avgVol := 0.0
	for _, b := range bars[len(bars)-window:] {
		avgVol += b.Volume
	}
	avgVol /= float64(window)

	switch {
	case today.Close > pastHigh && today.Volume > avgVol:
		return BullishBreakout
	case today.Close < pastLow && today.Volume > avgVol:
		return BearishBreakdown
	default:
		return NoSignal
	}
}
