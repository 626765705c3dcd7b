package indicator

import "math"

// superTrendState carries the prior bar's final bands and direction. The
// recurrence cannot be vectorized: each bar's bands depend on the previous
// bar's, so the series is produced by a single left-to-right scan.
type superTrendState struct {
	upper float64
	lower float64
	up    bool
}

// superTrendStep advances the recurrence by one bar. basicUpper/basicLower
// are the unadjusted hl2 +/- mult*ATR bands for the current bar.
func superTrendStep(prev superTrendState, close, basicUpper, basicLower float64) superTrendState {
	next := superTrendState{upper: basicUpper, lower: basicLower}

	switch {
	case close > prev.upper:
		next.up = true
	case close < prev.lower:
		next.up = false
	default:
		next.up = prev.up
		// The active band only tightens while the trend persists.
		if next.up && basicLower < prev.lower {
			next.lower = prev.lower
		}
		if !next.up && basicUpper > prev.upper {
			next.upper = prev.upper
		}
	}
	return next
}

// SuperTrend computes the trailing-band trend indicator. The value rides the
// lower band in an uptrend and the upper band in a downtrend; direction
// defaults to up until the ATR window is satisfied.
func SuperTrend(highs, lows, closes []float64, period int, mult float64) (values []float64, up []bool) {
	n := len(closes)
	values = make([]float64, n)
	up = make([]bool, n)
	nanPrefix(values, n)
	for i := range up {
		up[i] = true
	}
	if n == 0 {
		return values, up
	}

	atr := ATR(highs, lows, closes, period)

	state := superTrendState{upper: math.NaN(), lower: math.NaN(), up: true}
	for i := 1; i < n; i++ {
		hl2 := (highs[i] + lows[i]) / 2
		basicUpper := hl2 + mult*atr[i]
		basicLower := hl2 - mult*atr[i]

		state = superTrendStep(state, closes[i], basicUpper, basicLower)
		up[i] = state.up
		if state.up {
			values[i] = state.lower
		} else {
			values[i] = state.upper
		}
	}
	return values, up
}
