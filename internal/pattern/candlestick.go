package pattern

import "equity-scanner-bot/internal/types"

// DetectCandlesticks classifies the most recent bar against the last three
// bars of history. Each pattern is checked independently, so several labels
// can co-fire on the same bar. Fewer than three bars yields no labels.
func DetectCandlesticks(bars []types.Bar) []Label {
	if len(bars) < 3 {
		return nil
	}

	c0 := bars[len(bars)-3]
	c1 := bars[len(bars)-2]
	c2 := bars[len(bars)-1]

	var found []Label

	// Two-candle reversals: today's body straddles yesterday's.
	if isRed(c1) && isGreen(c2) && c2.Close > c1.Open && c2.Open < c1.Close {
		found = append(found, BullishEngulfing)
	}
	if isGreen(c1) && isRed(c2) && c2.Open > c1.Close && c2.Close < c1.Open {
		found = append(found, BearishEngulfing)
	}

	// Single-candle wicks: dominant wick over twice the body, opposite wick
	// under half of it.
	lw := lowerWick(c2)
	uw := upperWick(c2)
	if lw > 2*body(c2) && uw < 0.5*body(c2) {
		found = append(found, Hammer)
	}
	if uw > 2*body(c2) && lw < 0.5*body(c2) {
		found = append(found, ShootingStar)
	}

	// Three-candle stars: big first body, small middle body, third close
	// crossing the first bar's midpoint.
	if isRed(c0) && isGreen(c2) && body(c0) > 2*body(c1) && c2.Close > midpoint(c0) {
		found = append(found, MorningStar)
	}
	if isGreen(c0) && isRed(c2) && body(c0) > 2*body(c1) && c2.Close < midpoint(c0) {
		found = append(found, EveningStar)
	}

	return found
}
