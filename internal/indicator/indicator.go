// Package indicator computes full-series technical indicators over a bar
// history. Every series is aligned with the input: index i holds the value
// for bars[i], and every index before an indicator's minimum lookback is
// math.NaN, never zero.
package indicator

import (
	"errors"
	"math"

	"equity-scanner-bot/internal/types"
)

// Fixed windows. These are part of the scoring contract, not tunables.
const (
	RSIPeriod        = 14
	EMAFastPeriod    = 8
	EMASlowPeriod    = 21
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	ATRPeriod        = 14
	BollingerPeriod  = 20
	BollingerStdDev  = 2.0
	ADXPeriod        = 14
	StochPeriod      = 14
	StochSmooth      = 3
	VWAPPeriod       = 20
	SuperTrendPeriod = 10
	SuperTrendMult   = 3.0
)

var ErrNoBars = errors.New("no bars provided")

// Set holds every derived series for one bar history.
type Set struct {
	RSI        []float64
	EMAFast    []float64
	EMASlow    []float64
	MACD       []float64
	MACDSignal []float64
	ATR        []float64
	BBHigh     []float64
	BBLow      []float64
	ADX        []float64
	StochK     []float64
	VWAP       []float64
	OBV        []float64

	// SuperTrend value and direction (true = uptrend). Direction defaults
	// to true until the first band is defined.
	SuperTrend   []float64
	SuperTrendUp []bool
}

// Compute derives the full indicator set. Pure function of the input: no
// I/O, deterministic, input never mutated.
func Compute(bars []types.Bar) (*Set, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	vols := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		vols[i] = b.Volume
	}

	s := &Set{
		RSI:     RSI(closes, RSIPeriod),
		EMAFast: EMA(closes, EMAFastPeriod),
		EMASlow: EMA(closes, EMASlowPeriod),
		ATR:     ATR(highs, lows, closes, ATRPeriod),
		ADX:     ADX(highs, lows, closes, ADXPeriod),
		StochK:  StochasticK(highs, lows, closes, StochPeriod, StochSmooth),
		VWAP:    RollingVWAP(closes, vols, VWAPPeriod),
		OBV:     OBV(closes, vols),
	}
	s.MACD, s.MACDSignal = MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	s.BBHigh, s.BBLow = Bollinger(closes, BollingerPeriod, BollingerStdDev)
	s.SuperTrend, s.SuperTrendUp = SuperTrend(highs, lows, closes, SuperTrendPeriod, SuperTrendMult)

	return s, nil
}

// Last returns the final value of a series, or NaN for an empty series.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// Prev returns the value n positions before the end, or NaN when the series
// is too short.
func Prev(series []float64, n int) float64 {
	if len(series) <= n {
		return math.NaN()
	}
	return series[len(series)-1-n]
}

func nanPrefix(out []float64, n int) {
	for i := 0; i < n && i < len(out); i++ {
		out[i] = math.NaN()
	}
}

// SMA computes the simple moving average series.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	nanPrefix(out, len(out))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average series, seeded with the SMA
// of the first period values.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	nanPrefix(out, len(out))
	if period <= 0 || len(values) < period {
		return out
	}
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	out[period-1] = seed / float64(period)
	mult := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*mult + out[i-1]
	}
	return out
}

// RSI computes the Wilder-smoothed Relative Strength Index.
func RSI(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	nanPrefix(out, len(out))
	if period <= 0 || len(values) < period+1 {
		return out
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gain += change
		} else {
			loss += -change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss = 0, 0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACD returns the MACD line (fast EMA - slow EMA) and its signal line.
func MACD(values []float64, fast, slow, signal int) (macd, signalLine []float64) {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)

	macd = make([]float64, len(values))
	for i := range values {
		if math.IsNaN(emaFast[i]) || math.IsNaN(emaSlow[i]) {
			macd[i] = math.NaN()
		} else {
			macd[i] = emaFast[i] - emaSlow[i]
		}
	}

	// The signal line is an EMA over the defined region of the MACD line.
	signalLine = make([]float64, len(values))
	nanPrefix(signalLine, len(signalLine))
	start := firstDefined(macd)
	if start < 0 || len(macd)-start < signal {
		return macd, signalLine
	}
	sub := EMA(macd[start:], signal)
	copy(signalLine[start:], sub)
	return macd, signalLine
}

func firstDefined(series []float64) int {
	for i, v := range series {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// ATR computes the Wilder-smoothed Average True Range.
func ATR(highs, lows, closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	nanPrefix(out, len(out))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	tr := trueRanges(highs, lows, closes)

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	out[period] = sum / float64(period)
	for i := period + 1; i < len(closes); i++ {
		out[i] = (out[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return out
}

// trueRanges returns the per-bar true range; index 0 is the plain high-low
// range since there is no prior close.
func trueRanges(highs, lows, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	if len(closes) == 0 {
		return tr
	}
	tr[0] = highs[0] - lows[0]
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// Bollinger returns the upper and lower bands: SMA(period) +/- k population
// standard deviations.
func Bollinger(values []float64, period int, k float64) (high, low []float64) {
	high = make([]float64, len(values))
	low = make([]float64, len(values))
	nanPrefix(high, len(high))
	nanPrefix(low, len(low))
	if period <= 0 {
		return high, low
	}
	mid := SMA(values, period)
	for i := period - 1; i < len(values); i++ {
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mid[i]
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		high[i] = mid[i] + k*sd
		low[i] = mid[i] - k*sd
	}
	return high, low
}

// ADX computes the Average Directional Index with Wilder smoothing. Values
// are defined from index 2*period onward.
func ADX(highs, lows, closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	nanPrefix(out, len(out))
	if period <= 0 || len(closes) < 2*period+1 {
		return out
	}

	tr := trueRanges(highs, lows, closes)
	plusDM := make([]float64, len(closes))
	minusDM := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// Wilder-smoothed running sums, seeded over the first period bars.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := make([]float64, len(closes))
	nanPrefix(dx, len(dx))
	dx[period] = dxValue(smPlus, smMinus, smTR)
	for i := period + 1; i < len(closes); i++ {
		smTR = smTR - smTR/float64(period) + tr[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		dx[i] = dxValue(smPlus, smMinus, smTR)
	}

	sum := 0.0
	for i := period + 1; i <= 2*period; i++ {
		sum += dx[i]
	}
	out[2*period] = sum / float64(period)
	for i := 2*period + 1; i < len(closes); i++ {
		out[i] = (out[i-1]*float64(period-1) + dx[i]) / float64(period)
	}
	return out
}

func dxValue(smPlus, smMinus, smTR float64) float64 {
	if smTR == 0 {
		return 0
	}
	plusDI := 100 * smPlus / smTR
	minusDI := 100 * smMinus / smTR
	if plusDI+minusDI == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
}

// StochasticK computes the %K line of the stochastic oscillator: the raw
// 14-bar stochastic smoothed with a 3-bar SMA.
func StochasticK(highs, lows, closes []float64, period, smooth int) []float64 {
	out := make([]float64, len(closes))
	nanPrefix(out, len(out))
	if period <= 0 || smooth <= 0 || len(closes) < period+smooth-1 {
		return out
	}

	raw := make([]float64, len(closes))
	nanPrefix(raw, len(raw))
	for i := period - 1; i < len(closes); i++ {
		lowest := lows[i]
		highest := highs[i]
		for j := i - period + 1; j < i; j++ {
			lowest = math.Min(lowest, lows[j])
			highest = math.Max(highest, highs[j])
		}
		if highest == lowest {
			raw[i] = 50 // no range, park at the midline
		} else {
			raw[i] = 100 * (closes[i] - lowest) / (highest - lowest)
		}
	}

	for i := period + smooth - 2; i < len(closes); i++ {
		sum := 0.0
		for j := i - smooth + 1; j <= i; j++ {
			sum += raw[j]
		}
		out[i] = sum / float64(smooth)
	}
	return out
}

// RollingVWAP computes the rolling volume-weighted average price. This is a
// windowed VWAP rather than the session-anchored variant, which has no
// meaning on daily bars.
func RollingVWAP(closes, vols []float64, period int) []float64 {
	out := make([]float64, len(closes))
	nanPrefix(out, len(out))
	if period <= 0 || len(closes) < period {
		return out
	}
	var sumPV, sumV float64
	for i := range closes {
		sumPV += closes[i] * vols[i]
		sumV += vols[i]
		if i >= period {
			sumPV -= closes[i-period] * vols[i-period]
			sumV -= vols[i-period]
		}
		if i >= period-1 {
			if sumV == 0 {
				out[i] = math.NaN()
			} else {
				out[i] = sumPV / sumV
			}
		}
	}
	return out
}

// OBV computes On-Balance Volume, cumulative from the first bar.
func OBV(closes, vols []float64) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	out[0] = vols[0]
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + vols[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - vols[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}
