package indicator

import (
	"math"
	"testing"
	"time"

	"equity-scanner-bot/internal/types"
)

func barsFromCloses(closes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	now := time.Now()
	for i, c := range closes {
		bars[i] = types.Bar{
			Timestamp: now.AddDate(0, 0, i-len(closes)),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestComputeEmptyInput(t *testing.T) {
	if _, err := Compute(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestUndefinedBeforeWindow(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	t.Run("SMA", func(t *testing.T) {
		out := SMA(closes, 20)
		for i := 0; i < 19; i++ {
			if !math.IsNaN(out[i]) {
				t.Fatalf("SMA[%d] = %v, want NaN before window", i, out[i])
			}
		}
		if math.IsNaN(out[19]) {
			t.Fatal("SMA[19] should be defined")
		}
	})

	t.Run("RSI", func(t *testing.T) {
		out := RSI(closes, 14)
		for i := 0; i < 14; i++ {
			if !math.IsNaN(out[i]) {
				t.Fatalf("RSI[%d] = %v, want NaN before window", i, out[i])
			}
		}
		if math.IsNaN(out[14]) {
			t.Fatal("RSI[14] should be defined")
		}
	})

	t.Run("ATR", func(t *testing.T) {
		bars := barsFromCloses(closes)
		highs := make([]float64, len(bars))
		lows := make([]float64, len(bars))
		for i, b := range bars {
			highs[i] = b.High
			lows[i] = b.Low
		}
		out := ATR(highs, lows, closes, 14)
		for i := 0; i < 14; i++ {
			if !math.IsNaN(out[i]) {
				t.Fatalf("ATR[%d] = %v, want NaN before window", i, out[i])
			}
		}
		if math.IsNaN(out[14]) {
			t.Fatal("ATR[14] should be defined")
		}
	})

	t.Run("short series stays undefined", func(t *testing.T) {
		out := RSI([]float64{100, 101, 102}, 14)
		for i, v := range out {
			if !math.IsNaN(v) {
				t.Fatalf("RSI[%d] = %v on 3 bars, want NaN", i, v)
			}
		}
	})
}

func TestRSIDirection(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 200 - float64(i)
	}

	rsiUp := Last(RSI(up, 14))
	rsiDown := Last(RSI(down, 14))

	if rsiUp != 100 {
		t.Errorf("monotonic rise should pin RSI at 100, got %v", rsiUp)
	}
	if rsiDown != 0 {
		t.Errorf("monotonic fall should pin RSI at 0, got %v", rsiDown)
	}
}

func TestSMAValue(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 5)
	if got := Last(out); got != 3 {
		t.Errorf("SMA(1..5) = %v, want 3", got)
	}
}

func TestBollingerBandsBracketMean(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	high, low := Bollinger(closes, 20, 2)
	h, l := Last(high), Last(low)
	if math.IsNaN(h) || math.IsNaN(l) {
		t.Fatal("bands should be defined after 20 bars")
	}
	if h <= l {
		t.Errorf("upper band %v should exceed lower band %v", h, l)
	}
}

func TestOBVAccumulation(t *testing.T) {
	closes := []float64{10, 11, 10, 10, 12}
	vols := []float64{100, 200, 300, 400, 500}

	out := OBV(closes, vols)

	// 100, +200 up, -300 down, flat, +500 up.
	want := []float64{100, 300, 0, 0, 500}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("OBV[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRollingVWAPZeroVolume(t *testing.T) {
	closes := []float64{10, 11, 12}
	vols := []float64{0, 0, 0}
	out := RollingVWAP(closes, vols, 2)
	if !math.IsNaN(Last(out)) {
		t.Errorf("zero-volume window should yield NaN, got %v", Last(out))
	}
}

func TestStochasticFlatRange(t *testing.T) {
	closes := make([]float64, 20)
	highs := make([]float64, 20)
	lows := make([]float64, 20)
	for i := range closes {
		closes[i], highs[i], lows[i] = 100, 100, 100
	}
	out := StochasticK(highs, lows, closes, 14, 3)
	if got := Last(out); got != 50 {
		t.Errorf("flat range %%K = %v, want 50", got)
	}
}

func TestSuperTrendDirection(t *testing.T) {
	// Long rise, then a hard collapse: direction must flip to down.
	closes := make([]float64, 60)
	for i := 0; i < 40; i++ {
		closes[i] = 100 + float64(i)
	}
	for i := 40; i < 60; i++ {
		closes[i] = 140 - 10*float64(i-39)
	}
	bars := barsFromCloses(closes)
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	values, up := SuperTrend(highs, lows, closes, 10, 3)

	if !up[39] {
		t.Error("steady uptrend should hold direction up")
	}
	if up[59] {
		t.Error("collapse should flip direction down")
	}
	if math.IsNaN(values[59]) {
		t.Error("value should be defined well past the ATR window")
	}
	// Direction defaults up while the bands are still NaN.
	if !up[0] || !up[5] {
		t.Error("direction should default up before the window")
	}
}

func TestComputeAlignment(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/5)*10
	}
	set, err := Compute(barsFromCloses(closes))
	if err != nil {
		t.Fatal(err)
	}

	for name, series := range map[string][]float64{
		"RSI": set.RSI, "EMAFast": set.EMAFast, "EMASlow": set.EMASlow,
		"MACD": set.MACD, "MACDSignal": set.MACDSignal, "ATR": set.ATR,
		"BBHigh": set.BBHigh, "BBLow": set.BBLow, "ADX": set.ADX,
		"StochK": set.StochK, "VWAP": set.VWAP, "OBV": set.OBV,
		"SuperTrend": set.SuperTrend,
	} {
		if len(series) != 60 {
			t.Errorf("%s length = %d, want 60", name, len(series))
		}
	}
	if len(set.SuperTrendUp) != 60 {
		t.Errorf("SuperTrendUp length = %d, want 60", len(set.SuperTrendUp))
	}
}
