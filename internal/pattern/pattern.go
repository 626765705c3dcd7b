// Package pattern detects candlestick patterns and channel breakouts from
// raw bar geometry. Detection is pure math over open/high/low/close/volume;
// short histories yield empty results, never errors.
package pattern

import (
	"math"

	"equity-scanner-bot/internal/types"
)

// Label identifies a candlestick pattern on the most recent bar.
type Label string

const (
	BullishEngulfing Label = "Bullish Engulfing"
	BearishEngulfing Label = "Bearish Engulfing"
	Hammer           Label = "Hammer"
	ShootingStar     Label = "Shooting Star"
	MorningStar      Label = "Morning Star"
	EveningStar      Label = "Evening Star"
)

// Signal is the outcome of breakout detection.
type Signal string

const (
	BullishBreakout  Signal = "Bullish Breakout"
	BearishBreakdown Signal = "Bearish Breakdown"
	NoSignal         Signal = ""
)

func body(b types.Bar) float64     { return math.Abs(b.Close - b.Open) }
func isGreen(b types.Bar) bool     { return b.Close > b.Open }
func isRed(b types.Bar) bool       { return b.Close < b.Open }
func midpoint(b types.Bar) float64 { return (b.Open + b.Close) / 2 }

func lowerWick(b types.Bar) float64 { return math.Min(b.Close, b.Open) - b.Low }
func upperWick(b types.Bar) float64 { return b.High - math.Max(b.Close, b.Open) }
