// Package risk computes stop/target levels from volatility and the full
// Indian equity delivery cost schedule. All money math runs on decimals and
// every published figure is rounded to 2 places; downstream comparisons
// depend on that rounding, so it is part of the contract here, not a
// formatting nicety.
package risk

import (
	"math"

	"github.com/shopspring/decimal"

	"equity-scanner-bot/internal/types"
)

// ATR multiples per analysis style. Intraday keeps the stop tight at a 1:2
// risk/reward; swing gives the trade twice the room.
const (
	IntradayStopATR   = 1.5
	IntradayTargetATR = 3.0
	SwingStopATR      = 2.0
	SwingTargetATR    = 4.0
)

// Levels derives a stop-loss below and target above the close using fixed
// ATR multiples, both rounded to 2 places.
func Levels(close, atr, stopMult, targetMult float64) (stopLoss, target float64) {
	stopLoss = round2(close - stopMult*atr)
	target = round2(close + targetMult*atr)
	return stopLoss, target
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CostBreakdown itemizes the charges on one delivery trade. Every field is
// rounded to 2 decimal places.
type CostBreakdown struct {
	Turnover          decimal.Decimal `json:"turnover"`
	Brokerage         decimal.Decimal `json:"brokerage"`
	STT               decimal.Decimal `json:"stt"`
	ExchangeCharges   decimal.Decimal `json:"exchange_charges"`
	SEBICharges       decimal.Decimal `json:"sebi_charges"`
	StampDuty         decimal.Decimal `json:"stamp_duty"`
	GST               decimal.Decimal `json:"gst"`
	TotalCharges      decimal.Decimal `json:"total_charges"`
	BreakEven         decimal.Decimal `json:"net_price"`
	PointsToBreakEven decimal.Decimal `json:"points_to_breakeven"`
}

// Fee schedule for NSE equity delivery.
var (
	brokerageCap  = decimal.NewFromInt(20)                      // flat cap per order
	brokerageRate = decimal.NewFromFloat(0.001)                 // 0.1% of turnover
	sttRate       = decimal.NewFromFloat(0.001)                 // 0.1%
	exchangeRate  = decimal.NewFromFloat(0.0000345)             // 0.00345%
	sebiRate      = decimal.NewFromFloat(0.000001)              // 0.0001%
	stampRate     = decimal.NewFromFloat(0.00015)               // 0.015%, BUY only
	gstRate       = decimal.NewFromFloat(0.18)                  // on brokerage+exchange+SEBI
)

// DeliveryCosts computes the complete charge sheet and break-even price for
// a trade of qty shares at price.
func DeliveryCosts(price float64, qty int, side types.Side) CostBreakdown {
	p := decimal.NewFromFloat(price)
	q := decimal.NewFromInt(int64(qty))
	turnover := p.Mul(q)

	brokerage := decimal.Min(brokerageCap, turnover.Mul(brokerageRate))
	stt := turnover.Mul(sttRate)
	exchange := turnover.Mul(exchangeRate)
	sebi := turnover.Mul(sebiRate)

	stamp := decimal.Zero
	if side == types.Buy {
		stamp = turnover.Mul(stampRate)
	}

	gst := brokerage.Add(exchange).Add(sebi).Mul(gstRate)

	total := brokerage.Add(stt).Add(exchange).Add(sebi).Add(stamp).Add(gst)

	// Break-even: the price at which the charges are exactly offset.
	var breakEven decimal.Decimal
	if qty > 0 {
		if side == types.Buy {
			breakEven = turnover.Add(total).Div(q)
		} else {
			breakEven = turnover.Sub(total).Div(q)
		}
	}

	points := decimal.Zero
	if qty > 0 {
		points = total.Div(q)
	}

	return CostBreakdown{
		Turnover:          turnover.Round(2),
		Brokerage:         brokerage.Round(2),
		STT:               stt.Round(2),
		ExchangeCharges:   exchange.Round(2),
		SEBICharges:       sebi.Round(2),
		StampDuty:         stamp.Round(2),
		GST:               gst.Round(2),
		TotalCharges:      total.Round(2),
		BreakEven:         breakEven.Round(2),
		PointsToBreakEven: points.Round(2),
	}
}
