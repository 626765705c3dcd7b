package scanner

import (
	"context"
	"fmt"
	"math"
	"strings"

	"equity-scanner-bot/internal/indicator"
	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/risk"
	"equity-scanner-bot/internal/types"
)

// Verdicts and decisions from the deep dive.
const (
	VerdictBuy  = "BUY"
	VerdictWait = "WAIT"

	DecisionGood  = "GOOD"
	DecisionAvoid = "AVOID"
)

// Trade type classifications.
const (
	TradeMomentumBuy = "MOMENTUM BUY"
	TradePullbackBuy = "PULLBACK BUY"
	TradeBreakoutBuy = "BREAKOUT BUY"
	TradeNone        = "NO TRADE"
)

// DeepDiveReport is the full single-stock analysis. The schema is fixed:
// both targets are always populated and Error is set only when the analysis
// could not run at all.
type DeepDiveReport struct {
	Symbol             string             `json:"symbol"`
	CurrentPrice       float64            `json:"current_price"`
	Trend              string             `json:"trend"`
	MarketCondition    string             `json:"market_condition"`
	VolumeStrength     string             `json:"volume_strength"`
	AIVerdict          string             `json:"ai_verdict"`
	TradeType          string             `json:"trade_type"`
	Sentiment          string             `json:"sentiment"`
	ConfirmationScore  string             `json:"conf_score"`
	Signals            string             `json:"signals"`
	StopLoss           float64            `json:"stop_loss"`
	Target             float64            `json:"target"`
	ConservativeTarget float64            `json:"conservative_target"`
	AggressiveTarget   float64            `json:"aggressive_target"`
	RiskReward         string             `json:"risk_reward"`
	Decision           string             `json:"decision"`
	Reason             string             `json:"reason"`
	ReasoningList      []string           `json:"reasoning_list"`
	CostBreakdown      risk.CostBreakdown `json:"cost_breakdown"`
	TotalTax           float64            `json:"total_tax"`
	BreakEven          float64            `json:"break_even"`
	Error              string             `json:"error,omitempty"`
}

// Analyze runs the deep dive: trend context, six confirmation signals, risk
// levels, strategy classification and the cost sheet. Data failures come
// back in the Error field rather than as a Go error so the report schema
// stays uniform for API consumers.
func (s *Scanner) Analyze(ctx context.Context, symbol string) DeepDiveReport {
	bars, err := s.market.History(ctx, symbol)
	if err != nil {
		return DeepDiveReport{Symbol: symbol, Error: "No Data Found"}
	}

	ind, err := indicator.Compute(bars)
	if err != nil {
		return DeepDiveReport{Symbol: symbol, Error: err.Error()}
	}

	closePrice := bars[len(bars)-1].Close
	cond := marketCondition(bars, ind)

	// Trend: strong when the condition classifier fires, mild from the slow
	// EMA otherwise.
	trend := CondSideways
	emaSlow := indicator.Last(ind.EMASlow)
	switch {
	case cond == CondTrendingUp:
		trend = "STRONG UPTREND"
	case cond == CondTrendingDown:
		trend = "STRONG DOWNTREND"
	case closePrice > emaSlow:
		trend = "MILD UPTREND"
	case closePrice < emaSlow:
		trend = "MILD DOWNTREND"
	}

	rsi := indicator.Last(ind.RSI)
	prevRSI := indicator.Prev(ind.RSI, 1)
	macd := indicator.Last(ind.MACD)
	prevMACD := indicator.Prev(ind.MACD, 1)
	vwap := indicator.Last(ind.VWAP)
	obv := indicator.Last(ind.OBV)
	obvBack := indicator.Prev(ind.OBV, 4)
	adx := indicator.Last(ind.ADX)
	superTrend := indicator.Last(ind.SuperTrend)

	signals := []string{}
	if !math.IsNaN(superTrend) && closePrice > superTrend {
		signals = append(signals, "SuperTrend Bullish")
	}
	if adx > 25 {
		signals = append(signals, "Strong Momentum (ADX>25)")
	}
	if rsi > 50 && rsi > prevRSI {
		signals = append(signals, "RSI Rising")
	}
	if macd > 0 && macd > prevMACD {
		signals = append(signals, "MACD Bullish")
	}
	if !math.IsNaN(vwap) && closePrice > vwap {
		signals = append(signals, "Price > VWAP (Inst. Support)")
	}
	if obv > obvBack {
		signals = append(signals, "OBV Rising")
	}
	confScore := len(signals)

	atr := indicator.Last(ind.ATR)
	stopLoss, target := risk.Levels(closePrice, atr, s.opts.StopATR, s.opts.TargetATR)
	riskAmt := closePrice - stopLoss
	reward := target - closePrice
	rrRatio := 0.0
	if riskAmt > 0 {
		rrRatio = math.Round(reward/riskAmt*10) / 10
	}

	tradeType := TradeNone
	verdict := VerdictWait
	uptrend := strings.Contains(trend, "UPTREND")
	switch {
	case confScore >= 4 && uptrend:
		tradeType = TradeMomentumBuy
		verdict = VerdictBuy
	case confScore >= 3 && rsi < 40 && uptrend:
		tradeType = TradePullbackBuy
		verdict = VerdictBuy
	case closePrice > recentHigh(bars, 20):
		tradeType = TradeBreakoutBuy
		verdict = VerdictBuy
	}

	sentimentText := "Neutral"
	if snt, err := s.news.GetSentiment(ctx, symbol); err == nil {
		if snt.Score > sentimentCutoff {
			sentimentText = "Positive"
		} else if snt.Score < -sentimentCutoff {
			sentimentText = "Negative"
		}
	}

	decision := DecisionAvoid
	if verdict == VerdictBuy && rrRatio >= 2.0 {
		decision = DecisionGood
	}

	costs := risk.DeliveryCosts(closePrice, s.opts.CostQty, types.Buy)
	totalTax, _ := costs.TotalCharges.Float64()
	breakEven, _ := costs.BreakEven.Float64()

	logger.Verdict(ctx, symbol, confScore, signals)

	return DeepDiveReport{
		Symbol:             symbol,
		CurrentPrice:       round2(closePrice),
		Trend:              trend,
		MarketCondition:    cond,
		VolumeStrength:     volumeStrength(bars),
		AIVerdict:          verdict,
		TradeType:          tradeType,
		Sentiment:          sentimentText,
		ConfirmationScore:  fmt.Sprintf("%d/6 Indicators", confScore),
		Signals:            strings.Join(signals, ", "),
		StopLoss:           stopLoss,
		Target:             target,
		ConservativeTarget: round2(closePrice + s.opts.StopATR*atr),
		AggressiveTarget:   round2(closePrice + s.opts.TargetATR*atr),
		RiskReward:         fmt.Sprintf("1:%.1f (Risk %.1f)", rrRatio, riskAmt),
		Decision:           decision,
		Reason:             fmt.Sprintf("Signals: %d confirmed. %s. RR: %.1f", confScore, cond, rrRatio),
		ReasoningList:      signals,
		CostBreakdown:      costs,
		TotalTax:           totalTax,
		BreakEven:          breakEven,
	}
}

// recentHigh is the highest high over the last window bars excluding today.
func recentHigh(bars []types.Bar, window int) float64 {
	if len(bars) < 2 {
		return math.Inf(1)
	}
	start := len(bars) - 1 - window
	if start < 0 {
		start = 0
	}
	high := bars[start].High
	for _, b := range bars[start : len(bars)-1] {
		if b.High > high {
			high = b.High
		}
	}
	return high
}

func volumeStrength(bars []types.Bar) string {
	if len(bars) == 0 {
		return "Normal"
	}
	var sum float64
	for _, b := range bars {
		sum += b.Volume
	}
	if bars[len(bars)-1].Volume > sum/float64(len(bars)) {
		return "High"
	}
	return "Normal"
}
