// Package scanner scores symbols on a weighted indicator checklist and
// produces ranked trade candidates. Scan covers a whole sector with
// per-symbol error isolation; Analyze is the single-stock deep dive.
package scanner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"equity-scanner-bot/internal/indicator"
	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/marketdata"
	"equity-scanner-bot/internal/news"
	"equity-scanner-bot/internal/pattern"
	"equity-scanner-bot/internal/predictor"
	"equity-scanner-bot/internal/risk"
	"equity-scanner-bot/internal/types"
)

// Signal weights. Breakouts carry the most, a SuperTrend flip is the major
// trend filter, the rest are confirmations.
const (
	weightSuperTrend = 20
	weightVWAP       = 15
	weightRSIMid     = 10
	weightRSIHot     = 5
	weightADX        = 15
	weightBreakout   = 25
	weightPrediction = 15
	weightSentiment  = 10

	sentimentCutoff = 0.2
)

// ScanEntry is one qualifying symbol in a scan report.
type ScanEntry struct {
	Symbol          string             `json:"symbol"`
	Price           float64            `json:"price"`
	Score           int                `json:"score"`
	AISays          string             `json:"ai_says"`
	Reasons         string             `json:"reasons"`
	TradeType       string             `json:"trade_type"`
	StopLoss        float64            `json:"stop_loss"`
	Target          float64            `json:"target"`
	RiskReward      string             `json:"risk_reward"`
	BreakEven       float64            `json:"break_even"`
	TotalTax        float64            `json:"total_tax"`
	CostBreakdown   risk.CostBreakdown `json:"cost_breakdown"`
	MarketCondition string             `json:"market_condition"`
	Indicators      string             `json:"indicators"`
}

// ScanResult is the ranked outcome of one sector sweep.
type ScanResult struct {
	BestPick   *ScanEntry  `json:"best_pick"`
	MarketData []ScanEntry `json:"market_data"`
}

// Options tunes the scanner.
type Options struct {
	MinScore   int     // inclusion threshold, default 60
	DefaultQty int     // proposal size, default 1
	CostQty    int     // quantity used for the cost preview, default 10
	StopATR    float64 // stop distance in ATR multiples, default 1.5
	TargetATR  float64 // target distance in ATR multiples, default 3
}

// Scanner runs the scoring pipeline over market data.
type Scanner struct {
	market marketdata.Provider
	news   news.Provider
	pred   predictor.Predictor
	opts   Options
}

// New creates a scanner. Nil news or predictor degrade to neutral signals.
func New(market marketdata.Provider, sentiment news.Provider, pred predictor.Predictor, opts Options) *Scanner {
	if sentiment == nil {
		sentiment = news.Noop{}
	}
	if pred == nil {
		pred = predictor.Noop{}
	}
	if opts.MinScore <= 0 {
		opts.MinScore = 60
	}
	if opts.DefaultQty <= 0 {
		opts.DefaultQty = 1
	}
	if opts.CostQty <= 0 {
		opts.CostQty = 10
	}
	if opts.StopATR <= 0 {
		opts.StopATR = risk.IntradayStopATR
	}
	if opts.TargetATR <= 0 {
		opts.TargetATR = risk.IntradayTargetATR
	}
	return &Scanner{market: market, news: sentiment, pred: pred, opts: opts}
}

// Scan scores every symbol and returns the ones above threshold, ranked by
// score with ties keeping scan order. A symbol that fails to fetch or
// compute is logged and skipped; it never aborts the sweep.
func (s *Scanner) Scan(ctx context.Context, symbols []string) (ScanResult, error) {
	report := []ScanEntry{}

	for _, symbol := range symbols {
		entry, ok := s.scanOne(ctx, symbol)
		if ok {
			report = append(report, entry)
		}
	}

	return rank(report), nil
}

// rank orders entries by score descending, ties keeping their scan order,
// and promotes the head to best pick.
func rank(report []ScanEntry) ScanResult {
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Score > report[j].Score
	})

	result := ScanResult{MarketData: report}
	if len(report) > 0 {
		result.BestPick = &report[0]
	}
	return result
}

func (s *Scanner) scanOne(ctx context.Context, symbol string) (ScanEntry, bool) {
	bars, err := s.market.History(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "Skipping symbol, no data", "symbol", symbol, "error", err.Error())
		return ScanEntry{}, false
	}

	ind, err := indicator.Compute(bars)
	if err != nil {
		logger.Warn(ctx, "Skipping symbol, indicators failed", "symbol", symbol, "error", err.Error())
		return ScanEntry{}, false
	}

	closePrice := bars[len(bars)-1].Close
	rsi := indicator.Last(ind.RSI)
	adx := indicator.Last(ind.ADX)
	vwap := indicator.Last(ind.VWAP)
	stUp := ind.SuperTrendUp[len(ind.SuperTrendUp)-1]

	score := 0
	reasons := []string{}

	if stUp {
		score += weightSuperTrend
		reasons = append(reasons, "SuperTrend Buy")
	}
	if !math.IsNaN(vwap) && closePrice > vwap {
		score += weightVWAP
		reasons = append(reasons, "> VWAP")
	}
	switch {
	case rsi > 50 && rsi < 70:
		score += weightRSIMid
	case rsi >= 70:
		score += weightRSIHot
		reasons = append(reasons, "Strong Momentum")
	}
	if adx > 25 {
		score += weightADX
		reasons = append(reasons, "Strong Trend")
	}
	if pattern.DetectBreakout(bars, pattern.DefaultBreakoutWindow) == pattern.BullishBreakout {
		score += weightBreakout
		reasons = append(reasons, "Breakout Detected")
	}

	// Best-effort externals: failures contribute nothing.
	if prediction, err := s.pred.Predict(ctx, symbol, bars); err == nil && prediction == 1 {
		score += weightPrediction
		reasons = append(reasons, "AI Model")
	}
	if sentiment, err := s.news.GetSentiment(ctx, symbol); err == nil {
		switch {
		case sentiment.Score >= sentimentCutoff:
			score += weightSentiment
			reasons = append(reasons, "Positive News")
		case sentiment.Score <= -sentimentCutoff:
			score -= weightSentiment
			reasons = append(reasons, "Negative News")
		}
	}

	confidence := clampScore(score)
	logger.Verdict(ctx, symbol, confidence, reasons)

	if confidence < s.opts.MinScore {
		return ScanEntry{}, false
	}

	atr := indicator.Last(ind.ATR)
	stopLoss, target := risk.Levels(closePrice, atr, s.opts.StopATR, s.opts.TargetATR)
	costs := risk.DeliveryCosts(closePrice, s.opts.CostQty, types.Buy)

	tradeType := "Swing"
	if adx > 25 {
		tradeType = "Momentum"
	}
	stColor := "Red"
	if stUp {
		stColor = "Green"
	}

	breakEven, _ := costs.BreakEven.Float64()
	totalTax, _ := costs.TotalCharges.Float64()

	return ScanEntry{
		Symbol:          symbol,
		Price:           round2(closePrice),
		Score:           confidence,
		AISays:          "BUY",
		Reasons:         strings.Join(reasons, " + "),
		TradeType:       tradeType,
		StopLoss:        stopLoss,
		Target:          target,
		RiskReward:      "1:2",
		BreakEven:       breakEven,
		TotalTax:        totalTax,
		CostBreakdown:   costs,
		MarketCondition: marketCondition(bars, ind),
		Indicators:      fmt.Sprintf("ADX:%d RSI:%d ST:%s", int(adx), int(rsi), stColor),
	}, true
}

// Proposal turns a scan entry into an order proposal of qty shares.
func (s *Scanner) Proposal(entry ScanEntry, qty int) types.TradeProposal {
	if qty <= 0 {
		qty = s.opts.DefaultQty
	}
	return types.TradeProposal{
		Symbol:   entry.Symbol,
		Side:     types.Buy,
		Quantity: qty,
		Price:    entry.Price,
		StopLoss: entry.StopLoss,
		Target:   entry.Target,
		Score:    entry.Score,
		Reasons:  strings.Split(entry.Reasons, " + "),
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Market condition labels.
const (
	CondTrendingUp   = "TRENDING UP"
	CondTrendingDown = "TRENDING DOWN"
	CondSideways     = "SIDEWAYS"
	CondChoppy       = "VOLATILE / CHOPPY"
	CondUnknown      = "UNKNOWN"
)

// marketCondition classifies trend and strength from the SMA-20/50 stack
// and ADX. Under 50 bars there is not enough context to call it.
func marketCondition(bars []types.Bar, ind *indicator.Set) string {
	if len(bars) < 50 {
		return CondUnknown
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	closePrice := closes[len(closes)-1]
	sma20 := indicator.Last(indicator.SMA(closes, 20))
	sma50 := indicator.Last(indicator.SMA(closes, 50))
	adx := indicator.Last(ind.ADX)

	if adx > 25 {
		if closePrice > sma20 && sma20 > sma50 {
			return CondTrendingUp
		}
		if closePrice < sma20 && sma20 < sma50 {
			return CondTrendingDown
		}
	}
	if adx < 20 {
		return CondSideways
	}
	return CondChoppy
}
