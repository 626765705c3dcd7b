package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-scanner-bot/internal/types"
)

func TestLevels(t *testing.T) {
	stop, target := Levels(100, 2, IntradayStopATR, IntradayTargetATR)
	assert.Equal(t, 97.0, stop)
	assert.Equal(t, 106.0, target)

	stop, target = Levels(512.337, 3.333, SwingStopATR, SwingTargetATR)
	assert.Equal(t, 505.67, stop)
	assert.Equal(t, 525.67, target)
}

func TestDeliveryCostsBuy(t *testing.T) {
	costs := DeliveryCosts(100, 10, types.Buy)

	require.True(t, costs.Turnover.Equal(decimal.NewFromInt(1000)))
	// 0.1% of 1000 is 1, under the 20 cap.
	assert.True(t, costs.Brokerage.Equal(decimal.NewFromInt(1)), "brokerage %s", costs.Brokerage)
	assert.True(t, costs.STT.Equal(decimal.NewFromInt(1)), "stt %s", costs.STT)
	assert.True(t, costs.StampDuty.GreaterThan(decimal.Zero), "stamp duty applies on BUY")
	assert.True(t, costs.TotalCharges.GreaterThan(decimal.Zero))

	// Break-even must sit strictly above the buy price when costs are positive.
	be, _ := costs.BreakEven.Float64()
	assert.Greater(t, be, 100.0)
}

func TestDeliveryCostsSell(t *testing.T) {
	costs := DeliveryCosts(100, 10, types.Sell)

	assert.True(t, costs.StampDuty.IsZero(), "no stamp duty on SELL")

	// Selling nets less than the raw turnover.
	be, _ := costs.BreakEven.Float64()
	assert.Less(t, be, 100.0)
}

func TestBrokerageCap(t *testing.T) {
	// 0.1% of 1000 shares at 1000 is 1000, capped at 20.
	costs := DeliveryCosts(1000, 1000, types.Buy)
	assert.True(t, costs.Brokerage.Equal(decimal.NewFromInt(20)), "brokerage %s", costs.Brokerage)
}

func TestCostsMonotonicInTurnover(t *testing.T) {
	prev := decimal.Zero
	for _, qty := range []int{1, 10, 100, 1000, 10000} {
		costs := DeliveryCosts(250, qty, types.Buy)
		require.True(t, costs.TotalCharges.GreaterThanOrEqual(prev),
			"total charges decreased at qty %d", qty)
		prev = costs.TotalCharges
	}
}

func TestCostsZeroQuantity(t *testing.T) {
	costs := DeliveryCosts(100, 0, types.Buy)
	assert.True(t, costs.BreakEven.IsZero())
	assert.True(t, costs.PointsToBreakEven.IsZero())
	assert.True(t, costs.TotalCharges.IsZero())
}
