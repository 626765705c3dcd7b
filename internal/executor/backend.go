package executor

import (
	"context"
	"fmt"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/types"
)

// Backend places orders with a real broker. Paper mode never touches one.
type Backend interface {
	PlaceOrder(ctx context.Context, symbol string, side types.Side, qty int) (orderID string, err error)
}

// Kite routes orders to Zerodha as NSE delivery market orders.
type Kite struct {
	kc *kiteconnect.Client
}

// NewKite creates a broker backend from API credentials.
func NewKite(apiKey, accessToken string) *Kite {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &Kite{kc: kc}
}

func (k *Kite) PlaceOrder(ctx context.Context, symbol string, side types.Side, qty int) (string, error) {
	params := kiteconnect.OrderParams{
		Exchange:        "NSE",
		Tradingsymbol:   symbol,
		TransactionType: string(side),
		Quantity:        qty,
		Product:         kiteconnect.ProductCNC,
		OrderType:       kiteconnect.OrderTypeMarket,
		Validity:        kiteconnect.ValidityDay,
	}

	resp, err := k.kc.PlaceOrder(kiteconnect.VarietyRegular, params)
	if err != nil {
		return "", fmt.Errorf("broker order failed: %w", err)
	}

	logger.Info(ctx, "Broker order placed", "order_id", resp.OrderID, "symbol", symbol, "side", string(side), "qty", qty)
	return resp.OrderID, nil
}
