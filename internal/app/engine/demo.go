package engine

import (
	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
)

// SeedOrder is a historical order loaded with a fixed status.
type SeedOrder struct {
	Input  marketv1.OrderInput
	Status marketv1.Status
}

func seed(symbol string, side marketv1.Side, price float64, quantity int64, status marketv1.Status) SeedOrder {
	return SeedOrder{
		Input: marketv1.OrderInput{
			Symbol:   symbol,
			Price:    price,
			Quantity: quantity,
			Side:     side,
		},
		Status: status,
	}
}

// DemoOrders is the order history the demo market starts with.
func DemoOrders() []SeedOrder {
	return []SeedOrder{
		seed("AAPL", marketv1.SideBuy, 100, 10, marketv1.StatusOpen),
		seed("GOOGL", marketv1.SideSell, 150, 8, marketv1.StatusFulfilled),
		seed("MSFT", marketv1.SideBuy, 75, 15, marketv1.StatusOpen),
		seed("AMZN", marketv1.SideSell, 200, 5, marketv1.StatusFulfilled),
		seed("TSLA", marketv1.SideBuy, 50, 12, marketv1.StatusFulfilled),
		seed("FB", marketv1.SideSell, 110, 10, marketv1.StatusOpen),
		seed("NFLX", marketv1.SideBuy, 90, 20, marketv1.StatusFulfilled),
		seed("GOOG", marketv1.SideSell, 120, 6, marketv1.StatusOpen),
		seed("AAPL", marketv1.SideBuy, 110, 8, marketv1.StatusFulfilled),
		seed("MSFT", marketv1.SideSell, 160, 10, marketv1.StatusOpen),
	}
}

// DemoOrder is submitted shortly after startup and pairs with the seeded FB sell.
func DemoOrder() marketv1.OrderInput {
	return marketv1.OrderInput{
		Symbol:   "FB",
		Price:    100,
		Quantity: 20,
		Side:     marketv1.SideBuy,
	}
}
