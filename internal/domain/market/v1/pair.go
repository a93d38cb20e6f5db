package marketv1

import "time"

// MatchingPair is a transient association between one BUY and one SELL order being filled together.
type MatchingPair struct {
	BuyOrderID  string `json:"buyOrderID"`
	SellOrderID string `json:"sellOrderID"`
	Symbol      string `json:"symbol"`
	CreatedAt   int64  `json:"createdAt"`
}

// NewMatchingPair keys each order by its own side.
func NewMatchingPair(order, counter Order) MatchingPair {
	pair := MatchingPair{
		Symbol:    order.Symbol,
		CreatedAt: time.Now().UnixNano(),
	}

	if order.Side == SideBuy {
		pair.BuyOrderID, pair.SellOrderID = order.ID, counter.ID
	} else {
		pair.BuyOrderID, pair.SellOrderID = counter.ID, order.ID
	}

	return pair
}

// Fill records one unit exchanged by a pair during a tick.
type Fill struct {
	BuyOrderID    string `json:"buyOrderID"`
	SellOrderID   string `json:"sellOrderID"`
	Symbol        string `json:"symbol"`
	Quantity      int64  `json:"quantity"`
	BuyRemaining  int64  `json:"buyRemaining"`
	SellRemaining int64  `json:"sellRemaining"`
}

// TickResult describes everything one tick changed.
type TickResult struct {
	Fills     []Fill         `json:"fills"`
	Retired   []MatchingPair `json:"retired"`
	Fulfilled []Order        `json:"fulfilled"`
}

// IsEmpty reports whether the tick changed nothing.
func (r TickResult) IsEmpty() bool {
	return len(r.Fills) == 0 && len(r.Retired) == 0 && len(r.Fulfilled) == 0
}
