package marketv1

import (
	"strings"
	"time"

	"github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/oklog/ulid/v2"
)

// Side is the direction of an order. It is serialized as "type".
type Side string

const (
	// SideBuy represents a buy order.
	SideBuy Side = "BUY"
	// SideSell represents a sell order.
	SideSell Side = "SELL"
)

// Opposite returns the counter side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// IsValid reports whether s is BUY or SELL.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// Status is the lifecycle state of an order.
type Status string

const (
	// StatusOpen marks an order eligible for matching.
	StatusOpen Status = "OPEN"
	// StatusFulfilled marks an order whose quantity reached zero through matching.
	StatusFulfilled Status = "FULFILLED"
	// StatusCancelled is representable (seeded history) but never produced by the market.
	StatusCancelled Status = "CANCELLED"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusFulfilled || s == StatusCancelled
}

// Order represents a single order in the market.
type Order struct {
	ID        string  `json:"id"`
	Sequence  int64   `json:"sequence"` // 1-based position in the order list
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	Side      Side    `json:"type"`
	Status    Status  `json:"status"`
	Timestamp int64   `json:"timestamp"`
}

// OrderInput is what a caller submits. Status is always OPEN on submission.
type OrderInput struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Side     Side    `json:"type"`
}

// NewOrder creates an OPEN order from input with a fresh ULID.
func NewOrder(input OrderInput, sequence int64) *Order {
	return &Order{
		ID:        ulid.Make().String(),
		Sequence:  sequence,
		Symbol:    input.Symbol,
		Price:     input.Price,
		Quantity:  input.Quantity,
		Side:      input.Side,
		Status:    StatusOpen,
		Timestamp: time.Now().UnixNano(),
	}
}

// Validate reports every invalid field at once. The market itself assumes valid input.
func (in OrderInput) Validate() error {
	base := errors.NewBaseError()

	if strings.TrimSpace(in.Symbol) == "" {
		base.AddErrorDetails(errors.NewErrorDetails("symbol is required", string(errors.InvalidOrderSymbol), "symbol"))
	}
	if in.Price <= 0 {
		base.AddErrorDetails(errors.NewErrorDetails("price must be greater than zero", string(errors.InvalidOrderPrice), "price"))
	}
	if in.Quantity < 0 {
		base.AddErrorDetails(errors.NewErrorDetails("quantity must not be negative", string(errors.InvalidOrderQuantity), "quantity"))
	}
	if !in.Side.IsValid() {
		base.AddErrorDetails(errors.NewErrorDetails("type must be BUY or SELL", string(errors.InvalidOrderType), "type"))
	}

	if base.HasDetails() {
		return base
	}
	return nil
}

// IsOpen reports whether the order can still be matched.
func (o *Order) IsOpen() bool {
	return o.Status == StatusOpen
}

// IsFilled checks if the order quantity is exhausted.
func (o *Order) IsFilled() bool {
	return o.Quantity == 0
}

// Fulfill moves an OPEN order to FULFILLED and reports whether the status changed.
// Any other status is left untouched.
func (o *Order) Fulfill() bool {
	if o.Status != StatusOpen {
		return false
	}
	o.Status = StatusFulfilled
	return true
}
