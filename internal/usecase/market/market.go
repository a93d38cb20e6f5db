package market

import (
	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
)

// Market keeps an append-only order list and the pairs currently being filled.
// Orders are never removed, so their sequence is stable for the life of the market.
type Market struct {
	orders []*marketv1.Order
	byID   map[string]*marketv1.Order
	pairs  []marketv1.MatchingPair

	sequence int64
}

var _ marketv1.Market = (*Market)(nil)

// NewMarket creates an empty market.
func NewMarket() *Market {
	return &Market{
		orders: make([]*marketv1.Order, 0),
		byID:   make(map[string]*marketv1.Order),
		pairs:  make([]marketv1.MatchingPair, 0),
	}
}

// Submit appends a new OPEN order and looks for a counter-order for it.
// The returned pair is nil when nothing matched.
func (m *Market) Submit(input marketv1.OrderInput) (marketv1.Order, *marketv1.MatchingPair) {
	order := m.append(marketv1.NewOrder(input, m.nextSequence()))

	pair, ok := m.EvaluateMatch(*order)
	if !ok {
		return *order, nil
	}

	return *order, &pair
}

// Seed appends a historical order with an explicit status. No match is evaluated.
func (m *Market) Seed(input marketv1.OrderInput, status marketv1.Status) marketv1.Order {
	order := marketv1.NewOrder(input, m.nextSequence())
	order.Status = status

	return *m.append(order)
}

// EvaluateMatch pairs order with the first OPEN order of the same symbol and opposite side,
// in list order. Price plays no part.
func (m *Market) EvaluateMatch(order marketv1.Order) (marketv1.MatchingPair, bool) {
	want := order.Side.Opposite()

	for _, candidate := range m.orders {
		if candidate.IsOpen() && candidate.Symbol == order.Symbol && candidate.Side == want {
			pair := marketv1.NewMatchingPair(order, *candidate)
			m.pairs = append(m.pairs, pair)
			return pair, true
		}
	}

	return marketv1.MatchingPair{}, false
}

// Tick advances every active pair by one unit, walking pairs from last to first so that
// removals do not shift the pairs still to be visited.
func (m *Market) Tick() marketv1.TickResult {
	var result marketv1.TickResult

	for i := len(m.pairs) - 1; i >= 0; i-- {
		pair := m.pairs[i]
		buy, sell := m.byID[pair.BuyOrderID], m.byID[pair.SellOrderID]
		if buy == nil || sell == nil {
			// pair built by EvaluateMatch for an order this market never stored
			m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
			result.Retired = append(result.Retired, pair)
			continue
		}

		if !buy.IsFilled() && !sell.IsFilled() {
			buy.Quantity--
			sell.Quantity--

			result.Fills = append(result.Fills, marketv1.Fill{
				BuyOrderID:    buy.ID,
				SellOrderID:   sell.ID,
				Symbol:        pair.Symbol,
				Quantity:      1,
				BuyRemaining:  buy.Quantity,
				SellRemaining: sell.Quantity,
			})
		}

		if !buy.IsFilled() && !sell.IsFilled() {
			continue
		}

		// one side is exhausted; the other keeps whatever is left and stays OPEN
		for _, side := range []*marketv1.Order{buy, sell} {
			if side.IsFilled() && side.Fulfill() {
				result.Fulfilled = append(result.Fulfilled, *side)
			}
		}

		m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
		result.Retired = append(result.Retired, pair)
	}

	return result
}

// BestOffer returns the cheapest OPEN SELL order. On equal prices the earlier order wins.
func (m *Market) BestOffer() (marketv1.Order, bool) {
	var best *marketv1.Order

	for _, order := range m.orders {
		if order.Side != marketv1.SideSell || !order.IsOpen() {
			continue
		}
		if best == nil || order.Price < best.Price {
			best = order
		}
	}

	if best == nil {
		return marketv1.Order{}, false
	}
	return *best, true
}

// Orders returns a copy of every order in insertion order.
func (m *Market) Orders() []marketv1.Order {
	out := make([]marketv1.Order, len(m.orders))
	for i, order := range m.orders {
		out[i] = *order
	}
	return out
}

// Order looks an order up by id.
func (m *Market) Order(id string) (marketv1.Order, bool) {
	order, ok := m.byID[id]
	if !ok {
		return marketv1.Order{}, false
	}
	return *order, true
}

// Pairs returns a copy of the active pairs in creation order.
func (m *Market) Pairs() []marketv1.MatchingPair {
	out := make([]marketv1.MatchingPair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

func (m *Market) append(order *marketv1.Order) *marketv1.Order {
	m.orders = append(m.orders, order)
	m.byID[order.ID] = order
	return order
}

func (m *Market) nextSequence() int64 {
	m.sequence++
	return m.sequence
}
