package marketv1

// Market defines the order matching core driven by an engine.
// Implementations are not safe for concurrent use; the caller serializes access.
type Market interface {
	Submit(input OrderInput) (Order, *MatchingPair)
	EvaluateMatch(order Order) (MatchingPair, bool)
	Tick() TickResult
	BestOffer() (Order, bool)
	Orders() []Order
	Order(id string) (Order, bool)
	Pairs() []MatchingPair
	Seed(input OrderInput, status Status) Order
}
