package eventpublisherv1

import (
	"encoding/json"
	"time"

	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
)

// EventType names what happened in the market.
type EventType string

const (
	// EventOrderSubmitted is emitted for every accepted order.
	EventOrderSubmitted EventType = "order.submitted"
	// EventPairMatched is emitted when a submitted order found a counter-order.
	EventPairMatched EventType = "pair.matched"
	// EventPairFilled is emitted for every unit exchanged on a tick.
	EventPairFilled EventType = "pair.filled"
	// EventOrderFulfilled is emitted when an order moves to FULFILLED.
	EventOrderFulfilled EventType = "order.fulfilled"
	// EventPairRetired is emitted when a pair leaves the active set.
	EventPairRetired EventType = "pair.retired"
)

// MarketEvent is the payload handed to publishers.
type MarketEvent struct {
	Type      EventType              `json:"type"`
	Symbol    string                 `json:"symbol"`
	Timestamp int64                  `json:"timestamp"`
	Order     *marketv1.Order        `json:"order,omitempty"`
	Pair      *marketv1.MatchingPair `json:"pair,omitempty"`
	Fill      *marketv1.Fill         `json:"fill,omitempty"`
}

func newEvent(eventType EventType, symbol string) *MarketEvent {
	return &MarketEvent{
		Type:      eventType,
		Symbol:    symbol,
		Timestamp: time.Now().UnixNano(),
	}
}

// SubmissionEvents builds the events of one Submit call.
func SubmissionEvents(order marketv1.Order, pair *marketv1.MatchingPair) []*MarketEvent {
	submitted := newEvent(EventOrderSubmitted, order.Symbol)
	submitted.Order = &order

	events := []*MarketEvent{submitted}
	if pair != nil {
		matched := newEvent(EventPairMatched, pair.Symbol)
		p := *pair
		matched.Pair = &p
		events = append(events, matched)
	}

	return events
}

// TickEvents builds the events of one Tick call: fills, then fulfilments, then retirements.
func TickEvents(result marketv1.TickResult) []*MarketEvent {
	events := make([]*MarketEvent, 0, len(result.Fills)+len(result.Fulfilled)+len(result.Retired))

	for i := range result.Fills {
		event := newEvent(EventPairFilled, result.Fills[i].Symbol)
		event.Fill = &result.Fills[i]
		events = append(events, event)
	}
	for i := range result.Fulfilled {
		event := newEvent(EventOrderFulfilled, result.Fulfilled[i].Symbol)
		event.Order = &result.Fulfilled[i]
		events = append(events, event)
	}
	for i := range result.Retired {
		event := newEvent(EventPairRetired, result.Retired[i].Symbol)
		event.Pair = &result.Retired[i]
		events = append(events, event)
	}

	return events
}

// ToBytes converts the event to a byte array.
func ToBytes(event *MarketEvent) []byte {
	buf, err := json.Marshal(event)
	if err != nil {
		return nil
	}

	return buf
}

// FromBytes converts a byte array to an event.
func FromBytes(data []byte) *MarketEvent {
	var event MarketEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}
