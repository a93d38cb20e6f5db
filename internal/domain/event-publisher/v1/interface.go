package eventpublisherv1

import (
	"context"
)

// EventPublisher defines the interface for publishing market events.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=eventpublisherv1_mock
type EventPublisher interface {
	// Publish delivers events in order. Implementations must not retain the slice.
	Publish(ctx context.Context, events ...*MarketEvent) error
	// Close releases the underlying transport.
	Close() error
}
