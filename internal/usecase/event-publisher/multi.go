package eventpublisher

import (
	"context"

	eventpublisherv1 "github.com/muhammadchandra19/market-sim/internal/domain/event-publisher/v1"
	"go.uber.org/multierr"
)

// MultiPublisher fans events out to every publisher. One failing sink does not
// prevent delivery to the others.
type MultiPublisher struct {
	publishers []eventpublisherv1.EventPublisher
}

var _ eventpublisherv1.EventPublisher = (*MultiPublisher)(nil)

// NewMultiPublisher creates a fan-out publisher.
func NewMultiPublisher(publishers ...eventpublisherv1.EventPublisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

// Publish returns the combined error of all failing publishers.
func (m *MultiPublisher) Publish(ctx context.Context, events ...*eventpublisherv1.MarketEvent) error {
	var err error
	for _, p := range m.publishers {
		err = multierr.Append(err, p.Publish(ctx, events...))
	}
	return err
}

// Close closes every publisher.
func (m *MultiPublisher) Close() error {
	var err error
	for _, p := range m.publishers {
		err = multierr.Append(err, p.Close())
	}
	return err
}

// Len returns the number of sinks.
func (m *MultiPublisher) Len() int {
	return len(m.publishers)
}

// NopPublisher drops every event.
type NopPublisher struct{}

var _ eventpublisherv1.EventPublisher = NopPublisher{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, ...*eventpublisherv1.MarketEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
