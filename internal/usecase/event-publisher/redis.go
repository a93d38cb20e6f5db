package eventpublisher

import (
	"context"

	eventpublisherv1 "github.com/muhammadchandra19/market-sim/internal/domain/event-publisher/v1"
	"github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/muhammadchandra19/market-sim/pkg/redis"
)

// RedisPublisher publishes events on a pub/sub channel and keeps the latest
// event of every symbol under "<viewKey>:<symbol>".
type RedisPublisher struct {
	client  redis.Client
	channel string
	viewKey string
	logger  *logger.Logger
}

var _ eventpublisherv1.EventPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher creates a publisher on an already connected client.
func NewRedisPublisher(client redis.Client, channel, viewKey string, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		viewKey: viewKey,
		logger:  log.WithFields(logger.Field{Key: "component", Value: "redis-publisher"}),
	}
}

// ViewKey returns the key holding the latest event of symbol.
func (p *RedisPublisher) ViewKey(symbol string) string {
	return p.viewKey + ":" + symbol
}

// View returns the latest event published for symbol, or an empty string when there is none.
func (p *RedisPublisher) View(ctx context.Context, symbol string) (string, error) {
	return p.client.Get(ctx, p.ViewKey(symbol))
}

// Publish stops at the first failing event.
func (p *RedisPublisher) Publish(ctx context.Context, events ...*eventpublisherv1.MarketEvent) error {
	for _, event := range events {
		payload := eventpublisherv1.ToBytes(event)

		receivers, err := p.client.Publish(ctx, p.channel, payload)
		if err != nil {
			p.logger.ErrorContext(ctx, err,
				logger.Field{Key: "operation", Value: "Publish"},
				logger.Field{Key: "event", Value: event.Type},
			)
			return errors.NewTracer(string(errors.EventPublishError)).Wrap(err)
		}

		if err := p.client.Set(ctx, p.ViewKey(event.Symbol), payload, 0); err != nil {
			p.logger.ErrorContext(ctx, err,
				logger.Field{Key: "operation", Value: "Set"},
				logger.Field{Key: "key", Value: p.ViewKey(event.Symbol)},
			)
			return errors.NewTracer(string(errors.EventPublishError)).Wrap(err)
		}

		p.logger.DebugContext(ctx, "event published",
			logger.Field{Key: "event", Value: event.Type},
			logger.Field{Key: "receivers", Value: receivers},
		)
	}
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (p *RedisPublisher) Close() error {
	return nil
}
