package eventpublisher

import (
	"context"

	eventpublisherv1 "github.com/muhammadchandra19/market-sim/internal/domain/event-publisher/v1"
	"github.com/muhammadchandra19/market-sim/pkg/config"
	"github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes market events to the event topic, keyed by symbol.
type KafkaPublisher struct {
	kafkaWriter messageWriter
	logger      *logger.Logger
}

var _ eventpublisherv1.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a new Kafka publisher for market events.
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) *KafkaPublisher {
	kafkaWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.EventTopic,
		Balancer: &kafka.Hash{},
	}

	return &KafkaPublisher{
		kafkaWriter: kafkaWriter,
		logger:      log.WithFields(logger.Field{Key: "component", Value: "kafka-publisher"}),
	}
}

// Publish writes all events in a single batch so their order is kept per symbol.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...*eventpublisherv1.MarketEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.Symbol),
			Value: eventpublisherv1.ToBytes(event),
		})
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msgs...); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "operation", Value: "WriteMessages"},
			logger.Field{Key: "events", Value: len(events)},
		)
		return errors.NewTracer(string(errors.EventPublishError)).Wrap(err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.kafkaWriter.Close()
}
