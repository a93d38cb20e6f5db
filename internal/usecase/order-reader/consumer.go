package orderreader

import (
	"context"
	"encoding/json"

	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
	orderreaderv1 "github.com/muhammadchandra19/market-sim/internal/domain/order-reader/v1"
	"github.com/muhammadchandra19/market-sim/pkg/config"
	"github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Reader consumes order submissions from the order topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      *logger.Logger
}

var _ orderreaderv1.OrderReader = (*Reader)(nil)

// NewReader creates a consumer-group reader on the configured order topic.
func NewReader(cfg config.KafkaConfig, log *logger.Logger) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.OrderTopic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log.WithFields(logger.Field{Key: "component", Value: "order-reader"}),
	}
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err, logger.Field{Key: "operation", Value: operation})
}

// ReadMessage fetches the next message without committing it and decodes the order.
func (r *Reader) ReadMessage(ctx context.Context) (kafka.Message, marketv1.OrderInput, error) {
	msg, err := r.kafkaReader.FetchMessage(ctx)
	if err != nil {
		r.logError(err, "FetchMessage")
		return kafka.Message{}, marketv1.OrderInput{}, err
	}

	input, err := DecodeOrder(msg.Value)
	if err != nil {
		r.logError(err, "DecodeOrder")
		return msg, marketv1.OrderInput{}, err
	}

	r.logger.Debug("ReadMessage",
		logger.Field{Key: "offset", Value: msg.Offset},
		logger.Field{Key: "symbol", Value: input.Symbol},
		logger.Field{Key: "price", Value: input.Price},
		logger.Field{Key: "quantity", Value: input.Quantity},
		logger.Field{Key: "type", Value: input.Side},
	)

	return msg, input, nil
}

// DecodeOrder parses a JSON order submission.
func DecodeOrder(value []byte) (marketv1.OrderInput, error) {
	var input marketv1.OrderInput
	if err := json.Unmarshal(value, &input); err != nil {
		return marketv1.OrderInput{}, errors.NewTracer(string(errors.OrderDecodeError)).Wrap(err)
	}
	return input, nil
}

// CommitMessages commits the messages to Kafka after processing.
func (r *Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := r.kafkaReader.CommitMessages(ctx, msgs...); err != nil {
		r.logError(err, "CommitMessages")
		return err
	}
	return nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}
