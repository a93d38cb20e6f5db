package orderreaderv1

import (
	"context"

	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
	"github.com/segmentio/kafka-go"
)

// OrderReader defines the interface for reading order submissions from a stream.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderreaderv1_mock
type OrderReader interface {
	// ReadMessage blocks for the next message and decodes it as an order submission.
	ReadMessage(ctx context.Context) (kafka.Message, marketv1.OrderInput, error)
	// CommitMessages commits the messages after they were handed to the market.
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	// Close closes the reader
	Close() error
}
