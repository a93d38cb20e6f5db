package errors

import (
	"errors"
	"strings"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// InvalidOrderSymbol is returned when an order carries an empty symbol.
	InvalidOrderSymbol ErrorCode = "invalid_order_symbol"
	// InvalidOrderPrice is returned when an order price is not strictly positive.
	InvalidOrderPrice ErrorCode = "invalid_order_price"
	// InvalidOrderQuantity is returned when an order quantity is negative.
	InvalidOrderQuantity ErrorCode = "invalid_order_quantity"
	// InvalidOrderType is returned when an order is neither BUY nor SELL.
	InvalidOrderType ErrorCode = "invalid_order_type"
	// OrderNotFound is returned when an order id is unknown to the market.
	OrderNotFound ErrorCode = "order_not_found"

	// EventPublishError represents a failure to hand market events to a sink.
	EventPublishError ErrorCode = "event_publish_error"
	// OrderDecodeError represents an intake message that is not a valid order.
	OrderDecodeError ErrorCode = "order_decode_error"
	// KafkaConfigError represents a Kafka setting the service cannot run with.
	KafkaConfigError ErrorCode = "kafka_config_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisPublishError represents an error when publishing messages to channels in Redis.
	RedisPublishError ErrorCode = "redis_publish_error"
)

// BaseError is an `error` type containing an array of ErrorDetails.
type BaseError struct {
	details []*ErrorDetails
}

// NewBaseError create BaseError with ErrorDetails
func NewBaseError(details ...*ErrorDetails) *BaseError {
	return &BaseError{details: details}
}

// AddErrorDetails add more ErrorDetails to BaseError
func (b *BaseError) AddErrorDetails(errors ...*ErrorDetails) {
	b.details = append(b.details, errors...)
}

// GetDetails get array ErrorDetails on BaseError
func (b *BaseError) GetDetails() []*ErrorDetails {
	return b.details
}

// HasDetails reports whether at least one ErrorDetails was collected.
func (b *BaseError) HasDetails() bool {
	return len(b.details) > 0
}

// Error implement error interface
func (b *BaseError) Error() string {
	var sb strings.Builder

	sb.WriteString("Error on\n")
	for _, err := range b.details {
		sb.WriteString("code: ")
		sb.WriteString(err.Code)
		sb.WriteString("; error: ")
		sb.WriteString(err.Error())
		sb.WriteString("; field: ")
		sb.WriteString(err.Field)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}

// Fields maps every failing field to its message. Details without a field are keyed by code.
func (b *BaseError) Fields() map[string]string {
	out := make(map[string]string, len(b.details))
	for _, d := range b.details {
		key := d.Field
		if key == "" {
			key = d.Code
		}
		out[key] = d.Message
	}
	return out
}

// IsAnyCodeEqual check if any ErrorDetails code is equal with given code
func (b *BaseError) IsAnyCodeEqual(code ErrorCode) bool {
	for _, d := range b.GetDetails() {
		if d.Code == string(code) {
			return true
		}
	}
	return false
}

// AsBaseError unwraps err into a *BaseError when the chain holds one.
func AsBaseError(err error) (*BaseError, bool) {
	var base *BaseError
	if errors.As(err, &base) {
		return base, true
	}
	return nil, false
}
