package util

import (
	"context"
)

type key string

const (
	requestIDKey = key("x-request-id")
	clientIPKey  = key("x-forwarded-for")
	sourceKey    = key("order-source")
)

// WithRequestID returns a context carrying id. An empty id is replaced by a freshly generated one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewRequestID()
	}

	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns request id from context
// will return empty string if not present
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithClientIP returns a context with a client ip
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns client ip from context
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// WithSource tags the context with where an order came from ("http", "kafka", "demo").
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// GetSource returns the order source stored in ctx.
func GetSource(ctx context.Context) string {
	source, _ := ctx.Value(sourceKey).(string)
	return source
}
