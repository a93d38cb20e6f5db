package redis

import (
	"context"
	"testing"
	"time"

	"github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableConfig points at a local port nothing listens on.
func unreachableConfig() *Config {
	cfg := testConfig()
	cfg.Addrs = []string{"127.0.0.1:1"}
	cfg.ConnectTimeout = 200 * time.Millisecond
	cfg.MaxRetries = 0
	cfg.MinRetryBackoff = time.Millisecond
	cfg.MaxRetryBackoff = time.Millisecond
	cfg.ReconnectMaxRetries = 1
	return cfg
}

func unreachableClient() *client {
	return &client{
		logger: logger.NewNopLogger(),
		config: unreachableConfig(),
		universal: redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			MaxRetries:  -1,
			DialTimeout: 200 * time.Millisecond,
		}),
	}
}

func TestClient_CommandErrorsKeepCause(t *testing.T) {
	testCases := []struct {
		name string
		code errors.ErrorCode
		call func(c *client) error
	}{
		{
			name: "ping",
			code: errors.RedisPingError,
			call: func(c *client) error { return c.Ping(context.Background()) },
		},
		{
			name: "get",
			code: errors.RedisGetError,
			call: func(c *client) error {
				_, err := c.Get(context.Background(), "market:view:FB")
				return err
			},
		},
		{
			name: "set",
			code: errors.RedisSetError,
			call: func(c *client) error {
				return c.Set(context.Background(), "market:view:FB", "{}", 0)
			},
		},
		{
			name: "publish",
			code: errors.RedisPublishError,
			call: func(c *client) error {
				_, err := c.Publish(context.Background(), "market-events", "{}")
				return err
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := unreachableClient()
			defer c.Disconnect(context.Background())

			err := tc.call(c)
			require.Error(t, err)

			var tracer *errors.ErrorTracer
			require.ErrorAs(t, err, &tracer)
			assert.Equal(t, string(tc.code), tracer.Message)
			require.Error(t, tracer.Unwrap())
			assert.NotEqual(t, tracer.Message, err.Error())
			assert.NotEmpty(t, tracer.StackTrace())
		})
	}
}

func TestClient_CommandsBeforeConnect(t *testing.T) {
	c := NewClient(logger.NewNopLogger(), testConfig())
	ctx := context.Background()

	_, err := c.Get(ctx, "key")
	assert.True(t, errors.ErrorCodeEquals(err, errors.RedisGetError))

	err = c.Set(ctx, "key", "value", 0)
	assert.True(t, errors.ErrorCodeEquals(err, errors.RedisSetError))

	_, err = c.Publish(ctx, "channel", "message")
	assert.True(t, errors.ErrorCodeEquals(err, errors.RedisPublishError))
}

func TestClient_ConnectWrapsDialError(t *testing.T) {
	c := NewClient(logger.NewNopLogger(), unreachableConfig())
	defer c.Disconnect(context.Background())

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(errors.RedisConnectionError))
}

func TestClient_Reconnect(t *testing.T) {
	t.Run("gives up after the configured attempts", func(t *testing.T) {
		c := NewClient(logger.NewNopLogger(), unreachableConfig())
		defer c.Disconnect(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		assert.False(t, c.Reconnect(ctx))
		assert.NoError(t, ctx.Err())
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		cfg := unreachableConfig()
		cfg.ReconnectMaxRetries = 10
		c := NewClient(logger.NewNopLogger(), cfg)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.False(t, c.Reconnect(ctx))
	})
}
