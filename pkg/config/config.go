package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/market-sim/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	env.Must(cfg, Load(cfg))
}

// Load loads the configuration from environment variables and an optional .env file.
func Load[T any](cfg T, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return env.Parse(cfg)
}

// Config holds the configuration for the application
type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogTimeKey     string        `env:"LOG_TIME_KEY" envDefault:"timestamp"`
	TickInterval   time.Duration `env:"TICK_INTERVAL" envDefault:"2s"`
	SeedDemoOrders bool          `env:"SEED_DEMO_ORDERS" envDefault:"false"`
	DemoOrderDelay time.Duration `env:"DEMO_ORDER_DELAY" envDefault:"100ms"`

	KafkaConfig `envPrefix:"KAFKA_"`
	RedisConfig `envPrefix:"REDIS_"`
}

// KafkaConfig holds the configuration for the order reader and the event writer.
type KafkaConfig struct {
	Enabled    bool     `env:"ENABLED" envDefault:"false"`
	Brokers    []string `env:"BROKERS" envDefault:"localhost:9092"`
	OrderTopic string   `env:"ORDER_TOPIC" envDefault:"orders"`
	EventTopic string   `env:"EVENT_TOPIC" envDefault:"market-events"`
	GroupID    string   `env:"GROUP_ID" envDefault:"market-sim"`
}

// RedisConfig holds the Redis connection plus the event channel and view key.
type RedisConfig struct {
	Enabled      bool   `env:"ENABLED" envDefault:"false"`
	Channel      string `env:"CHANNEL" envDefault:"market-events"`
	ViewKey      string `env:"VIEW_KEY" envDefault:"market:view"`
	redis.Config `envPrefix:""`
}
