package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/muhammadchandra19/market-sim/internal/app/engine"
	"github.com/muhammadchandra19/market-sim/internal/api"
	eventpublisherv1 "github.com/muhammadchandra19/market-sim/internal/domain/event-publisher/v1"
	orderreaderv1 "github.com/muhammadchandra19/market-sim/internal/domain/order-reader/v1"
	"github.com/muhammadchandra19/market-sim/internal/metrics"
	eventpublisher "github.com/muhammadchandra19/market-sim/internal/usecase/event-publisher"
	"github.com/muhammadchandra19/market-sim/internal/usecase/market"
	orderreader "github.com/muhammadchandra19/market-sim/internal/usecase/order-reader"
	"github.com/muhammadchandra19/market-sim/pkg/config"
	"github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/muhammadchandra19/market-sim/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/muhammadchandra19/market-sim/pkg/redis"
	"github.com/muhammadchandra19/market-sim/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/segmentio/kafka-go"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	config.MustLoad(cfg)

	logger, err := logger.NewLogger(
		logger.WithLoggingLevel(logger.Level(cfg.LogLevel)),
		logger.WithTimeKey(cfg.LogTimeKey),
		logger.WithCallerTraceSkip(1),
	)
	if err != nil {
		panic(err)
	}

	log = logger
}

func main() {
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	health := healthcheck.New(2 * time.Second)

	var publishers []eventpublisherv1.EventPublisher
	var oReader orderreaderv1.OrderReader
	var views api.ViewReader

	var rclient redis.Client
	if cfg.RedisConfig.Enabled {
		rclient = redis.NewClient(log, &cfg.RedisConfig.Config)
		if err := rclient.Connect(ctx); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "connect_redis",
			})
			if !rclient.Reconnect(ctx) {
				return
			}
		}

		redisPublisher := eventpublisher.NewRedisPublisher(rclient, cfg.RedisConfig.Channel, cfg.RedisConfig.ViewKey, log)
		publishers = append(publishers, redisPublisher)
		views = redisPublisher
		health.Register("redis", rclient.Ping)
	}

	if cfg.KafkaConfig.Enabled {
		oReader = orderreader.NewReader(cfg.KafkaConfig, log)
		publishers = append(publishers, eventpublisher.NewKafkaPublisher(cfg.KafkaConfig, log))
		health.Register("kafka", kafkaProbe(cfg.KafkaConfig.Brokers))
	}

	var publisher eventpublisherv1.EventPublisher = eventpublisher.NopPublisher{}
	if len(publishers) > 0 {
		publisher = eventpublisher.NewMultiPublisher(publishers...)
	}

	engine := app.NewEngine(
		market.NewMarket(),
		oReader,
		publisher,
		m,
		log,
		cfg,
	)

	var demoTimer *time.Timer
	if cfg.SeedDemoOrders {
		engine.Seed(app.DemoOrders()...)
		demoTimer = time.AfterFunc(cfg.DemoOrderDelay, func() {
			demoCtx := util.WithSource(util.WithRequestID(ctx, ""), "demo")
			if _, _, err := engine.Submit(demoCtx, app.DemoOrder()); err != nil {
				log.ErrorContext(demoCtx, err, logger.Field{
					Key:   "action",
					Value: "submit_demo_order",
				})
			}
		})
	}

	// Start the engine
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	router := api.NewRouter(api.NewHandler(engine, views), m, registry, log)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           health.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "serve_http",
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	log.Info("Market service started successfully",
		logger.Field{Key: "addr", Value: cfg.HTTPAddr},
		logger.Field{Key: "kafka", Value: cfg.KafkaConfig.Enabled},
		logger.Field{Key: "redis", Value: cfg.RedisConfig.Enabled},
	)

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	if demoTimer != nil {
		demoTimer.Stop()
	}

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "shutdown_http",
		})
	}

	// Cancel the main context to signal shutdown
	cancel()

	// Stop the engine gracefully
	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := publisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_publisher",
		})
	}

	if rclient != nil {
		if err := rclient.Disconnect(shutdownCtx); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "close_redis_client",
			})
		}
	}

	log.Info("Market service shutdown complete")
}

// kafkaProbe dials the first reachable broker.
func kafkaProbe(brokers []string) healthcheck.Probe {
	return func(ctx context.Context) error {
		if len(brokers) == 0 {
			return errors.NewErrorDetails("No Kafka brokers configured", string(errors.KafkaConfigError), "brokers")
		}

		var err error
		for _, broker := range brokers {
			var conn *kafka.Conn
			conn, err = kafka.DialContext(ctx, "tcp", broker)
			if err == nil {
				return conn.Close()
			}
		}
		return err
	}
}
