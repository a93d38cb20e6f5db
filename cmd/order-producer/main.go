package main

import (
	"context"
	"encoding/json"
	"flag"
	"math/rand"
	"os"
	"strings"
	"time"

	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// generateOrders creates count random submissions spread over symbols.
func generateOrders(rng *rand.Rand, count int, symbols []string, basePrice, priceSpread float64, maxQuantity int64) []marketv1.OrderInput {
	orders := make([]marketv1.OrderInput, count)

	for i := 0; i < count; i++ {
		side := marketv1.SideSell
		if rng.Float64() < 0.5 {
			side = marketv1.SideBuy
		}

		// Buy orders sit below the base price, sell orders above
		price := basePrice + rng.Float64()*priceSpread*0.8
		if side == marketv1.SideBuy {
			price = basePrice - rng.Float64()*priceSpread*0.8
		}
		price = float64(int(price*100)) / 100
		if price <= 0 {
			price = basePrice
		}

		orders[i] = marketv1.OrderInput{
			Symbol:   symbols[rng.Intn(len(symbols))],
			Price:    price,
			Quantity: 1 + rng.Int63n(maxQuantity),
			Side:     side,
		}
	}

	return orders
}

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "orders", "Kafka topic name")
		file        = flag.String("file", "", "JSON file with orders (optional, generates orders if not provided)")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between sending orders")
		count       = flag.Int("count", 100, "Number of orders to generate")
		symbols     = flag.String("symbols", "AAPL,GOOGL,MSFT,AMZN,TSLA,FB,NFLX,GOOG", "Symbols to pick from (comma-separated)")
		basePrice   = flag.Float64("base-price", 100, "Base price for orders")
		priceSpread = flag.Float64("price-spread", 50, "Price spread range")
		maxQuantity = flag.Int64("max-quantity", 20, "Largest generated quantity")
	)
	flag.Parse()

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	ctx := context.Background()

	var orders []marketv1.OrderInput
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Error(err, logger.Field{Key: "file", Value: *file})
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &orders); err != nil {
			log.Error(err, logger.Field{Key: "file", Value: *file})
			os.Exit(1)
		}
		log.Info("Loaded orders from file", logger.Field{Key: "count", Value: len(orders)}, logger.Field{Key: "file", Value: *file})
	} else {
		if *maxQuantity < 1 {
			*maxQuantity = 1
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		orders = generateOrders(rng, *count, strings.Split(*symbols, ","), *basePrice, *priceSpread, *maxQuantity)
		log.Info("Generated orders", logger.Field{Key: "count", Value: len(orders)})
	}

	log.Info("Sending orders",
		logger.Field{Key: "brokers", Value: *brokers},
		logger.Field{Key: "topic", Value: *topic},
		logger.Field{Key: "delay", Value: delay.String()},
	)

	sent, buys := 0, 0
	for i, order := range orders {
		orderJSON, err := json.Marshal(order)
		if err != nil {
			log.Error(err, logger.Field{Key: "index", Value: i})
			continue
		}

		msg := kafka.Message{
			Key:   []byte(order.Symbol),
			Value: orderJSON,
			Time:  time.Now(),
		}

		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Error(err, logger.Field{Key: "index", Value: i}, logger.Field{Key: "symbol", Value: order.Symbol})
			continue
		}

		sent++
		if order.Side == marketv1.SideBuy {
			buys++
		}

		if (i+1)%100 == 0 || i == len(orders)-1 {
			log.Info("Progress",
				logger.Field{Key: "sent", Value: i + 1},
				logger.Field{Key: "total", Value: len(orders)},
				logger.Field{Key: "symbol", Value: order.Symbol},
				logger.Field{Key: "type", Value: order.Side},
				logger.Field{Key: "quantity", Value: order.Quantity},
				logger.Field{Key: "price", Value: order.Price},
			)
		}

		if i < len(orders)-1 {
			time.Sleep(*delay)
		}
	}

	log.Info("Summary",
		logger.Field{Key: "total", Value: len(orders)},
		logger.Field{Key: "sent", Value: sent},
		logger.Field{Key: "buy", Value: buys},
		logger.Field{Key: "sell", Value: sent - buys},
	)
}
