package engine

import (
	"context"
	"sync"
	"time"

	eventpublisherv1 "github.com/muhammadchandra19/market-sim/internal/domain/event-publisher/v1"
	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
	orderreaderv1 "github.com/muhammadchandra19/market-sim/internal/domain/order-reader/v1"
	"github.com/muhammadchandra19/market-sim/internal/metrics"
	"github.com/muhammadchandra19/market-sim/pkg/config"
	"github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/muhammadchandra19/market-sim/pkg/util"
)

// Engine owns the market and drives it: submissions from the API and the intake topic,
// and the periodic fill tick. Every market operation runs under one mutex.
type Engine struct {
	// Core components
	market      marketv1.Market
	orderReader orderreaderv1.OrderReader
	publisher   eventpublisherv1.EventPublisher
	metrics     *metrics.Metrics
	logger      *logger.Logger
	config      *config.Config

	mu         sync.Mutex
	totalTicks int64
	totalFills int64

	// publish tickets are taken under mu and served in order, outside mu
	nextTicket    uint64
	publishMu     sync.Mutex
	publishTurn   *sync.Cond
	servingTicket uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	tickInterval time.Duration
	readBackoff  time.Duration
}

// Stats summarizes the engine activity.
type Stats struct {
	TotalTicks  int64 `json:"totalTicks"`
	TotalFills  int64 `json:"totalFills"`
	Orders      int   `json:"orders"`
	OpenOrders  int   `json:"openOrders"`
	ActivePairs int   `json:"activePairs"`
}

// NewEngine creates a new instance of Engine. orderReader may be nil, in which case
// orders only arrive through Submit.
func NewEngine(
	market marketv1.Market,
	orderReader orderreaderv1.OrderReader,
	publisher eventpublisherv1.EventPublisher,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	config *config.Config,
) *Engine {
	options := DefaultEngineOptions()
	if config != nil && config.TickInterval > 0 {
		options.TickInterval = config.TickInterval
	}

	return NewEngineWithOptions(market, orderReader, publisher, metrics, logger, config, options)
}

// NewEngineWithOptions creates a new engine with custom options
func NewEngineWithOptions(
	market marketv1.Market,
	orderReader orderreaderv1.OrderReader,
	publisher eventpublisherv1.EventPublisher,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	config *config.Config,
	options *Options,
) *Engine {
	e := &Engine{
		market:      market,
		orderReader: orderReader,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		config:      config,

		tickInterval: options.TickInterval,
		readBackoff:  options.ReadBackoff,
	}
	e.publishTurn = sync.NewCond(&e.publishMu)

	return e
}

// Start launches the tick loop and, when a reader is configured, the order intake loop.
func (e *Engine) Start(ctx context.Context) error {
	if e.cancel != nil {
		return errors.NewTracer("engine already started")
	}

	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go e.runTicker()

	if e.orderReader != nil {
		e.wg.Add(1)
		go e.runOrderProcessor()
	}

	e.logger.Info("Engine started",
		logger.Field{Key: "tickInterval", Value: e.tickInterval.String()},
		logger.Field{Key: "orderIntake", Value: e.orderReader != nil},
	)

	return nil
}

// Stop gracefully shuts down the engine
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine stopped gracefully", logger.Field{Key: "totalTicks", Value: e.Stats().TotalTicks})
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// Submit validates input and adds it to the market. The returned pair is nil when the
// order found no counter-order.
func (e *Engine) Submit(ctx context.Context, input marketv1.OrderInput) (marketv1.Order, *marketv1.MatchingPair, error) {
	if err := input.Validate(); err != nil {
		e.metrics.RecordRejection()
		e.logger.WarnContext(ctx, "Order rejected",
			logger.Field{Key: "symbol", Value: input.Symbol},
			logger.Field{Key: "error", Value: err.Error()},
		)
		return marketv1.Order{}, nil, err
	}

	e.mu.Lock()
	order, pair := e.market.Submit(input)
	e.updateMarketSize()
	ticket := e.takeTicket()
	e.mu.Unlock()

	e.metrics.RecordSubmission(order.Symbol, string(order.Side), pair != nil)

	fields := []logger.Field{
		{Key: "orderID", Value: order.ID},
		{Key: "symbol", Value: order.Symbol},
		{Key: "type", Value: order.Side},
		{Key: "price", Value: order.Price},
		{Key: "quantity", Value: order.Quantity},
	}
	if pair != nil {
		fields = append(fields,
			logger.Field{Key: "buyOrderID", Value: pair.BuyOrderID},
			logger.Field{Key: "sellOrderID", Value: pair.SellOrderID},
		)
		e.logger.InfoContext(ctx, "Order matched", fields...)
	} else {
		e.logger.InfoContext(ctx, "Order submitted", fields...)
	}

	e.publishInOrder(ctx, ticket, eventpublisherv1.SubmissionEvents(order, pair))

	return order, pair, nil
}

// Seed loads historical orders. Seeded orders never trigger a match.
func (e *Engine) Seed(orders ...SeedOrder) []marketv1.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	seeded := make([]marketv1.Order, 0, len(orders))
	for _, o := range orders {
		seeded = append(seeded, e.market.Seed(o.Input, o.Status))
	}
	e.updateMarketSize()

	e.logger.Info("Market seeded", logger.Field{Key: "orders", Value: len(seeded)})

	return seeded
}

// Tick runs one fill step over every active pair.
func (e *Engine) Tick(ctx context.Context) marketv1.TickResult {
	start := time.Now()

	e.mu.Lock()
	result := e.market.Tick()
	e.totalTicks++
	e.totalFills += int64(len(result.Fills))
	e.updateMarketSize()
	var ticket uint64
	if !result.IsEmpty() {
		ticket = e.takeTicket()
	}
	e.mu.Unlock()

	e.metrics.RecordTick(time.Since(start).Seconds(), len(result.Retired), len(result.Fulfilled))
	for _, fill := range result.Fills {
		e.metrics.RecordFill(fill.Symbol, fill.Quantity)
		e.logger.DebugContext(ctx, "Pair filled",
			logger.Field{Key: "symbol", Value: fill.Symbol},
			logger.Field{Key: "buyRemaining", Value: fill.BuyRemaining},
			logger.Field{Key: "sellRemaining", Value: fill.SellRemaining},
		)
	}
	for _, pair := range result.Retired {
		e.logger.InfoContext(ctx, "Pair retired",
			logger.Field{Key: "symbol", Value: pair.Symbol},
			logger.Field{Key: "buyOrderID", Value: pair.BuyOrderID},
			logger.Field{Key: "sellOrderID", Value: pair.SellOrderID},
		)
	}

	if !result.IsEmpty() {
		e.publishInOrder(ctx, ticket, eventpublisherv1.TickEvents(result))
	}

	return result
}

// BestOffer returns the cheapest OPEN SELL order.
func (e *Engine) BestOffer() (marketv1.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.BestOffer()
}

// Orders returns every order in submission order.
func (e *Engine) Orders() []marketv1.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.Orders()
}

// Order returns the order with the given id.
func (e *Engine) Order(id string) (marketv1.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.Order(id)
}

// Pairs returns the pairs currently being filled.
func (e *Engine) Pairs() []marketv1.MatchingPair {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.Pairs()
}

// Stats returns the engine counters and the current market size.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	orders := e.market.Orders()
	return Stats{
		TotalTicks:  e.totalTicks,
		TotalFills:  e.totalFills,
		Orders:      len(orders),
		OpenOrders:  countOpen(orders),
		ActivePairs: len(e.market.Pairs()),
	}
}

// runTicker fills active pairs every tick interval.
func (e *Engine) runTicker() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	e.logger.Info("Starting tick loop")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Tick loop shutting down")
			return
		case <-ticker.C:
			e.Tick(e.ctx)
		}
	}
}

// runOrderProcessor reads orders from the intake topic and submits them.
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()
	defer e.orderReader.Close()

	e.logger.Info("Starting order processor")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order processor shutting down")
			return
		default:
		}

		ctx := util.WithSource(util.WithRequestID(e.ctx, ""), "kafka")

		msg, input, err := e.orderReader.ReadMessage(ctx)
		if err != nil {
			if e.ctx.Err() != nil {
				continue
			}
			e.metrics.RecordIntake("error")
			e.logger.ErrorContext(ctx, err, logger.Field{
				Key:   "action",
				Value: "read_order_message",
			})
			e.backoff()
			continue
		}

		if _, _, err := e.Submit(ctx, input); err != nil {
			e.metrics.RecordIntake("rejected")
		} else {
			e.metrics.RecordIntake("ok")
		}

		if err := e.orderReader.CommitMessages(ctx, msg); err != nil {
			e.logger.ErrorContext(ctx, err, logger.Field{
				Key:   "action",
				Value: "commit_order_message",
			})
		}
	}
}

func (e *Engine) backoff() {
	timer := time.NewTimer(e.readBackoff)
	defer timer.Stop()

	select {
	case <-e.ctx.Done():
	case <-timer.C:
	}
}

// takeTicket reserves the next publish slot. It must be called with mu held.
func (e *Engine) takeTicket() uint64 {
	ticket := e.nextTicket
	e.nextTicket++
	return ticket
}

// publishInOrder waits until every earlier ticket has been published, then publishes events.
func (e *Engine) publishInOrder(ctx context.Context, ticket uint64, events []*eventpublisherv1.MarketEvent) {
	e.publishMu.Lock()
	for e.servingTicket != ticket {
		e.publishTurn.Wait()
	}
	e.publishMu.Unlock()

	defer func() {
		e.publishMu.Lock()
		e.servingTicket++
		e.publishMu.Unlock()
		e.publishTurn.Broadcast()
	}()

	e.publish(ctx, events)
}

func (e *Engine) publish(ctx context.Context, events []*eventpublisherv1.MarketEvent) {
	err := e.publisher.Publish(ctx, events...)
	e.metrics.RecordPublish(len(events), err)
	if err != nil {
		e.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "action",
			Value: "publish_events",
		}, logger.Field{
			Key:   "events",
			Value: len(events),
		})
	}
}

// updateMarketSize must be called with mu held.
func (e *Engine) updateMarketSize() {
	e.metrics.SetMarketSize(len(e.market.Pairs()), countOpen(e.market.Orders()))
}

func countOpen(orders []marketv1.Order) int {
	open := 0
	for i := range orders {
		if orders[i].IsOpen() {
			open++
		}
	}
	return open
}
