package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	eventpublisherv1 "github.com/muhammadchandra19/market-sim/internal/domain/event-publisher/v1"
	eventpublishermock "github.com/muhammadchandra19/market-sim/internal/domain/event-publisher/v1/mock"
	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
	orderreadermock "github.com/muhammadchandra19/market-sim/internal/domain/order-reader/v1/mock"
	"github.com/muhammadchandra19/market-sim/internal/metrics"
	"github.com/muhammadchandra19/market-sim/internal/usecase/market"
	"github.com/muhammadchandra19/market-sim/pkg/config"
	pkgerrors "github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/muhammadchandra19/market-sim/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures and helpers
type testFixture struct {
	ctrl            *gomock.Controller
	mockOrderReader *orderreadermock.MockOrderReader
	mockPublisher   *eventpublishermock.MockEventPublisher
	metrics         *metrics.Metrics
	logger          *logger.Logger
	config          *config.Config
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)

	return &testFixture{
		ctrl:            ctrl,
		mockOrderReader: orderreadermock.NewMockOrderReader(ctrl),
		mockPublisher:   eventpublishermock.NewMockEventPublisher(ctrl),
		metrics:         metrics.NewMetrics(prometheus.NewRegistry()),
		logger:          logger.NewNopLogger(),
		config: &config.Config{
			TickInterval: time.Hour,
		},
	}
}

func (f *testFixture) teardown() {
	f.ctrl.Finish()
}

// createTestEngine builds an engine without an order reader.
func createTestEngine(f *testFixture) *Engine {
	return NewEngine(market.NewMarket(), nil, f.mockPublisher, f.metrics, f.logger, f.config)
}

// eventRecorder captures everything handed to the publisher mock.
type eventRecorder struct {
	mu     sync.Mutex
	events []*eventpublisherv1.MarketEvent
}

func (r *eventRecorder) record(_ context.Context, events ...*eventpublisherv1.MarketEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *eventRecorder) types() []eventpublisherv1.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]eventpublisherv1.EventType, len(r.events))
	for i, event := range r.events {
		out[i] = event.Type
	}
	return out
}

func order(symbol string, side marketv1.Side, price float64, quantity int64) marketv1.OrderInput {
	return marketv1.OrderInput{Symbol: symbol, Price: price, Quantity: quantity, Side: side}
}

func TestNewEngine_TickInterval(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)
	assert.Equal(t, time.Hour, engine.tickInterval)

	fixture.config.TickInterval = 0
	engine = createTestEngine(fixture)
	assert.Equal(t, DefaultEngineOptions().TickInterval, engine.tickInterval)
}

func TestEngine_Submit(t *testing.T) {
	testCases := []struct {
		name           string
		existing       []marketv1.OrderInput
		input          marketv1.OrderInput
		expectedEvents []eventpublisherv1.EventType
		expectPair     bool
		expectedCodes  []pkgerrors.ErrorCode
	}{
		{
			name:           "order without counter-order",
			input:          order("FB", marketv1.SideBuy, 100, 20),
			expectedEvents: []eventpublisherv1.EventType{eventpublisherv1.EventOrderSubmitted},
		},
		{
			name:     "order matching an open counter-order",
			existing: []marketv1.OrderInput{order("FB", marketv1.SideSell, 110, 10)},
			input:    order("FB", marketv1.SideBuy, 100, 20),
			expectedEvents: []eventpublisherv1.EventType{
				eventpublisherv1.EventOrderSubmitted,
				eventpublisherv1.EventPairMatched,
			},
			expectPair: true,
		},
		{
			name:           "zero quantity is accepted",
			input:          order("FB", marketv1.SideSell, 100, 0),
			expectedEvents: []eventpublisherv1.EventType{eventpublisherv1.EventOrderSubmitted},
		},
		{
			name:  "every invalid field is reported",
			input: marketv1.OrderInput{Symbol: " ", Price: 0, Quantity: -1, Side: "HOLD"},
			expectedCodes: []pkgerrors.ErrorCode{
				pkgerrors.InvalidOrderSymbol,
				pkgerrors.InvalidOrderPrice,
				pkgerrors.InvalidOrderQuantity,
				pkgerrors.InvalidOrderType,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := setupTestFixture(t)
			defer fixture.teardown()

			recorder := &eventRecorder{}
			fixture.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(recorder.record).AnyTimes()

			engine := createTestEngine(fixture)
			for _, in := range tc.existing {
				_, _, err := engine.Submit(context.Background(), in)
				require.NoError(t, err)
			}
			recorder.events = nil

			submitted, pair, err := engine.Submit(context.Background(), tc.input)

			if len(tc.expectedCodes) > 0 {
				require.Error(t, err)
				base, ok := pkgerrors.AsBaseError(err)
				require.True(t, ok)
				for _, code := range tc.expectedCodes {
					assert.True(t, base.IsAnyCodeEqual(code), "missing %s", code)
				}
				assert.Empty(t, engine.Orders())
				assert.Empty(t, recorder.types())
				assert.Equal(t, 1.0, testutil.ToFloat64(fixture.metrics.OrdersRejected))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, marketv1.StatusOpen, submitted.Status)
			assert.NotEmpty(t, submitted.ID)
			assert.Equal(t, tc.expectPair, pair != nil)
			assert.Equal(t, tc.expectedEvents, recorder.types())

			stored, ok := engine.Order(submitted.ID)
			require.True(t, ok)
			assert.Equal(t, submitted, stored)
		})
	}
}

func TestEngine_Submit_PublishFailureDoesNotFailSubmission(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	fixture.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(1)

	engine := createTestEngine(fixture)
	submitted, _, err := engine.Submit(context.Background(), order("FB", marketv1.SideBuy, 100, 1))
	require.NoError(t, err)

	_, ok := engine.Order(submitted.ID)
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(fixture.metrics.EventsPublished.WithLabelValues("error")))
}

func TestEngine_Tick(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	recorder := &eventRecorder{}
	fixture.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(recorder.record).AnyTimes()

	engine := createTestEngine(fixture)
	ctx := context.Background()

	buy, _, err := engine.Submit(ctx, order("FB", marketv1.SideBuy, 100, 10))
	require.NoError(t, err)
	sell, pair, err := engine.Submit(ctx, order("FB", marketv1.SideSell, 110, 3))
	require.NoError(t, err)
	require.NotNil(t, pair)
	recorder.events = nil

	engine.Tick(ctx)
	engine.Tick(ctx)
	result := engine.Tick(ctx)

	require.Len(t, result.Retired, 1)
	require.Len(t, result.Fulfilled, 1)
	assert.Equal(t, sell.ID, result.Fulfilled[0].ID)

	gotBuy, _ := engine.Order(buy.ID)
	gotSell, _ := engine.Order(sell.ID)
	assert.Equal(t, int64(7), gotBuy.Quantity)
	assert.Equal(t, marketv1.StatusOpen, gotBuy.Status)
	assert.Equal(t, int64(0), gotSell.Quantity)
	assert.Equal(t, marketv1.StatusFulfilled, gotSell.Status)
	assert.Empty(t, engine.Pairs())

	assert.Equal(t, []eventpublisherv1.EventType{
		eventpublisherv1.EventPairFilled,
		eventpublisherv1.EventPairFilled,
		eventpublisherv1.EventPairFilled,
		eventpublisherv1.EventOrderFulfilled,
		eventpublisherv1.EventPairRetired,
	}, recorder.types())

	stats := engine.Stats()
	assert.Equal(t, int64(3), stats.TotalTicks)
	assert.Equal(t, int64(3), stats.TotalFills)
	assert.Equal(t, 2, stats.Orders)
	assert.Equal(t, 1, stats.OpenOrders)
	assert.Equal(t, 0, stats.ActivePairs)

	assert.Equal(t, 3.0, testutil.ToFloat64(fixture.metrics.TicksTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(fixture.metrics.FillsTotal.WithLabelValues("FB")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fixture.metrics.OrdersFulfilled))
	assert.Equal(t, 1.0, testutil.ToFloat64(fixture.metrics.OpenOrders))
}

func TestEngine_PublishesInCommitOrder(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	recorder := &eventRecorder{}
	stalled := make(chan struct{})
	release := make(chan struct{})
	var calls sync.Once

	fixture.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, events ...*eventpublisherv1.MarketEvent) error {
			calls.Do(func() {
				close(stalled)
				<-release
			})
			return recorder.record(ctx, events...)
		}).AnyTimes()

	engine := createTestEngine(fixture)
	engine.Seed(SeedOrder{Input: order("FB", marketv1.SideSell, 100, 1), Status: marketv1.StatusOpen})

	ctx := context.Background()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, pair, err := engine.Submit(ctx, order("FB", marketv1.SideBuy, 100, 1))
		assert.NoError(t, err)
		assert.NotNil(t, pair)
	}()
	<-stalled

	wg.Add(1)
	go func() {
		defer wg.Done()
		engine.Tick(ctx)
	}()

	// the market is not blocked by the stalled publisher
	require.Eventually(t, func() bool {
		return engine.Stats().TotalTicks == 1
	}, time.Second, time.Millisecond)
	assert.Empty(t, engine.Pairs())
	assert.Empty(t, recorder.types())

	close(release)
	wg.Wait()

	assert.Equal(t, []eventpublisherv1.EventType{
		eventpublisherv1.EventOrderSubmitted,
		eventpublisherv1.EventPairMatched,
		eventpublisherv1.EventPairFilled,
		eventpublisherv1.EventOrderFulfilled,
		eventpublisherv1.EventOrderFulfilled,
		eventpublisherv1.EventPairRetired,
	}, recorder.types())
}

func TestEngine_Tick_EmptyMarketPublishesNothing(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	fixture.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	engine := createTestEngine(fixture)
	result := engine.Tick(context.Background())

	assert.True(t, result.IsEmpty())
	assert.Equal(t, int64(1), engine.Stats().TotalTicks)
}

func TestEngine_SeedDemo(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	recorder := &eventRecorder{}
	fixture.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(recorder.record).AnyTimes()

	engine := createTestEngine(fixture)
	seeded := engine.Seed(DemoOrders()...)
	require.Len(t, seeded, 10)

	assert.Empty(t, engine.Pairs())
	assert.Empty(t, recorder.types())
	for i, o := range seeded {
		assert.Equal(t, int64(i+1), o.Sequence)
		assert.Equal(t, DemoOrders()[i].Status, o.Status)
	}

	best, ok := engine.BestOffer()
	require.True(t, ok)
	assert.Equal(t, "FB", best.Symbol)
	assert.Equal(t, 110.0, best.Price)

	demo, pair, err := engine.Submit(context.Background(), DemoOrder())
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, demo.ID, pair.BuyOrderID)
	assert.Equal(t, seeded[5].ID, pair.SellOrderID)
}

func TestEngine_StartStop(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	fixture.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	options := DefaultEngineOptions()
	options.TickInterval = 5 * time.Millisecond
	engine := NewEngineWithOptions(market.NewMarket(), nil, fixture.mockPublisher, fixture.metrics, fixture.logger, fixture.config, options)

	_, _, err := engine.Submit(context.Background(), order("FB", marketv1.SideBuy, 100, 2))
	require.NoError(t, err)
	_, _, err = engine.Submit(context.Background(), order("FB", marketv1.SideSell, 100, 2))
	require.NoError(t, err)

	require.NoError(t, engine.Start(context.Background()))
	assert.Error(t, engine.Start(context.Background()))

	require.Eventually(t, func() bool {
		return len(engine.Pairs()) == 0
	}, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, engine.Stop(stopCtx))

	stats := engine.Stats()
	assert.Equal(t, int64(2), stats.TotalFills)
	assert.Equal(t, 0, stats.OpenOrders)
}

func TestEngine_Stop_WithoutStart(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)
	assert.NoError(t, engine.Stop(context.Background()))
}
