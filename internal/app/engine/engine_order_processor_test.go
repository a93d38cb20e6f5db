package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
	"github.com/muhammadchandra19/market-sim/internal/usecase/market"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockUntilDone(ctx context.Context) (kafka.Message, marketv1.OrderInput, error) {
	<-ctx.Done()
	return kafka.Message{}, marketv1.OrderInput{}, ctx.Err()
}

func createIntakeEngine(f *testFixture) *Engine {
	options := DefaultEngineOptions()
	options.ReadBackoff = time.Millisecond
	return NewEngineWithOptions(market.NewMarket(), f.mockOrderReader, f.mockPublisher, f.metrics, f.logger, f.config, options)
}

func TestEngine_RunOrderProcessor(t *testing.T) {
	testCases := []struct {
		name             string
		setupMocks       func(*testFixture)
		expectedOrders   int
		expectedPairs    int
		expectedOK       float64
		expectedRejected float64
		expectedErrors   float64
	}{
		{
			name: "submits and commits each message",
			setupMocks: func(f *testFixture) {
				first := kafka.Message{Offset: 1}
				second := kafka.Message{Offset: 2}

				gomock.InOrder(
					f.mockOrderReader.EXPECT().ReadMessage(gomock.Any()).
						Return(first, order("FB", marketv1.SideSell, 110, 10), nil),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), first).Return(nil),
					f.mockOrderReader.EXPECT().ReadMessage(gomock.Any()).
						Return(second, order("FB", marketv1.SideBuy, 100, 20), nil),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), second).Return(nil),
					f.mockOrderReader.EXPECT().ReadMessage(gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes(),
				)
			},
			expectedOrders: 2,
			expectedPairs:  1,
			expectedOK:     2,
		},
		{
			name: "invalid order is committed but not submitted",
			setupMocks: func(f *testFixture) {
				msg := kafka.Message{Offset: 7}

				gomock.InOrder(
					f.mockOrderReader.EXPECT().ReadMessage(gomock.Any()).
						Return(msg, order("", marketv1.SideBuy, -1, 1), nil),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					f.mockOrderReader.EXPECT().ReadMessage(gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes(),
				)
			},
			expectedRejected: 1,
		},
		{
			name: "read error backs off and retries",
			setupMocks: func(f *testFixture) {
				msg := kafka.Message{Offset: 3}

				gomock.InOrder(
					f.mockOrderReader.EXPECT().ReadMessage(gomock.Any()).
						Return(kafka.Message{}, marketv1.OrderInput{}, errors.New("decode failed")),
					f.mockOrderReader.EXPECT().ReadMessage(gomock.Any()).
						Return(msg, order("MSFT", marketv1.SideBuy, 75, 15), nil),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(errors.New("rebalancing")),
					f.mockOrderReader.EXPECT().ReadMessage(gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes(),
				)
			},
			expectedOrders: 1,
			expectedOK:     1,
			expectedErrors: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := setupTestFixture(t)
			defer fixture.teardown()

			var published atomic.Int64
			fixture.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
				DoAndReturn(func(context.Context, ...any) error {
					published.Add(1)
					return nil
				}).AnyTimes()
			fixture.mockOrderReader.EXPECT().Close().Return(nil).Times(1)
			tc.setupMocks(fixture)

			engine := createIntakeEngine(fixture)
			require.NoError(t, engine.Start(context.Background()))

			require.Eventually(t, func() bool {
				handled := testutil.ToFloat64(fixture.metrics.IntakeMessages.WithLabelValues("ok")) +
					testutil.ToFloat64(fixture.metrics.IntakeMessages.WithLabelValues("rejected"))
				return handled == tc.expectedOK+tc.expectedRejected
			}, time.Second, 5*time.Millisecond)

			stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			require.NoError(t, engine.Stop(stopCtx))

			assert.Len(t, engine.Orders(), tc.expectedOrders)
			assert.Len(t, engine.Pairs(), tc.expectedPairs)
			assert.Equal(t, tc.expectedOK, testutil.ToFloat64(fixture.metrics.IntakeMessages.WithLabelValues("ok")))
			assert.Equal(t, tc.expectedRejected, testutil.ToFloat64(fixture.metrics.IntakeMessages.WithLabelValues("rejected")))
			assert.Equal(t, tc.expectedErrors, testutil.ToFloat64(fixture.metrics.IntakeMessages.WithLabelValues("error")))
			assert.Equal(t, int64(tc.expectedOrders), published.Load())
		})
	}
}
