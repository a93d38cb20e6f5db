package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Market metrics
	OrdersSubmitted *prometheus.CounterVec
	OrdersRejected  prometheus.Counter
	OrdersFulfilled prometheus.Counter
	PairsMatched    prometheus.Counter
	PairsRetired    prometheus.Counter
	FillsTotal      *prometheus.CounterVec
	TicksTotal      prometheus.Counter
	TickDuration    prometheus.Histogram
	ActivePairs     prometheus.Gauge
	OpenOrders      prometheus.Gauge

	// Transport metrics
	EventsPublished *prometheus.CounterVec
	IntakeMessages  *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Market metrics
		OrdersSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_orders_submitted_total",
				Help: "Total number of orders accepted by the market",
			},
			[]string{"symbol", "type"},
		),
		OrdersRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "market_orders_rejected_total",
				Help: "Total number of submissions rejected by validation",
			},
		),
		OrdersFulfilled: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "market_orders_fulfilled_total",
				Help: "Total number of orders moved to FULFILLED",
			},
		),
		PairsMatched: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "market_pairs_matched_total",
				Help: "Total number of matching pairs created",
			},
		),
		PairsRetired: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "market_pairs_retired_total",
				Help: "Total number of matching pairs retired",
			},
		),
		FillsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_fills_total",
				Help: "Total units exchanged by symbol",
			},
			[]string{"symbol"},
		),
		TicksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "market_ticks_total",
				Help: "Total number of fill ticks run",
			},
		),
		TickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "market_tick_duration_seconds",
				Help:    "Duration of a fill tick in seconds",
				Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		ActivePairs: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "market_active_pairs",
				Help: "Current number of pairs being filled",
			},
		),
		OpenOrders: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "market_open_orders",
				Help: "Current number of OPEN orders",
			},
		),

		// Transport metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_published_total",
				Help: "Total number of market events handed to publishers",
			},
			[]string{"result"},
		),
		IntakeMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_messages_total",
				Help: "Total number of order messages read from the intake topic",
			},
			[]string{"result"},
		),
	}
}

// RecordSubmission records an accepted order and whether it matched.
func (m *Metrics) RecordSubmission(symbol, side string, matched bool) {
	m.OrdersSubmitted.WithLabelValues(symbol, side).Inc()
	if matched {
		m.PairsMatched.Inc()
	}
}

// RecordRejection records a submission that failed validation.
func (m *Metrics) RecordRejection() {
	m.OrdersRejected.Inc()
}

// RecordFill records units exchanged on a tick.
func (m *Metrics) RecordFill(symbol string, quantity int64) {
	m.FillsTotal.WithLabelValues(symbol).Add(float64(quantity))
}

// RecordTick records one tick and what it retired.
func (m *Metrics) RecordTick(seconds float64, retired, fulfilled int) {
	m.TicksTotal.Inc()
	m.TickDuration.Observe(seconds)
	m.PairsRetired.Add(float64(retired))
	m.OrdersFulfilled.Add(float64(fulfilled))
}

// SetMarketSize updates the market gauges.
func (m *Metrics) SetMarketSize(activePairs, openOrders int) {
	m.ActivePairs.Set(float64(activePairs))
	m.OpenOrders.Set(float64(openOrders))
}

// RecordPublish records the outcome of a publish call.
func (m *Metrics) RecordPublish(count int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Add(float64(count))
}

// RecordIntake records the outcome of reading one intake message.
func (m *Metrics) RecordIntake(result string) {
	m.IntakeMessages.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}
