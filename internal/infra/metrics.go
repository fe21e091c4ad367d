package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ticksTotal    atomic.Uint64
	pollFailures  atomic.Uint64
	rungsPlaced   atomic.Uint64
	hedgesPlaced  atomic.Uint64
	hedgeRetries  atomic.Uint64
	tradesFetched atomic.Uint64
	errorsTotal   atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTick records one completed engine poll tick.
func (m *Metrics) RecordTick() {
	m.ticksTotal.Add(1)
}

// RecordPollFailure records a swallowed read failure during a poll tick.
func (m *Metrics) RecordPollFailure() {
	m.pollFailures.Add(1)
	m.errorsTotal.Add(1)
}

// RecordRungPlaced records a successful monitored-side placement.
func (m *Metrics) RecordRungPlaced() {
	m.rungsPlaced.Add(1)
}

// RecordHedgePlaced records a successful counter-order placement.
func (m *Metrics) RecordHedgePlaced() {
	m.hedgesPlaced.Add(1)
}

// RecordHedgeRetry records one failed hedge placement attempt.
func (m *Metrics) RecordHedgeRetry() {
	m.hedgeRetries.Add(1)
	m.errorsTotal.Add(1)
}

// RecordTradesFetched adds to the fetched-trade counter.
func (m *Metrics) RecordTradesFetched(n int) {
	m.tradesFetched.Add(uint64(n))
}

// RecordError records a generic error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksTotal        uint64
	PollFailures      uint64
	RungsPlaced       uint64
	HedgesPlaced      uint64
	HedgeRetries      uint64
	TradesFetched     uint64
	ErrorsTotal       uint64
	ActiveConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TicksTotal:        m.ticksTotal.Load(),
		PollFailures:      m.pollFailures.Load(),
		RungsPlaced:       m.rungsPlaced.Load(),
		HedgesPlaced:      m.hedgesPlaced.Load(),
		HedgeRetries:      m.hedgeRetries.Load(),
		TradesFetched:     m.tradesFetched.Load(),
		ErrorsTotal:       m.errorsTotal.Load(),
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticksTotal.Store(0)
	m.pollFailures.Store(0)
	m.rungsPlaced.Store(0)
	m.hedgesPlaced.Store(0)
	m.hedgeRetries.Store(0)
	m.tradesFetched.Store(0)
	m.errorsTotal.Store(0)
	m.activeConnections.Store(0)
}
