package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Savings ledger metrics collector

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all savings metrics
type Collector struct {
	// Pool lifecycle metrics
	PoolsOpened    *prometheus.CounterVec
	PoolsWithdrawn *prometheus.CounterVec
	PoolsActive    *prometheus.GaugeVec

	// Value metrics
	AmountSaved     *prometheus.GaugeVec
	AmountDeposited *prometheus.CounterVec
	AmountReleased  *prometheus.CounterVec
	FeesCollected   *prometheus.CounterVec

	// Operation metrics
	OperationErrors  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Ledger metrics
	CommitHeight prometheus.Gauge
	LivePools    prometheus.Gauge
}

// GetCollector returns the singleton collector registered with the default registry
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = NewCollector(prometheus.DefaultRegisterer)
	})
	return collector
}

// NewCollector creates a collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{}

	c.PoolsOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savings",
			Subsystem: "pools",
			Name:      "opened_total",
			Help:      "Total number of pools opened",
		},
		[]string{"token_id", "lock_type"},
	)

	c.PoolsWithdrawn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savings",
			Subsystem: "pools",
			Name:      "withdrawn_total",
			Help:      "Total number of pools withdrawn",
		},
		[]string{"token_id", "lock_type", "early"},
	)

	c.PoolsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "savings",
			Subsystem: "pools",
			Name:      "active",
			Help:      "Number of live pools in committed state",
		},
		[]string{"lock_type"},
	)

	c.AmountSaved = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "savings",
			Subsystem: "value",
			Name:      "saved",
			Help:      "Amount held by live pools in committed state",
		},
		[]string{"token_id"},
	)

	c.AmountDeposited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savings",
			Subsystem: "value",
			Name:      "deposited_total",
			Help:      "Total amount taken into custody",
		},
		[]string{"token_id"},
	)

	c.AmountReleased = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savings",
			Subsystem: "value",
			Name:      "released_total",
			Help:      "Total amount released back to savers",
		},
		[]string{"token_id"},
	)

	c.FeesCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savings",
			Subsystem: "value",
			Name:      "fees_total",
			Help:      "Total early withdrawal fees paid to the fee recipient",
		},
		[]string{"token_id"},
	)

	c.OperationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savings",
			Subsystem: "ops",
			Name:      "errors_total",
			Help:      "Total failed operations by error kind",
		},
		[]string{"operation", "kind"},
	)

	c.OperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "savings",
			Subsystem: "ops",
			Name:      "latency_ms",
			Help:      "Operation latency in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100},
		},
		[]string{"operation"},
	)

	c.CommitHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "savings",
			Subsystem: "ledger",
			Name:      "commit_height",
			Help:      "Last committed ledger version",
		},
	)

	c.LivePools = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "savings",
			Subsystem: "ledger",
			Name:      "live_pools",
			Help:      "Number of live pools in committed state",
		},
	)

	reg.MustRegister(
		c.PoolsOpened,
		c.PoolsWithdrawn,
		c.PoolsActive,
		c.AmountSaved,
		c.AmountDeposited,
		c.AmountReleased,
		c.FeesCollected,
		c.OperationErrors,
		c.OperationLatency,
		c.CommitHeight,
		c.LivePools,
	)

	return c
}

// ============ Recording Helpers ============

// RecordPoolOpened records a committed pool opening
func (c *Collector) RecordPoolOpened(tokenID, lockType string, amount uint64) {
	c.PoolsOpened.WithLabelValues(tokenID, lockType).Inc()
	c.AmountDeposited.WithLabelValues(tokenID).Add(float64(amount))
}

// RecordPoolUpdated records funds appended to a pool
func (c *Collector) RecordPoolUpdated(tokenID string, amount uint64) {
	c.AmountDeposited.WithLabelValues(tokenID).Add(float64(amount))
}

// RecordPoolWithdrawn records a committed withdrawal
func (c *Collector) RecordPoolWithdrawn(tokenID, lockType string, released, fee uint64) {
	early := "false"
	if fee > 0 {
		early = "true"
	}
	c.PoolsWithdrawn.WithLabelValues(tokenID, lockType, early).Inc()
	c.AmountReleased.WithLabelValues(tokenID).Add(float64(released))
	if fee > 0 {
		c.FeesCollected.WithLabelValues(tokenID).Add(float64(fee))
	}
}

// RecordOperationError records a failed operation
func (c *Collector) RecordOperationError(operation, kind string) {
	c.OperationErrors.WithLabelValues(operation, kind).Inc()
}

// RecordOperationLatency records how long an operation took
func (c *Collector) RecordOperationLatency(operation string, latencyMs float64) {
	c.OperationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordCommit records the last committed version
func (c *Collector) RecordCommit(version int64) {
	c.CommitHeight.Set(float64(version))
}

// RecordLedgerState replaces the state gauges with values read from
// committed state. Labels absent from the maps are dropped.
func (c *Collector) RecordLedgerState(live uint64, activeByLockType, savedByToken map[string]uint64) {
	c.LivePools.Set(float64(live))

	c.PoolsActive.Reset()
	for lockType, n := range activeByLockType {
		c.PoolsActive.WithLabelValues(lockType).Set(float64(n))
	}
	c.AmountSaved.Reset()
	for tokenID, amount := range savedByToken {
		c.AmountSaved.WithLabelValues(tokenID).Set(float64(amount))
	}
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns an HTTP handler serving the metrics gathered by g
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
