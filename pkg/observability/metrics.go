package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics handles cache metrics and monitoring. All methods are
// nil-safe so callers can skip metrics entirely by passing a nil instance.
type CacheMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	lazyEvictions prometheus.Counter
	invalidated   prometheus.Counter
	swept         prometheus.Counter
	opDuration    *prometheus.HistogramVec
}

// NewCacheMetrics creates a new metrics instance registered on reg.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	factory := promauto.With(reg)
	return &CacheMetrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dynacache",
			Name:      "hits_total",
			Help:      "Number of cache reads that returned a payload.",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dynacache",
			Name:      "misses_total",
			Help:      "Number of cache reads that returned a miss.",
		}),
		lazyEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dynacache",
			Name:      "lazy_evictions_total",
			Help:      "Number of expired entries evicted on the read path.",
		}),
		invalidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dynacache",
			Name:      "invalidated_entries_total",
			Help:      "Number of entries removed by selector invalidation.",
		}),
		swept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dynacache",
			Name:      "swept_entries_total",
			Help:      "Number of entries removed by the expiry sweep.",
		}),
		opDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dynacache",
			Name:      "operation_duration_seconds",
			Help:      "Latency of cache operations against the store.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
}

// RecordHit records a cache read that returned a payload.
func (m *CacheMetrics) RecordHit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

// RecordMiss records a cache read that returned a miss.
func (m *CacheMetrics) RecordMiss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

// RecordLazyEviction records one expired entry evicted on the read path.
func (m *CacheMetrics) RecordLazyEviction() {
	if m == nil {
		return
	}
	m.lazyEvictions.Inc()
}

// RecordInvalidated records entries removed by selector invalidation.
func (m *CacheMetrics) RecordInvalidated(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.invalidated.Add(float64(count))
}

// RecordSwept records entries removed by the expiry sweep.
func (m *CacheMetrics) RecordSwept(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.swept.Add(float64(count))
}

// ObserveOperation records the latency and outcome of one cache operation.
func (m *CacheMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.opDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}
