package leaseauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies an engine counter or histogram.
type MetricID uint16

const (
	// MetricLeaseCreated counts successful lease creations.
	MetricLeaseCreated MetricID = iota
	// MetricLeaseCreateFailed counts failed lease creations.
	MetricLeaseCreateFailed
	// MetricStatusCheck counts issued status checks.
	MetricStatusCheck
	// MetricStatusTransientRetry counts status checks absorbed as transient failures.
	MetricStatusTransientRetry
	// MetricStatusDiscarded counts status results ignored after cancellation.
	MetricStatusDiscarded
	// MetricProgress counts progress callbacks.
	MetricProgress
	// MetricProcessAuthorized counts processes ending Authorized.
	MetricProcessAuthorized
	// MetricProcessCancelled counts processes ending Cancelled.
	MetricProcessCancelled
	// MetricProcessTimedOut counts processes ending TimedOut.
	MetricProcessTimedOut
	// MetricProcessFailed counts processes ending Failed.
	MetricProcessFailed
	// MetricProcessSuperseded counts processes flagged by a newer StartLeaseProcess.
	MetricProcessSuperseded
	// MetricSessionPersistFailed counts session store failures after authorization.
	MetricSessionPersistFailed
	// MetricStatusCheckLatency is the status-check latency histogram.
	MetricStatusCheckLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free engine counters.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all metrics. Histogram buckets
// are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only latency metrics accept
// observations.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricStatusCheckLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricStatusCheckLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricStatusCheckLatency].buckets[i])
		}
		s.Histograms[MetricStatusCheckLatency] = buckets
	}
	return s
}

// bucket upper bounds: 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, +Inf
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2500:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}
