package leaseauth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLeaseCreated)

	if got := m.Value(MetricLeaseCreated); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 16
	const perG = 2000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricStatusCheck)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricStatusCheck); got != goroutines*perG {
		t.Fatalf("expected %d, got %d", goroutines*perG, got)
	}
}

func TestMetricsLatencyHistogramBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Observe(MetricStatusCheckLatency, 10*time.Millisecond)
	m.Observe(MetricStatusCheckLatency, 700*time.Millisecond)
	m.Observe(MetricStatusCheckLatency, 10*time.Second)
	m.Observe(MetricProgress, time.Millisecond)

	buckets := m.Snapshot().Histograms[MetricStatusCheckLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	if buckets[0] != 1 || buckets[4] != 1 || buckets[7] != 1 {
		t.Fatalf("unexpected buckets %v", buckets)
	}
}

func TestMetricsHistogramDisabledWithoutLatencyFlag(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricStatusCheckLatency, time.Millisecond)
	if _, ok := m.Snapshot().Histograms[MetricStatusCheckLatency]; ok {
		t.Fatal("expected no histogram without latency flag")
	}
}
