package simpleknn

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational metrics from a Device.
// See PrometheusCollector for a Prometheus-backed implementation.
type MetricsCollector interface {
	// RecordCompute is called once per invocation with the number of points,
	// the reduction mode, the total duration and the terminal error (if any).
	RecordCompute(n int, mode Mode, duration time.Duration, err error)

	// RecordAlloc is called for every device allocation attempt.
	RecordAlloc(bytes int64, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompute(int, Mode, time.Duration, error) {}
func (NoopMetricsCollector) RecordAlloc(int64, error)                      {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	ComputeCount      atomic.Int64
	ComputeErrors     atomic.Int64
	ComputeTotalNanos atomic.Int64
	PointsProcessed   atomic.Int64
	AllocCount        atomic.Int64
	AllocFailures     atomic.Int64
	AllocBytes        atomic.Int64
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(n int, _ Mode, duration time.Duration, err error) {
	b.ComputeCount.Add(1)
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ComputeErrors.Add(1)
		return
	}
	b.PointsProcessed.Add(int64(n))
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(bytes int64, err error) {
	b.AllocCount.Add(1)
	if err != nil {
		b.AllocFailures.Add(1)
		return
	}
	b.AllocBytes.Add(bytes)
}
