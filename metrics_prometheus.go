package simpleknn

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements MetricsCollector on top of
// prometheus/client_golang.
type PrometheusCollector struct {
	computeLatency  *prometheus.HistogramVec
	pointsProcessed prometheus.Counter
	allocBytes      prometheus.Counter
	allocFailures   prometheus.Counter
}

// NewPrometheusCollector creates the collector and registers its metrics
// with reg.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		computeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simpleknn_compute_duration_seconds",
			Help:    "Latency of mean neighbor distance computations",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode", "status"}),
		pointsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simpleknn_points_processed_total",
			Help: "Points for which a mean neighbor distance was produced",
		}),
		allocBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simpleknn_device_alloc_bytes_total",
			Help: "Bytes reserved on the device",
		}),
		allocFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simpleknn_device_alloc_failures_total",
			Help: "Device allocations rejected by the memory budget",
		}),
	}
	for _, col := range []prometheus.Collector{
		c.computeLatency, c.pointsProcessed, c.allocBytes, c.allocFailures,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordCompute implements MetricsCollector.
func (c *PrometheusCollector) RecordCompute(n int, mode Mode, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.computeLatency.WithLabelValues(string(mode), status).Observe(duration.Seconds())
	if err == nil {
		c.pointsProcessed.Add(float64(n))
	}
}

// RecordAlloc implements MetricsCollector.
func (c *PrometheusCollector) RecordAlloc(bytes int64, err error) {
	if err != nil {
		c.allocFailures.Inc()
		return
	}
	c.allocBytes.Add(float64(bytes))
}
