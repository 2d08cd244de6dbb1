package simpleknn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}
	m.RecordCompute(10, ModeWindow, time.Millisecond, nil)
	m.RecordCompute(5, ModeWindow, time.Millisecond, errors.New("x"))
	m.RecordAlloc(64, nil)
	m.RecordAlloc(64, ErrResourceExhausted)

	assert.Equal(t, int64(2), m.ComputeCount.Load())
	assert.Equal(t, int64(1), m.ComputeErrors.Load())
	assert.Equal(t, int64(10), m.PointsProcessed.Load())
	assert.Equal(t, int64(2*time.Millisecond), m.ComputeTotalNanos.Load())
	assert.Equal(t, int64(2), m.AllocCount.Load())
	assert.Equal(t, int64(1), m.AllocFailures.Load())
	assert.Equal(t, int64(64), m.AllocBytes.Load())
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	dev := NewDevice(DeviceConfig{Workers: 2, Metrics: c})
	_, err = MeanSquaredDistances(context.Background(), dev, randomCloud(20, 50), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 20.0, testutil.ToFloat64(c.pointsProcessed))
	assert.Positive(t, testutil.ToFloat64(c.allocBytes))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.allocFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(c.computeLatency))

	c.RecordAlloc(8, ErrResourceExhausted)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.allocFailures))
}

func TestPrometheusCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	_, err = NewPrometheusCollector(reg)
	assert.Error(t, err)
}
