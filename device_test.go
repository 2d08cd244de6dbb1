package simpleknn

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice_Defaults(t *testing.T) {
	dev := NewDevice(DeviceConfig{})
	assert.Equal(t, runtime.NumCPU(), dev.Workers())
	assert.Equal(t, 256, dev.BatchSize())
	assert.NotNil(t, dev.Logger())
	assert.Equal(t, int64(0), dev.MemoryUsed())
}

func TestDevice_AllocRelease(t *testing.T) {
	dev := NewDevice(DeviceConfig{MemoryLimitBytes: 1024})

	buf, err := dev.Alloc(100)
	require.NoError(t, err)
	assert.Equal(t, 100, buf.Len())
	assert.Equal(t, int64(800), dev.MemoryUsed())

	// Only 224 bytes left.
	_, err = dev.Alloc(29)
	assert.ErrorIs(t, err, ErrResourceExhausted)

	buf.Release()
	buf.Release()
	assert.Equal(t, int64(0), dev.MemoryUsed())

	buf2, err := dev.Alloc(128)
	require.NoError(t, err)
	defer buf2.Release()

	stats := dev.Stats()
	assert.Equal(t, int64(2), stats.Allocations)
	assert.Equal(t, int64(1), stats.AllocFailures)
	assert.Equal(t, int64(1024), stats.PeakBytes)
	assert.Equal(t, int64(1024), stats.BytesInUse)
}

func TestDevice_Unlimited(t *testing.T) {
	dev := NewDevice(DeviceConfig{})
	buf, err := dev.Alloc(1 << 16)
	require.NoError(t, err)
	assert.Equal(t, int64(8<<16), dev.MemoryUsed())
	buf.Release()
	assert.Equal(t, int64(0), dev.MemoryUsed())
}

func TestDevice_Upload(t *testing.T) {
	dev := NewDevice(DeviceConfig{})
	pts, err := NewPoints([]float64{1, 2, 3})
	require.NoError(t, err)

	buf, err := dev.Upload(context.Background(), pts)
	require.NoError(t, err)
	defer buf.Release()
	assert.Equal(t, []float64{1, 2, 3}, buf.Data)

	// The buffer is a copy.
	buf.Data[0] = 9
	assert.Equal(t, 1.0, pts.At(0)[0])
}

func TestDevice_UploadCanceled(t *testing.T) {
	dev := NewDevice(DeviceConfig{})
	pts, err := NewPoints([]float64{1, 2, 3})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dev.Upload(ctx, pts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), dev.MemoryUsed())
}

func TestDevice_RecordsAllocMetrics(t *testing.T) {
	m := &BasicMetricsCollector{}
	dev := NewDevice(DeviceConfig{MemoryLimitBytes: 64, Metrics: m})

	buf, err := dev.Alloc(8)
	require.NoError(t, err)
	defer buf.Release()
	_, err = dev.Alloc(8)
	require.Error(t, err)

	assert.Equal(t, int64(2), m.AllocCount.Load())
	assert.Equal(t, int64(1), m.AllocFailures.Load())
	assert.Equal(t, int64(64), m.AllocBytes.Load())
}
