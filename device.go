package simpleknn

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DeviceConfig controls the execution context used by an invocation.
// Start with [DefaultDeviceConfig] and override the fields you need.
type DeviceConfig struct {
	// Workers is the maximum number of goroutines running batches at once.
	// 0 means runtime.NumCPU().
	Workers int `yaml:"workers"`

	// BatchSize is the number of points handled by one scheduled task.
	// 0 means 256.
	BatchSize int `yaml:"batch_size"`

	// MemoryLimitBytes caps the bytes that may be reserved on the device at
	// once. 0 means unlimited (reservations are still tracked).
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`

	// Logger receives stage and failure logs. nil means NoopLogger().
	Logger *Logger `yaml:"-"`

	// Metrics receives compute and allocation metrics.
	// nil means NoopMetricsCollector.
	Metrics MetricsCollector `yaml:"-"`
}

// DefaultDeviceConfig returns a DeviceConfig with reasonable defaults.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Workers:   runtime.NumCPU(),
		BatchSize: 256,
	}
}

// DeviceStats is a snapshot of device counters.
type DeviceStats struct {
	Allocations   int64
	AllocFailures int64
	BytesInUse    int64
	PeakBytes     int64
	Computations  int64
}

// Device is the execution context for mean distance computations: the
// parallelism, the memory budget and the observability hooks. It is safe
// for concurrent use by multiple invocations, which share its budget.
type Device struct {
	cfg DeviceConfig

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64
	memPeak atomic.Int64

	allocs        atomic.Int64
	allocFailures atomic.Int64
	computations  atomic.Int64
}

// NewDevice creates a Device, filling zero-valued fields with defaults.
func NewDevice(cfg DeviceConfig) *Device {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	if cfg.Logger == nil {
		cfg.Logger = NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetricsCollector{}
	}

	d := &Device{cfg: cfg}
	if cfg.MemoryLimitBytes > 0 {
		d.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return d
}

// Workers returns the configured parallelism.
func (d *Device) Workers() int { return d.cfg.Workers }

// BatchSize returns the number of points per scheduled task.
func (d *Device) BatchSize() int { return d.cfg.BatchSize }

// Logger returns the device logger.
func (d *Device) Logger() *Logger { return d.cfg.Logger }

// MemoryUsed returns the bytes currently reserved.
func (d *Device) MemoryUsed() int64 { return d.memUsed.Load() }

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() DeviceStats {
	return DeviceStats{
		Allocations:   d.allocs.Load(),
		AllocFailures: d.allocFailures.Load(),
		BytesInUse:    d.memUsed.Load(),
		PeakBytes:     d.memPeak.Load(),
		Computations:  d.computations.Load(),
	}
}

// reservation is a block of budgeted device memory.
type reservation struct {
	dev      *Device
	bytes    int64
	released atomic.Bool
}

// reserve charges bytes against the memory budget. It never blocks;
// a full budget yields ErrResourceExhausted.
func (d *Device) reserve(bytes int64) (*reservation, error) {
	if d.memSem != nil && !d.memSem.TryAcquire(bytes) {
		err := fmt.Errorf("%w: cannot reserve %d bytes (in use %d of %d)",
			ErrResourceExhausted, bytes, d.memUsed.Load(), d.cfg.MemoryLimitBytes)
		d.allocFailures.Add(1)
		d.cfg.Metrics.RecordAlloc(bytes, err)
		return nil, err
	}

	used := d.memUsed.Add(bytes)
	for {
		peak := d.memPeak.Load()
		if used <= peak || d.memPeak.CompareAndSwap(peak, used) {
			break
		}
	}
	d.allocs.Add(1)
	d.cfg.Metrics.RecordAlloc(bytes, nil)
	return &reservation{dev: d, bytes: bytes}, nil
}

// release returns the reservation to the budget. Safe to call twice.
func (r *reservation) release() {
	if r == nil || !r.released.CompareAndSwap(false, true) {
		return
	}
	r.dev.memUsed.Add(-r.bytes)
	if r.dev.memSem != nil {
		r.dev.memSem.Release(r.bytes)
	}
}

// Buffer is a float64 array owned by a Device.
type Buffer struct {
	Data []float64
	res  *reservation
}

// Alloc reserves a zeroed buffer of n float64 values.
func (d *Device) Alloc(n int) (*Buffer, error) {
	res, err := d.reserve(int64(n) * 8)
	if err != nil {
		return nil, err
	}
	return &Buffer{Data: make([]float64, n), res: res}, nil
}

// Upload copies pts into a new device buffer.
func (d *Device) Upload(ctx context.Context, pts Points) (*Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf, err := d.Alloc(len(pts.flat))
	if err != nil {
		return nil, err
	}
	copy(buf.Data, pts.flat)
	return buf, nil
}

// Release returns the buffer's memory to the device. Safe to call twice.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	b.res.release()
	b.Data = nil
}

// Len returns the number of float64 values in the buffer.
func (b *Buffer) Len() int { return len(b.Data) }
