package simpleknn

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Mode selects how neighbors are searched.
type Mode string

const (
	// ModeWindow scans a fixed window of positions around each point in
	// Z-order. Approximate: a true neighbor outside the window is missed.
	ModeWindow Mode = "window"

	// ModeBoxes seeds with the window scan, then scans every run of BoxSize
	// sorted points whose bounding box can still improve the result. Exact.
	ModeBoxes Mode = "boxes"

	// ModeKDTree queries a KD-tree for every point. Exact.
	ModeKDTree Mode = "kdtree"

	// ModeBrute compares every pair of points. Exact, O(n²).
	ModeBrute Mode = "brute"
)

// Config controls the mean neighbor distance computation.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// K is the number of nearest neighbors averaged per point. Default: 3.
	K int `yaml:"k"`

	// Window is the number of sorted positions scanned on each side of a
	// point by ModeWindow and ModeBoxes. Larger values find more true
	// neighbors at linear cost. Default: 8.
	Window int `yaml:"window"`

	// Mode selects the neighbor search. Default: ModeWindow.
	Mode Mode `yaml:"mode"`

	// BoxSize is the number of consecutive sorted points per box in
	// ModeBoxes. Default: 1024.
	BoxSize int `yaml:"box_size"`

	// LeafSize is the maximum number of points per KD-tree leaf in
	// ModeKDTree. Default: 16.
	LeafSize int `yaml:"leaf_size"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		K:        3,
		Window:   8,
		Mode:     ModeWindow,
		BoxSize:  1024,
		LeafSize: 16,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.K == 0 {
		cfg.K = def.K
	}
	if cfg.Window == 0 {
		cfg.Window = def.Window
	}
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
	if cfg.BoxSize == 0 {
		cfg.BoxSize = def.BoxSize
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = def.LeafSize
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error matching ErrInvalidInput if not.
func validateConfig(cfg *Config) error {
	if cfg.K < 1 {
		return invalidInput(-1, "K must be >= 1, got %d", cfg.K)
	}
	if cfg.Window < 1 {
		return invalidInput(-1, "Window must be >= 1, got %d", cfg.Window)
	}
	switch cfg.Mode {
	case ModeWindow, ModeBoxes, ModeKDTree, ModeBrute:
		// valid
	default:
		return invalidInput(-1, "invalid Mode %q", cfg.Mode)
	}
	if cfg.BoxSize < 1 {
		return invalidInput(-1, "BoxSize must be >= 1, got %d", cfg.BoxSize)
	}
	if cfg.LeafSize < 1 {
		return invalidInput(-1, "LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	return nil
}

// MeanSquaredDistances returns, for each point of flat (x0,y0,z0,x1,...),
// the mean squared Euclidean distance to its cfg.K nearest other points.
// result[i] belongs to point i. A point with fewer than K other points
// averages the ones that exist; a lone point gets 0.
//
// dev supplies parallelism and the memory budget; nil means a default
// Device. Failures are ErrInvalidInput, ErrResourceExhausted,
// ErrInternalInvariant or the context error. No partial result is ever
// returned.
func MeanSquaredDistances(ctx context.Context, dev *Device, flat []float64, cfg Config) ([]float64, error) {
	res, err := compute(ctx, dev, flat, cfg)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// MeanSquaredDistancesInto is MeanSquaredDistances writing into a
// caller-allocated dst of length len(flat)/3. dst is only written when the
// whole computation succeeds.
func MeanSquaredDistancesInto(ctx context.Context, dev *Device, flat, dst []float64, cfg Config) error {
	if len(flat)%3 == 0 && len(dst) != len(flat)/3 {
		return invalidInput(-1, "output length %d does not match %d points", len(dst), len(flat)/3)
	}
	res, err := compute(ctx, dev, flat, cfg)
	if err != nil {
		return err
	}
	copy(dst, res)
	return nil
}

func compute(ctx context.Context, dev *Device, flat []float64, cfg Config) (result []float64, err error) {
	if dev == nil {
		dev = NewDevice(DefaultDeviceConfig())
	}
	applyDefaults(&cfg)

	started := time.Now()
	n := len(flat) / 3
	log := dev.Logger().WithCount(n).WithMode(cfg.Mode)
	defer func() {
		elapsed := time.Since(started)
		dev.computations.Add(1)
		dev.cfg.Metrics.RecordCompute(n, cfg.Mode, elapsed, err)
		log.LogCompute(ctx, n, elapsed, err)
	}()

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	pts, err := NewPoints(flat)
	if err != nil {
		return nil, err
	}

	stage := time.Now()
	buf, err := dev.Upload(ctx, pts)
	if err != nil {
		return nil, fmt.Errorf("simpleknn: upload: %w", err)
	}
	defer buf.Release()
	log.LogStage(ctx, "upload", time.Since(stage))

	out, err := dev.Alloc(n)
	if err != nil {
		return nil, fmt.Errorf("simpleknn: result buffer: %w", err)
	}
	defer out.Release()

	// The exact searches work on the original order and need no index.
	switch cfg.Mode {
	case ModeKDTree, ModeBrute:
		stage = time.Now()
		if cfg.Mode == ModeKDTree {
			err = reduceKDTree(ctx, dev, buf.Data, cfg.K, cfg.LeafSize, out.Data)
		} else {
			err = reduceBrute(ctx, dev, buf.Data, cfg.K, out.Data)
		}
		if err != nil {
			return nil, fmt.Errorf("simpleknn: reduce: %w", err)
		}
		log.LogStage(ctx, "reduce", time.Since(stage))
		return finish(out.Data)
	}

	stage = time.Now()
	idx, err := BuildSpatialIndex(ctx, dev, buf.Data)
	if err != nil {
		return nil, fmt.Errorf("simpleknn: spatial index: %w", err)
	}
	defer idx.Release()
	if err := checkPermutation(idx.Order); err != nil {
		return nil, err
	}
	log.LogStage(ctx, "index", time.Since(stage))

	stage = time.Now()
	switch cfg.Mode {
	case ModeBoxes:
		err = reduceBoxes(ctx, dev, idx, cfg.K, cfg.Window, cfg.BoxSize, out.Data)
	default:
		err = reduceWindow(ctx, dev, idx, cfg.K, cfg.Window, out.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("simpleknn: reduce: %w", err)
	}
	log.LogStage(ctx, "reduce", time.Since(stage))

	return finish(out.Data)
}

// finish validates the device result and copies it out of device memory.
func finish(data []float64) ([]float64, error) {
	result := make([]float64, len(data))
	for i, v := range data {
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: result[%d] = %v", ErrInternalInvariant, i, v)
		}
		result[i] = v
	}
	return result, nil
}
