package simpleknn

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// SpatialIndex is a locality-preserving ordering of a point set.
//
// Order is a permutation of 0..n-1: sorted position p holds original point
// Order[p]. Sorted[3p:3p+3] are the coordinates of that point, so a scan over
// consecutive positions reads consecutive memory.
type SpatialIndex struct {
	Order  []int
	Sorted []float64
	Bounds BoundingBox

	orderRes *reservation
	sorted   *Buffer
}

// Len returns the number of indexed points.
func (s *SpatialIndex) Len() int { return len(s.Order) }

// Release returns the index memory to its device. Safe to call twice.
func (s *SpatialIndex) Release() {
	if s == nil {
		return
	}
	s.orderRes.release()
	s.sorted.Release()
}

type keyedPoint struct {
	key uint64
	idx int
}

// BuildSpatialIndex orders the points in data (flat, 3 values per point) along
// a Z-order curve over their bounding box. Points with equal keys are ordered
// by coordinates, then by original index, so distinct points land in the same
// positions however the input is labeled.
//
// The only failure besides cancellation is ErrResourceExhausted.
func BuildSpatialIndex(ctx context.Context, dev *Device, data []float64) (*SpatialIndex, error) {
	n := len(data) / 3

	box, err := computeBounds(ctx, dev, data)
	if err != nil {
		return nil, err
	}
	extent := box.Extent()

	keysRes, err := dev.reserve(int64(n) * 16)
	if err != nil {
		return nil, err
	}
	defer keysRes.release()

	keys := make([]keyedPoint, n)
	err = parallelFor(ctx, dev, n, func(start, end int) error {
		for i := start; i < end; i++ {
			keys[i] = keyedPoint{key: mortonKey(data[3*i:3*i+3], box, extent), idx: i}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(keys, func(a, b keyedPoint) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
		pa, pb := data[3*a.idx:3*a.idx+3], data[3*b.idx:3*b.idx+3]
		for d := 0; d < 3; d++ {
			if c := cmp.Compare(pa[d], pb[d]); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.idx, b.idx)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := &SpatialIndex{Bounds: box}
	idx.orderRes, err = dev.reserve(int64(n) * 8)
	if err != nil {
		return nil, err
	}
	idx.sorted, err = dev.Alloc(3 * n)
	if err != nil {
		idx.Release()
		return nil, err
	}
	idx.Order = make([]int, n)
	idx.Sorted = idx.sorted.Data

	err = parallelFor(ctx, dev, n, func(start, end int) error {
		for p := start; p < end; p++ {
			i := keys[p].idx
			idx.Order[p] = i
			copy(idx.Sorted[3*p:3*p+3], data[3*i:3*i+3])
		}
		return nil
	})
	if err != nil {
		idx.Release()
		return nil, err
	}
	return idx, nil
}

// checkPermutation verifies that order is a permutation of 0..len(order)-1.
func checkPermutation(order []int) error {
	seen := make([]bool, len(order))
	for p, i := range order {
		if i < 0 || i >= len(order) || seen[i] {
			return fmt.Errorf("%w: order[%d] = %d is not part of a permutation", ErrInternalInvariant, p, i)
		}
		seen[i] = true
	}
	return nil
}
