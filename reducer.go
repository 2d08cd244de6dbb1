package simpleknn

import (
	"context"
	"fmt"
)

// reduceWindow computes, for every point, the mean of the k smallest squared
// distances to the points within window positions of it in idx's sorted
// order. The window is clamped at both ends of the order, not wrapped.
//
// Coincident points share the window of the first of them, so each gets the
// same value whichever original index landed where.
//
// out is indexed by original point index and must have length idx.Len().
func reduceWindow(ctx context.Context, dev *Device, idx *SpatialIndex, k, window int, out []float64) error {
	n := idx.Len()
	sorted := idx.Sorted

	res, err := dev.reserve(int64(n) * 8)
	if err != nil {
		return err
	}
	defer res.release()
	heads := duplicateRunHeads(sorted, n)

	return parallelFor(ctx, dev, n, func(start, end int) error {
		c := newCandidateSet(k)
		for p := start; p < end; p++ {
			c.reset()
			scanWindow(sorted, n, heads[p], window, c)
			out[idx.Order[p]] = c.mean()
		}
		return nil
	})
}

// duplicateRunHeads returns, for every sorted position, the first position of
// the run of identical points it belongs to.
func duplicateRunHeads(sorted []float64, n int) []int {
	heads := make([]int, n)
	for p := 1; p < n; p++ {
		if sameCoords(sorted[3*p:3*p+3], sorted[3*p-3:3*p]) {
			heads[p] = heads[p-1]
		} else {
			heads[p] = p
		}
	}
	return heads
}

func sameCoords(a, b []float64) bool {
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2]
}

// scanWindow offers sorted positions p-window..p+window (except p) to c.
func scanWindow(sorted []float64, n, p, window int, c *candidateSet) {
	pt := sorted[3*p : 3*p+3]
	lo := max(0, p-window)
	hi := min(n-1, p+window)
	for q := lo; q <= hi; q++ {
		if q == p {
			continue
		}
		c.push(sqDist3(pt, sorted[3*q:3*q+3]), q)
	}
}

// computeBoxBounds splits the sorted order into runs of boxSize consecutive
// positions and returns the bounding box of each run. The caller releases the
// returned reservation once it is done with the boxes.
func computeBoxBounds(ctx context.Context, dev *Device, sorted []float64, boxSize int) ([]BoundingBox, *reservation, error) {
	n := len(sorted) / 3
	numBoxes := (n + boxSize - 1) / boxSize
	res, err := dev.reserve(int64(numBoxes) * boundingBoxBytes)
	if err != nil {
		return nil, nil, err
	}
	boxes := make([]BoundingBox, numBoxes)
	err = parallelFor(ctx, dev, numBoxes, func(start, end int) error {
		for b := start; b < end; b++ {
			box := emptyBox()
			for p := b * boxSize; p < min(n, (b+1)*boxSize); p++ {
				box.extend(sorted[3*p : 3*p+3])
			}
			boxes[b] = box
		}
		return nil
	})
	if err != nil {
		res.release()
		return nil, nil, err
	}
	return boxes, res, nil
}

// reduceBoxes refines the window scan into an exact k-nearest-neighbor mean.
// The window result bounds the k-th distance from above; the candidates are
// then rebuilt from every box whose bounding box lies within that bound.
func reduceBoxes(ctx context.Context, dev *Device, idx *SpatialIndex, k, window, boxSize int, out []float64) error {
	n := idx.Len()
	sorted := idx.Sorted

	// Box bounds must be complete before any point scans them.
	boxes, res, err := computeBoxBounds(ctx, dev, sorted, boxSize)
	if err != nil {
		return err
	}
	defer res.release()

	return parallelFor(ctx, dev, n, func(start, end int) error {
		c := newCandidateSet(k)
		for p := start; p < end; p++ {
			pt := sorted[3*p : 3*p+3]

			c.reset()
			scanWindow(sorted, n, p, window, c)
			reject := c.worst()

			c.reset()
			for b, box := range boxes {
				bd := box.sqDistToPoint(pt)
				if bd > reject || bd > c.worst() {
					continue
				}
				for q := b * boxSize; q < min(n, (b+1)*boxSize); q++ {
					if q == p {
						continue
					}
					c.push(sqDist3(pt, sorted[3*q:3*q+3]), q)
				}
			}
			out[idx.Order[p]] = c.mean()
		}
		return nil
	})
}

// reduceKDTree computes the exact k-nearest-neighbor mean for every point
// with a KD-tree over data (flat, original order).
func reduceKDTree(ctx context.Context, dev *Device, data []float64, k, leafSize int, out []float64) error {
	n := len(data) / 3

	res, err := dev.reserve(kdTreeBytes(n, leafSize))
	if err != nil {
		return err
	}
	defer res.release()

	tree := NewKDTree(data, leafSize)
	if tree.NumPoints() != n {
		return fmt.Errorf("%w: kd-tree holds %d of %d points", ErrInternalInvariant, tree.NumPoints(), n)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return parallelFor(ctx, dev, n, func(start, end int) error {
		c := newCandidateSet(k)
		for i := start; i < end; i++ {
			c.reset()
			tree.nearest(data[3*i:3*i+3], i, c)
			out[i] = c.mean()
		}
		return nil
	})
}
