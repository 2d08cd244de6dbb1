package simpleknn

import (
	"context"
	"math"
)

// BoundingBox is an axis-aligned box in 3D.
type BoundingBox struct {
	Min, Max [3]float64
}

// boundingBoxBytes is the device charge for one BoundingBox.
const boundingBoxBytes = 48

// emptyBox returns a box that contains nothing; extending it by any point
// yields the box around that point.
func emptyBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		Min: [3]float64{inf, inf, inf},
		Max: [3]float64{-inf, -inf, -inf},
	}
}

// extend grows b to contain the point p[0:3].
func (b *BoundingBox) extend(p []float64) {
	for d := 0; d < 3; d++ {
		if p[d] < b.Min[d] {
			b.Min[d] = p[d]
		}
		if p[d] > b.Max[d] {
			b.Max[d] = p[d]
		}
	}
}

// merge grows b to contain o.
func (b *BoundingBox) merge(o BoundingBox) {
	for d := 0; d < 3; d++ {
		b.Min[d] = math.Min(b.Min[d], o.Min[d])
		b.Max[d] = math.Max(b.Max[d], o.Max[d])
	}
}

// Extent returns the side lengths of the box.
func (b BoundingBox) Extent() [3]float64 {
	return [3]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// sqDistToPoint returns the squared distance from p[0:3] to the closest
// point of the box, 0 when p is inside.
func (b BoundingBox) sqDistToPoint(p []float64) float64 {
	var rdist float64
	for d := 0; d < 3; d++ {
		var gap float64
		if p[d] < b.Min[d] {
			gap = b.Min[d] - p[d]
		} else if p[d] > b.Max[d] {
			gap = p[d] - b.Max[d]
		}
		rdist += gap * gap
	}
	return rdist
}

// computeBounds is a parallel min/max reduction over the flat 3D points in
// data. Each batch reduces into its own partial box; the partials are merged
// after parallelFor returns.
func computeBounds(ctx context.Context, dev *Device, data []float64) (BoundingBox, error) {
	n := len(data) / 3
	nb := numBatches(dev, n)
	res, err := dev.reserve(int64(nb) * boundingBoxBytes)
	if err != nil {
		return BoundingBox{}, err
	}
	defer res.release()
	partials := make([]BoundingBox, nb)
	batch := dev.BatchSize()

	err = parallelFor(ctx, dev, n, func(start, end int) error {
		box := emptyBox()
		for i := start; i < end; i++ {
			box.extend(data[3*i : 3*i+3])
		}
		partials[start/batch] = box
		return nil
	})
	if err != nil {
		return BoundingBox{}, err
	}

	box := emptyBox()
	for _, p := range partials {
		box.merge(p)
	}
	return box, nil
}
