package simpleknn

import "context"

// reduceBrute computes the exact k-nearest-neighbor mean for every point by
// comparing it with every other point. O(n²); intended for small inputs and
// as a reference for the other modes.
func reduceBrute(ctx context.Context, dev *Device, data []float64, k int, out []float64) error {
	n := len(data) / 3
	return parallelFor(ctx, dev, n, func(start, end int) error {
		c := newCandidateSet(k)
		for i := start; i < end; i++ {
			c.reset()
			pt := data[3*i : 3*i+3]
			for j := 0; j < n; j++ {
				if j != i {
					c.push(sqDist3(pt, data[3*j:3*j+3]), j)
				}
			}
			out[i] = c.mean()
		}
		return nil
	})
}
