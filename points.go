package simpleknn

import "math"

// Points is a read-only set of 3D points stored as a flat row-major
// []float64 of length 3*Len(). Point i is (flat[3i], flat[3i+1], flat[3i+2]).
type Points struct {
	flat []float64
}

// NewPoints validates a flat coordinate buffer. It fails with an
// *InputError (matching ErrInvalidInput) when the buffer is empty, its
// length is not a multiple of 3, or any coordinate is NaN or infinite.
//
// The buffer is not copied; the caller must not mutate it while the
// Points value is in use.
func NewPoints(flat []float64) (Points, error) {
	if len(flat) == 0 {
		return Points{}, invalidInput(-1, "need at least one point")
	}
	if len(flat)%3 != 0 {
		return Points{}, invalidInput(-1, "buffer length %d is not a multiple of 3", len(flat))
	}
	for i, v := range flat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Points{}, invalidInput(i, "non-finite coordinate %v", v)
		}
	}
	return Points{flat: flat}, nil
}

// PointsFromTriples flattens and validates a slice of (x, y, z) triples.
func PointsFromTriples(triples [][3]float64) (Points, error) {
	flat := make([]float64, 0, 3*len(triples))
	for _, p := range triples {
		flat = append(flat, p[0], p[1], p[2])
	}
	return NewPoints(flat)
}

// Len returns the number of points.
func (p Points) Len() int { return len(p.flat) / 3 }

// At returns the coordinates of point i.
func (p Points) At(i int) [3]float64 {
	return [3]float64{p.flat[3*i], p.flat[3*i+1], p.flat[3*i+2]}
}

// Flat returns the underlying coordinate buffer.
func (p Points) Flat() []float64 { return p.flat }

// sqDist3 is the squared Euclidean distance between the 3D points stored at
// a[0:3] and b[0:3].
func sqDist3(a, b []float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}
