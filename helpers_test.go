package simpleknn

import (
	"math"
	"math/rand"
	"sort"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// randomCloud returns n points uniformly distributed in [0, 100)³.
func randomCloud(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, 3*n)
	for i := range data {
		data[i] = rng.Float64() * 100
	}
	return data
}

// bruteSqDists returns the sorted squared distances from point q to every
// other point.
func bruteSqDists(data []float64, q int) []float64 {
	n := len(data) / 3
	dists := make([]float64, 0, n-1)
	for j := 0; j < n; j++ {
		if j == q {
			continue
		}
		dx := data[3*q] - data[3*j]
		dy := data[3*q+1] - data[3*j+1]
		dz := data[3*q+2] - data[3*j+2]
		dists = append(dists, dx*dx+dy*dy+dz*dz)
	}
	sort.Float64s(dists)
	return dists
}

// bruteMeans is an independent reference for the mean of the k smallest
// squared distances of every point.
func bruteMeans(data []float64, k int) []float64 {
	n := len(data) / 3
	out := make([]float64, n)
	for q := 0; q < n; q++ {
		dists := bruteSqDists(data, q)
		m := min(k, len(dists))
		if m == 0 {
			continue
		}
		var sum float64
		for _, d := range dists[:m] {
			sum += d
		}
		out[q] = sum / float64(m)
	}
	return out
}

// testDevice returns a device with small batches so that even tiny inputs
// are spread over several goroutines.
func testDevice(workers int) *Device {
	return NewDevice(DeviceConfig{Workers: workers, BatchSize: 4})
}
