package simpleknn

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultMinDist2 is the floor applied to mean squared distances before they
// are turned into scales, so coincident points do not produce log(0).
const DefaultMinDist2 = 1e-7

// InitialScales converts mean squared neighbor distances into isotropic
// log-space scales: each value is clamped to at least minDist2 and mapped to
// log(sqrt(d)), repeated on all three axes. minDist2 <= 0 means
// DefaultMinDist2.
func InitialScales(dist2 []float64, minDist2 float64) [][3]float64 {
	if minDist2 <= 0 {
		minDist2 = DefaultMinDist2
	}
	scales := make([][3]float64, len(dist2))
	for i, d := range dist2 {
		s := 0.5 * math.Log(math.Max(d, minDist2))
		scales[i] = [3]float64{s, s, s}
	}
	return scales
}

// Summary describes the distribution of a result.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
	P90    float64
}

// Summarize computes descriptive statistics of dist2. An empty input yields
// a zero Summary.
func Summarize(dist2 []float64) Summary {
	if len(dist2) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(dist2)
	slices.Sort(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		std = 0
	}
	return Summary{
		Count:  len(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Mean:   mean,
		StdDev: std,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}
