package simpleknn

import "math"

// candidateSet keeps the k smallest squared distances seen so far, sorted
// ascending, together with the point each came from. It is reused across
// points by one batch and never shared.
type candidateSet struct {
	dist []float64 // len k; the first size entries are valid
	idx  []int
	size int
}

func newCandidateSet(k int) *candidateSet {
	return &candidateSet{dist: make([]float64, k), idx: make([]int, k)}
}

func (c *candidateSet) reset() { c.size = 0 }

// worst returns the largest retained distance, or +Inf while fewer than k
// candidates have been seen.
func (c *candidateSet) worst() float64 {
	if c.size < len(c.dist) {
		return math.Inf(1)
	}
	return c.dist[c.size-1]
}

// push offers point i at squared distance d and keeps it if it is among the
// k smallest.
func (c *candidateSet) push(d float64, i int) {
	k := len(c.dist)
	if c.size == k {
		if d >= c.dist[k-1] {
			return
		}
		c.size--
	}
	j := c.size
	for j > 0 && c.dist[j-1] > d {
		c.dist[j] = c.dist[j-1]
		c.idx[j] = c.idx[j-1]
		j--
	}
	c.dist[j] = d
	c.idx[j] = i
	c.size++
}

// mean averages the retained distances. An empty set yields 0.
func (c *candidateSet) mean() float64 {
	if c.size == 0 {
		return 0
	}
	var sum float64
	for _, d := range c.dist[:c.size] {
		sum += d
	}
	return sum / float64(c.size)
}
