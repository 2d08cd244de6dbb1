package simpleknn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateSet_KeepsSmallest(t *testing.T) {
	c := newCandidateSet(3)
	for i, d := range []float64{9, 4, 7, 1, 8, 2} {
		c.push(d, i)
	}
	assert.Equal(t, 3, c.size)
	assert.Equal(t, []float64{1, 2, 4}, c.dist)
	assert.Equal(t, []int{3, 5, 1}, c.idx)
	assert.Equal(t, 4.0, c.worst())
	assert.InDelta(t, 7.0/3, c.mean(), floatTol)
}

func TestCandidateSet_Partial(t *testing.T) {
	c := newCandidateSet(3)
	assert.Equal(t, 0.0, c.mean())
	assert.True(t, math.IsInf(c.worst(), 1))

	c.push(25, 0)
	assert.Equal(t, 25.0, c.mean())
	assert.True(t, math.IsInf(c.worst(), 1))
}

func TestCandidateSet_Ties(t *testing.T) {
	c := newCandidateSet(2)
	c.push(1, 0)
	c.push(1, 1)
	c.push(1, 2)
	assert.Equal(t, []int{0, 1}, c.idx)
	assert.Equal(t, 1.0, c.mean())
}

func TestCandidateSet_Reset(t *testing.T) {
	c := newCandidateSet(2)
	c.push(3, 0)
	c.push(5, 1)
	c.reset()
	assert.Equal(t, 0.0, c.mean())
	c.push(7, 2)
	assert.Equal(t, 7.0, c.mean())
}
