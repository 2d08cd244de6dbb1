package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPoints(t *testing.T) {
	in := `# header
0 0 0
1,2,3

4	5	6
  -1.5e2 0.25 7  
`
	flat, err := readPoints(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1, 2, 3, 4, 5, 6, -150, 0.25, 7}, flat)
}

func TestReadPoints_Errors(t *testing.T) {
	_, err := readPoints(strings.NewReader("0 0 0\n1 2\n"))
	assert.ErrorContains(t, err, "line 2: want 3 coordinates, got 2")

	_, err = readPoints(strings.NewReader("1 two 3\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestReadPoints_Empty(t *testing.T) {
	flat, err := readPoints(strings.NewReader("# nothing\n\n"))
	require.NoError(t, err)
	assert.Empty(t, flat)
}

func TestWriteValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeValues(&buf, []float64{0, 1.5, 1e-9}))
	assert.Equal(t, "0\n1.5\n1e-09\n", buf.String())
}

func TestWriteScales(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScales(&buf, [][3]float64{{0, -1, 2.5}}))
	assert.Equal(t, "0 -1 2.5\n", buf.String())
}
