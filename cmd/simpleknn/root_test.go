package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tetrahedron = `0 0 0
1 0 0
0 1 0
0 0 1
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func parseLines(t *testing.T, s string) []float64 {
	t.Helper()
	var vals []float64
	for _, line := range strings.Fields(s) {
		v, err := strconv.ParseFloat(line, 64)
		require.NoError(t, err)
		vals = append(vals, v)
	}
	return vals
}

func TestComputeCmd_Stdin(t *testing.T) {
	for _, mode := range []string{"window", "boxes", "kdtree", "brute"} {
		out, err := execute(t, tetrahedron, "compute", "-i", "-", "--mode", mode, "--log-level", "error")
		require.NoError(t, err, mode)

		vals := parseLines(t, out)
		require.Len(t, vals, 4, mode)
		assert.InDelta(t, 1.0, vals[0], 1e-12, mode)
		for _, v := range vals[1:] {
			assert.InDelta(t, 5.0/3.0, v, 1e-12, mode)
		}
	}
}

func TestComputeCmd_FilesAndMetrics(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cloud.xyz")
	output := filepath.Join(dir, "out.txt")
	metrics := filepath.Join(dir, "knn.prom")
	require.NoError(t, os.WriteFile(input, []byte(tetrahedron), 0o644))

	_, err := execute(t, "", "compute", "-i", input, "-o", output, "--scales",
		"--metrics-out", metrics, "--log-level", "error")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Len(t, strings.Fields(lines[0]), 3)
	assert.Equal(t, "0 0 0", lines[0], "scale of a unit mean distance is log(1)")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "simpleknn_points_processed_total 4")
	assert.Contains(t, string(prom), `simpleknn_compute_duration_seconds_count{mode="window",status="ok"} 1`)
}

func TestComputeCmd_ConfigFileWithFlagOverride(t *testing.T) {
	cfg := writeFile(t, "knn.yaml", "compute:\n  k: 1\n  mode: kdtree\nlog:\n  level: error\n")

	out, err := execute(t, tetrahedron, "compute", "-i", "-", "-c", cfg)
	require.NoError(t, err)
	vals := parseLines(t, out)
	for _, v := range vals {
		assert.InDelta(t, 1.0, v, 1e-12)
	}

	out, err = execute(t, tetrahedron, "compute", "-i", "-", "-c", cfg, "--k", "3")
	require.NoError(t, err)
	assert.InDelta(t, 5.0/3.0, parseLines(t, out)[1], 1e-12)
}

func TestComputeCmd_Errors(t *testing.T) {
	_, err := execute(t, "", "compute")
	assert.ErrorContains(t, err, "required flag")

	_, err = execute(t, "0 0 0\n1 1\n", "compute", "-i", "-")
	assert.ErrorContains(t, err, "want 3 coordinates")

	_, err = execute(t, "", "compute", "-i", "-", "--log-level", "error")
	assert.ErrorContains(t, err, "invalid input")

	_, err = execute(t, tetrahedron, "compute", "-i", "-", "--mode", "octree", "--log-level", "error")
	assert.ErrorContains(t, err, "invalid Mode")

	_, err = execute(t, tetrahedron, "compute", "-i", "-", "--memory-limit", "16", "--log-level", "error")
	assert.ErrorContains(t, err, "resource exhausted")

	_, err = execute(t, tetrahedron, "compute", "-i", "-", "--memory-limit=-1")
	assert.ErrorContains(t, err, "memory_limit_bytes must be >= 0")

	_, err = execute(t, tetrahedron, "compute", "-i", "-", "--log-format", "xml")
	assert.ErrorContains(t, err, "log.format")

	_, err = execute(t, tetrahedron, "compute", "-i", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "opening input")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}
