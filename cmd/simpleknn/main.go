// Command simpleknn computes the mean squared distance from every point of a
// 3D point cloud to its nearest neighbors.
//
// Usage:
//
//	simpleknn compute --input points.xyz [flags]
//
// The input holds one point per line: three numbers separated by spaces,
// tabs or commas. Blank lines and lines starting with '#' are ignored.
// Output is one value per line in input order, or three log-scales per line
// with --scales.
//
// Example:
//
//	# Exact search, 8 workers, scales for Gaussian initialization
//	simpleknn compute --input cloud.xyz --mode boxes --workers 8 --scales
//
//	# Settings from a file, metrics in Prometheus text format
//	simpleknn compute --config knn.yaml --input - --metrics-out knn.prom < cloud.xyz
package main

import (
	"fmt"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
