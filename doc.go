// Package simpleknn computes, for every point of a 3D point cloud, the mean
// squared distance to its k nearest neighbors (k=3 by default). The value is
// a local density estimate commonly used to seed per-point scales, for
// example the initial Gaussian scales of a splatting model.
//
// Basic usage:
//
//	dev := simpleknn.NewDevice(simpleknn.DefaultDeviceConfig())
//	dist2, err := simpleknn.MeanSquaredDistances(ctx, dev, xyz, simpleknn.DefaultConfig())
//	// dist2[i] is the mean squared distance of point i to its 3 nearest neighbors
//	scales := simpleknn.InitialScales(dist2, simpleknn.DefaultMinDist2)
//
// xyz is a flat buffer x0, y0, z0, x1, y1, z1, ... of finite values.
//
// # Pipeline
//
// Points are copied onto the Device, which charges them against its memory
// budget. The spatial index computes the bounding box with a parallel
// reduction, quantizes every point to a 63-bit Z-order (Morton) key and sorts
// by key, then by coordinates, so points close in space tend to sit close in
// the order and the order does not depend on how the input is labeled. The
// reducer then scans a small window of positions around each point and
// averages the K smallest squared distances, writing the result back in the
// caller's point order.
//
// # Modes
//
// The window scan is approximate. Config.Mode selects an exact search
// instead:
//
//	cfg.Mode = simpleknn.ModeWindow // Z-order window scan (default)
//	cfg.Mode = simpleknn.ModeBoxes  // window seed + box-pruned exhaustive scan
//	cfg.Mode = simpleknn.ModeKDTree // KD-tree queries
//	cfg.Mode = simpleknn.ModeBrute  // all pairs, for small inputs
//
// For individual neighbor queries, build a KDTree directly:
//
//	tree := simpleknn.NewKDTree(xyz, 16)
//	idx, dist2 := tree.QueryKNN(xyz[0:3], 3, 0) // 3 nearest to point 0, excluding it
//
// # Errors
//
// Every failure aborts the whole call: ErrInvalidInput for malformed input or
// configuration, ErrResourceExhausted when the device memory budget is
// exceeded, ErrInternalInvariant for defects, or the context error.
package simpleknn
