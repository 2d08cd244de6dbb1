package simpleknn

import (
	"math"
	"sort"
)

// NodeData describes a single node in a KDTree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
}

// KDTree is an exact nearest-neighbor index over 3D points. Points stay in
// the caller's flat row-major array and are reordered through an index
// permutation. ModeKDTree uses one internally; it is exported for callers
// that need individual k-NN queries, not only the per-point mean.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - every node carries the bounding box of its points
type KDTree struct {
	data     []float64 // flat row-major point data (n * 3), not owned
	n        int
	leafSize int
	idxArray []int // permutation: tree-order position → original index
	nodes    []NodeData
	bounds   []BoundingBox // one per node
	numNodes int
}

// NewKDTree builds a KD-tree over data, a flat buffer of 3D points.
// leafSize controls the max points per leaf node. data must not be mutated
// while the tree is in use.
func NewKDTree(data []float64, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}
	n := len(data) / 3

	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)
	t := &KDTree{
		data:     data,
		n:        n,
		leafSize: leafSize,
		idxArray: idxArray,
		nodes:    make([]NodeData, maxNodes),
		bounds:   make([]BoundingBox, maxNodes),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
		t.numNodes = kdCountNodes(t.nodes, 0, maxNodes)
	}
	return t
}

// kdTreeBytes estimates the memory NewKDTree allocates for n points.
func kdTreeBytes(n, leafSize int) int64 {
	const nodeBytes = 24 + boundingBoxBytes // node + bounds
	return int64(n)*8 + int64(kdMaxNodes(n, max(leafSize, 1)))*nodeBytes
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// kdCountNodes counts how many nodes were actually initialized by the build.
func kdCountNodes(nodes []NodeData, nodeID, maxNodes int) int {
	if nodeID >= maxNodes {
		return 0
	}
	if nodes[nodeID].IdxStart == 0 && nodes[nodeID].IdxEnd == 0 && nodeID != 0 {
		return 0
	}
	count := 1
	if !nodes[nodeID].IsLeaf {
		count += kdCountNodes(nodes, 2*nodeID+1, maxNodes)
		count += kdCountNodes(nodes, 2*nodeID+2, maxNodes)
	}
	return count
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.bounds = append(t.bounds, BoundingBox{})
	}

	box := emptyBox()
	for i := start; i < end; i++ {
		p := t.idxArray[i]
		box.extend(t.data[3*p : 3*p+3])
	}
	t.bounds[nodeID] = box

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	// Split along the axis with the greatest spread, at the median.
	ext := box.Extent()
	splitDim := 0
	for d := 1; d < 3; d++ {
		if ext[d] > ext[splitDim] {
			splitDim = d
		}
	}
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// sortByDimension sorts idxArray[start:end] by the given dimension.
func (t *KDTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		return data[3*sub[i]+dim] < data[3*sub[j]+dim]
	})
}

// NumPoints returns the number of indexed points.
func (t *KDTree) NumPoints() int { return t.n }

// NumNodes returns the number of initialized nodes.
func (t *KDTree) NumNodes() int { return t.numNodes }

// IdxArray returns the tree-order permutation of point indices. Each node
// covers IdxArray()[IdxStart:IdxEnd].
func (t *KDTree) IdxArray() []int { return t.idxArray }

// NodeDataArray returns the initialized nodes in array order.
func (t *KDTree) NodeDataArray() []NodeData { return t.nodes[:t.numNodes] }

// QueryKNN finds the k nearest points to query (a 3D point) and returns
// their indices and squared distances, sorted by distance. Point skip is
// never returned; pass -1 to consider every point.
func (t *KDTree) QueryKNN(query []float64, k, skip int) ([]int, []float64) {
	if k < 1 {
		return nil, nil
	}
	c := newCandidateSet(k)
	t.nearest(query, skip, c)
	idx := make([]int, c.size)
	dist := make([]float64, c.size)
	copy(idx, c.idx[:c.size])
	copy(dist, c.dist[:c.size])
	return idx, dist
}

// nearest fills c with the nearest neighbors of query, excluding point skip.
func (t *KDTree) nearest(query []float64, skip int, c *candidateSet) {
	if t.n == 0 {
		return
	}
	t.knnSearch(0, query, skip, c)
}

// knnSearch performs a depth-first traversal, visiting the nearer child
// first and pruning subtrees whose box lies beyond the current k-th distance.
func (t *KDTree) knnSearch(nodeID int, query []float64, skip int, c *candidateSet) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.IdxStart == node.IdxEnd && nodeID != 0 {
		return // uninitialized node
	}

	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			p := t.idxArray[i]
			if p == skip {
				continue
			}
			c.push(sqDist3(query, t.data[3*p:3*p+3]), p)
		}
		return
	}

	left := 2*nodeID + 1
	right := 2*nodeID + 2
	leftRdist := t.minRdistPoint(left, query)
	rightRdist := t.minRdistPoint(right, query)

	nearChild, farChild := left, right
	farRdist := rightRdist
	if rightRdist < leftRdist {
		nearChild, farChild = right, left
		farRdist = leftRdist
	}

	t.knnSearch(nearChild, query, skip, c)

	if farRdist < c.worst() {
		t.knnSearch(farChild, query, skip, c)
	}
}

// minRdistPoint is a lower bound on the squared distance between point and
// any point in node.
func (t *KDTree) minRdistPoint(node int, point []float64) float64 {
	if node >= len(t.nodes) {
		return math.Inf(1)
	}
	return t.bounds[node].sqDistToPoint(point)
}
