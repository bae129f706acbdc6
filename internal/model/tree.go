package model

import "sort"

const noChild = -1

type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// regressionTree is a binary tree stored as a flat node slice; node 0 is the
// root. A node with left == noChild is a leaf.
type regressionTree struct {
	nodes []treeNode
}

type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

type treeBuilder struct {
	x      [][]float64
	target []float64
	params treeParams
	tree   *regressionTree
}

// fitTree grows a squared-error regression tree over the rows in idx.
func fitTree(x [][]float64, target []float64, idx []int, params treeParams) *regressionTree {
	b := &treeBuilder{x: x, target: target, params: params, tree: &regressionTree{}}
	b.build(idx, 0)
	return b.tree
}

func (b *treeBuilder) build(idx []int, depth int) int {
	pos := len(b.tree.nodes)
	b.tree.nodes = append(b.tree.nodes, treeNode{left: noChild, right: noChild, value: b.mean(idx)})

	if depth >= b.params.maxDepth || len(idx) < b.params.minSamplesSplit {
		return pos
	}
	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return pos
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.tree.nodes[pos].feature = feature
	b.tree.nodes[pos].threshold = threshold
	b.tree.nodes[pos].left = l
	b.tree.nodes[pos].right = r
	return pos
}

func (b *treeBuilder) mean(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += b.target[i]
	}
	return sum / float64(len(idx))
}

// bestSplit maximizes the reduction in squared error,
// sumL²/nL + sumR²/nR - sum²/n, over every feature and every boundary
// between distinct sorted values that leaves minSamplesLeaf rows per side.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	n := len(idx)
	minLeaf := max(b.params.minSamplesLeaf, 1)
	var total float64
	for _, i := range idx {
		total += b.target[i]
	}
	base := total * total / float64(n)

	bestGain := 1e-12
	bestFeature, bestThreshold, found := 0, 0.0, false
	sorted := make([]int, n)
	width := len(b.x[idx[0]])
	for f := 0; f < width; f++ {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

		var leftSum float64
		for k := 1; k < n; k++ {
			leftSum += b.target[sorted[k-1]]
			if k < minLeaf || n-k < minLeaf {
				continue
			}
			lo, hi := b.x[sorted[k-1]][f], b.x[sorted[k]][f]
			if lo == hi {
				continue
			}
			rightSum := total - leftSum
			gain := leftSum*leftSum/float64(k) + rightSum*rightSum/float64(n-k) - base
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
				if bestThreshold >= hi {
					bestThreshold = lo
				}
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func (t *regressionTree) predict(row []float64) float64 {
	pos := 0
	for {
		node := t.nodes[pos]
		if node.left == noChild {
			return node.value
		}
		if row[node.feature] <= node.threshold {
			pos = node.left
		} else {
			pos = node.right
		}
	}
}

func (t *regressionTree) leaves() int {
	count := 0
	for _, node := range t.nodes {
		if node.left == noChild {
			count++
		}
	}
	return count
}
