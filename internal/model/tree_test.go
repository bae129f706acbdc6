package model

import "testing"

func TestTreeSplitsStepFunction(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{1, 1, 1, 5, 5, 5}
	idx := []int{0, 1, 2, 3, 4, 5}

	tree := fitTree(x, y, idx, treeParams{maxDepth: 3, minSamplesSplit: 2, minSamplesLeaf: 1})
	if tree.leaves() != 2 {
		t.Fatalf("pure partitions should stop splitting, got %d leaves", tree.leaves())
	}
	root := tree.nodes[0]
	if root.threshold != 6.5 {
		t.Fatalf("expected midpoint threshold 6.5, got %v", root.threshold)
	}
	if got := tree.predict([]float64{2.5}); got != 1 {
		t.Fatalf("left prediction = %v", got)
	}
	if got := tree.predict([]float64{100}); got != 5 {
		t.Fatalf("right prediction = %v", got)
	}
}

func TestTreeRespectsDepthAndLeafSize(t *testing.T) {
	x := make([][]float64, 16)
	y := make([]float64, 16)
	idx := make([]int, 16)
	for i := range x {
		x[i] = []float64{float64(i)}
		y[i] = float64(i * i)
		idx[i] = i
	}

	shallow := fitTree(x, y, idx, treeParams{maxDepth: 1, minSamplesSplit: 2, minSamplesLeaf: 1})
	if shallow.leaves() != 2 {
		t.Fatalf("depth 1 tree should have 2 leaves, got %d", shallow.leaves())
	}
	deep := fitTree(x, y, idx, treeParams{maxDepth: 3, minSamplesSplit: 2, minSamplesLeaf: 1})
	if deep.leaves() != 8 {
		t.Fatalf("depth 3 tree over distinct targets should have 8 leaves, got %d", deep.leaves())
	}
	wide := fitTree(x, y, idx, treeParams{maxDepth: 10, minSamplesSplit: 2, minSamplesLeaf: 8})
	if wide.leaves() != 2 {
		t.Fatalf("min leaf 8 over 16 rows allows one split, got %d leaves", wide.leaves())
	}
}

func TestTreeConstantFeatureIsLeaf(t *testing.T) {
	x := [][]float64{{1}, {1}, {1}}
	y := []float64{1, 2, 3}
	tree := fitTree(x, y, []int{0, 1, 2}, treeParams{maxDepth: 3, minSamplesSplit: 2, minSamplesLeaf: 1})
	if len(tree.nodes) != 1 || tree.nodes[0].value != 2 {
		t.Fatalf("expected a single mean leaf, got %+v", tree.nodes)
	}
}
