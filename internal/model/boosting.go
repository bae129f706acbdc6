package model

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Params configures GradientBoosting.
type Params struct {
	NEstimators     int     `json:"n_estimators"`
	LearningRate    float64 `json:"learning_rate"`
	MaxDepth        int     `json:"max_depth"`
	MinSamplesSplit int     `json:"min_samples_split"`
	MinSamplesLeaf  int     `json:"min_samples_leaf"`
}

// DefaultParams returns the customary gradient boosting defaults.
func DefaultParams() Params {
	return Params{NEstimators: 100, LearningRate: 0.1, MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1}
}

// Validate rejects parameters that cannot train.
func (p Params) Validate() error {
	switch {
	case p.NEstimators <= 0:
		return fmt.Errorf("n_estimators must be positive, got %d", p.NEstimators)
	case p.LearningRate <= 0:
		return fmt.Errorf("learning_rate must be positive, got %v", p.LearningRate)
	case p.MaxDepth <= 0:
		return fmt.Errorf("max_depth must be positive, got %d", p.MaxDepth)
	case p.MinSamplesSplit < 2:
		return fmt.Errorf("min_samples_split must be at least 2, got %d", p.MinSamplesSplit)
	case p.MinSamplesLeaf < 1:
		return fmt.Errorf("min_samples_leaf must be at least 1, got %d", p.MinSamplesLeaf)
	}
	return nil
}

// ProgressFunc is called after each boosting stage.
type ProgressFunc func(done, total int)

// GradientBoosting is a least-squares gradient boosted ensemble of regression
// trees. Each stage fits a tree to the current residuals and adds it, scaled
// by the learning rate, to the running prediction.
type GradientBoosting struct {
	Params   Params
	Progress ProgressFunc

	width int
	init  float64
	trees []*regressionTree
}

// NewGradientBoosting returns an unfitted regressor.
func NewGradientBoosting(params Params) *GradientBoosting {
	return &GradientBoosting{Params: params}
}

func (g *GradientBoosting) Fit(x [][]float64, y []float64) error {
	return g.FitContext(context.Background(), x, y)
}

// FitContext trains the ensemble, checking ctx between stages.
func (g *GradientBoosting) FitContext(ctx context.Context, x [][]float64, y []float64) error {
	if err := g.Params.Validate(); err != nil {
		return err
	}
	width, err := checkMatrix(x)
	if err != nil {
		return err
	}
	if len(y) != len(x) {
		return fmt.Errorf("%w: %d rows but %d targets", ErrShapeMismatch, len(x), len(y))
	}

	g.width = width
	g.trees = g.trees[:0]
	g.init = stat.Mean(y, nil)

	n := len(y)
	current := make([]float64, n)
	for i := range current {
		current[i] = g.init
	}
	residual := make([]float64, n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	params := treeParams{
		maxDepth:        g.Params.MaxDepth,
		minSamplesSplit: g.Params.MinSamplesSplit,
		minSamplesLeaf:  g.Params.MinSamplesLeaf,
	}

	for stage := 0; stage < g.Params.NEstimators; stage++ {
		if err := ctx.Err(); err != nil {
			g.trees = nil
			return err
		}
		// Negative gradient of squared error is the residual.
		floats.SubTo(residual, y, current)
		tree := fitTree(x, residual, idx, params)
		for i, row := range x {
			current[i] += g.Params.LearningRate * tree.predict(row)
		}
		g.trees = append(g.trees, tree)
		if g.Progress != nil {
			g.Progress(stage+1, g.Params.NEstimators)
		}
	}
	return nil
}

// Predict scores each row of x.
func (g *GradientBoosting) Predict(x [][]float64) ([]float64, error) {
	if len(g.trees) == 0 {
		return nil, ErrNotFitted
	}
	width, err := checkMatrix(x)
	if err != nil {
		return nil, err
	}
	if width != g.width {
		return nil, fmt.Errorf("%w: fitted on %d features, got %d", ErrShapeMismatch, g.width, width)
	}
	out := make([]float64, len(x))
	for i, row := range x {
		pred := g.init
		for _, tree := range g.trees {
			pred += g.Params.LearningRate * tree.predict(row)
		}
		out[i] = pred
	}
	return out, nil
}

// Stages reports the number of fitted trees.
func (g *GradientBoosting) Stages() int { return len(g.trees) }
