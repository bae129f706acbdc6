package model

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFitted     = errors.New("regressor is not fitted")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrEmptyInput    = errors.New("empty input")
)

// Regressor learns a mapping from feature rows to a numeric target.
type Regressor interface {
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) ([]float64, error)
}

// ContextFitter is implemented by regressors whose training can be canceled.
type ContextFitter interface {
	FitContext(ctx context.Context, x [][]float64, y []float64) error
}

func checkMatrix(x [][]float64) (int, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	width := len(x[0])
	if width == 0 {
		return 0, fmt.Errorf("%w: rows have no features", ErrShapeMismatch)
	}
	for i, row := range x {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), width)
		}
	}
	return width, nil
}
