package model

import (
	"context"
	"fmt"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"gonum.org/v1/gonum/mat"
)

// LightGBM boosts histogram-binned regression trees with the scigo LightGBM
// trainer under the L2 objective. Trees grow to at most MaxDepth levels and
// 2^MaxDepth leaves so the shape matches GradientBoosting for the same Params.
type LightGBM struct {
	Params   Params
	Seed     uint64
	Progress ProgressFunc

	width     int
	predictor *lightgbm.Predictor
}

// NewLightGBM returns an unfitted regressor.
func NewLightGBM(params Params, seed uint64) *LightGBM {
	return &LightGBM{Params: params, Seed: seed}
}

func (l *LightGBM) Fit(x [][]float64, y []float64) error {
	return l.FitContext(context.Background(), x, y)
}

// FitContext trains the ensemble. ctx is checked around every boosting
// iteration and its error is returned wrapped.
func (l *LightGBM) FitContext(ctx context.Context, x [][]float64, y []float64) (err error) {
	if err := l.Params.Validate(); err != nil {
		return err
	}
	width, err := checkMatrix(x)
	if err != nil {
		return err
	}
	if len(y) != len(x) {
		return fmt.Errorf("%w: %d rows but %d targets", ErrShapeMismatch, len(x), len(y))
	}

	l.predictor = nil
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lightgbm fit: %v", r)
		}
	}()

	trainer := lightgbm.NewTrainer(l.trainingParams())
	total := l.Params.NEstimators
	calls := 0
	// The trainer invokes callbacks before and after every iteration.
	err = trainer.FitWithCallbacks(dense(x, width), mat.NewDense(len(y), 1, append([]float64(nil), y...)), func(env *lightgbm.CallbackEnv) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		calls++
		if calls%2 == 0 && l.Progress != nil {
			l.Progress(calls/2, total)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("lightgbm fit: %w", err)
	}

	predictor := lightgbm.NewPredictor(trainer.GetModel())
	predictor.SetDeterministic(true)
	l.predictor = predictor
	l.width = width
	return nil
}

func (l *LightGBM) Predict(x [][]float64) ([]float64, error) {
	if l.predictor == nil {
		return nil, ErrNotFitted
	}
	width, err := checkMatrix(x)
	if err != nil {
		return nil, err
	}
	if width != l.width {
		return nil, fmt.Errorf("%w: rows have %d features, model was fitted on %d", ErrShapeMismatch, width, l.width)
	}
	out, err := l.predictor.Predict(dense(x, width))
	if err != nil {
		return nil, fmt.Errorf("lightgbm predict: %w", err)
	}
	return mat.Col(nil, 0, out), nil
}

func (l *LightGBM) trainingParams() lightgbm.TrainingParams {
	p := l.Params
	return lightgbm.TrainingParams{
		NumIterations:   p.NEstimators,
		LearningRate:    p.LearningRate,
		NumLeaves:       1 << p.MaxDepth,
		MaxDepth:        p.MaxDepth,
		MinDataInLeaf:   p.MinSamplesLeaf,
		MinGainToSplit:  1e-7,
		BaggingFraction: 1,
		FeatureFraction: 1,
		MaxBin:          255,
		MinDataInBin:    1,
		Objective:       "regression",
		NumClass:        1,
		BoostingType:    "gbdt",
		Metric:          "l2",
		Seed:            int(l.Seed),
		Deterministic:   true,
		Verbosity:       -1,
	}
}

func dense(x [][]float64, width int) *mat.Dense {
	data := make([]float64, 0, len(x)*width)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(len(x), width, data)
}
