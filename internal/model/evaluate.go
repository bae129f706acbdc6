package model

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"marquee/internal/features"
)

// Evaluation is the held-out score of one fit.
type Evaluation struct {
	TrainSize   int           `json:"train_size"`
	TestSize    int           `json:"test_size"`
	MSE         float64       `json:"mse"`
	RMSE        float64       `json:"rmse"`
	BaselineMSE float64       `json:"baseline_mse"`
	Actual      []float64     `json:"-"`
	Predicted   []float64     `json:"-"`
	FitDuration time.Duration `json:"fit_duration"`
}

// Evaluate fits reg on the training partition, predicts the test partition
// and scores the predictions. BaselineMSE is the error of always predicting
// the training mean.
func Evaluate(ctx context.Context, reg Regressor, p *features.Prepared) (Evaluation, error) {
	if p == nil || len(p.TrainX) == 0 || len(p.TestX) == 0 {
		return Evaluation{}, ErrEmptyInput
	}
	eval := Evaluation{TrainSize: len(p.TrainY), TestSize: len(p.TestY)}

	start := time.Now()
	var err error
	if cf, ok := reg.(ContextFitter); ok {
		err = cf.FitContext(ctx, p.TrainX, p.TrainY)
	} else {
		err = reg.Fit(p.TrainX, p.TrainY)
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("fit: %w", err)
	}
	eval.FitDuration = time.Since(start)
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}

	predicted, err := reg.Predict(p.TestX)
	if err != nil {
		return Evaluation{}, fmt.Errorf("predict: %w", err)
	}
	mse, err := MeanSquaredError(p.TestY, predicted)
	if err != nil {
		return Evaluation{}, err
	}
	baseline := make([]float64, len(p.TestY))
	floats.AddConst(stat.Mean(p.TrainY, nil), baseline)
	baselineMSE, err := MeanSquaredError(p.TestY, baseline)
	if err != nil {
		return Evaluation{}, err
	}

	eval.MSE = mse
	eval.RMSE = math.Sqrt(mse)
	eval.BaselineMSE = baselineMSE
	eval.Actual = append([]float64(nil), p.TestY...)
	eval.Predicted = predicted
	return eval, nil
}

// MeanSquaredError averages the squared differences between actual and
// predicted values.
func MeanSquaredError(actual, predicted []float64) (float64, error) {
	if len(actual) == 0 {
		return 0, ErrEmptyInput
	}
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("%w: %d actual values, %d predictions", ErrShapeMismatch, len(actual), len(predicted))
	}
	diff := make([]float64, len(actual))
	floats.SubTo(diff, actual, predicted)
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}
