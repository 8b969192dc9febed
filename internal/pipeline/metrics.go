package pipeline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scores are the regression metrics reported for a fitted model.
type Scores struct {
	R2   float64 `json:"r2_score"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// Score compares predictions with ground truth.
func Score(yTrue, yPred []float64) (Scores, error) {
	if len(yTrue) == 0 {
		return Scores{}, fmt.Errorf("no values to score")
	}
	if len(yTrue) != len(yPred) {
		return Scores{}, fmt.Errorf("got %d predictions for %d values", len(yPred), len(yTrue))
	}
	mse := MSE(yTrue, yPred)
	return Scores{
		R2:   stat.RSquaredFrom(yPred, yTrue, nil),
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  MAE(yTrue, yPred),
	}, nil
}

// MSE is the mean squared error of equal-length slices.
func MSE(yTrue, yPred []float64) float64 {
	d := floats.Distance(yTrue, yPred, 2)
	return d * d / float64(len(yTrue))
}

// MAE is the mean absolute error of equal-length slices.
func MAE(yTrue, yPred []float64) float64 {
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue))
}
