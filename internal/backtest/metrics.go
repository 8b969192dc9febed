package backtest

import (
	"errors"

	"github.com/yourusername/housing-predictor/internal/ml"
	"github.com/yourusername/housing-predictor/internal/models"
	"github.com/yourusername/housing-predictor/internal/pipeline"
)

// CalculateSummary computes MAE and MSE over the rows that produced a
// prediction. ok is false when there are none.
func CalculateSummary(rows []models.BacktestRow) (summary models.BacktestSummary, ok bool) {
	var actual, predicted []float64
	for _, row := range rows {
		if !row.Valid() {
			continue
		}
		actual = append(actual, row.Actual)
		predicted = append(predicted, *row.Predicted)
	}
	if len(actual) == 0 {
		return models.BacktestSummary{}, false
	}
	return models.BacktestSummary{
		MAE:            pipeline.MAE(actual, predicted),
		MSE:            pipeline.MSE(actual, predicted),
		NumPredictions: len(actual),
	}, true
}

func rowOutcome(err error) string {
	if errors.Is(err, ml.ErrMissingPrediction) {
		return "missing_prediction"
	}
	return "request_error"
}

func rowError(err error) string {
	if errors.Is(err, ml.ErrMissingPrediction) {
		return ml.ErrMissingPrediction.Error()
	}
	return err.Error()
}
