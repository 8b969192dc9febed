package models

import "time"

// RegressionMetrics are the scores of one data partition.
type RegressionMetrics struct {
	R2   float64 `json:"r2_score"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// MetricsRecord is written to reports/metrics.json after every training run.
type MetricsRecord struct {
	RunID         string            `json:"run_id"`
	TrainedAt     time.Time         `json:"trained_at"`
	Train         RegressionMetrics `json:"train"`
	Test          RegressionMetrics `json:"test"`
	BestModelName string            `json:"best_model_name"`
	BestLoss      float64           `json:"best_loss"`
	BestConfig    map[string]any    `json:"best_config,omitempty"`
	TrainRows     int               `json:"train_rows"`
	TestRows      int               `json:"test_rows"`
}
