package models

// BacktestRow is one replayed dataset row and what the live service answered.
type BacktestRow struct {
	ID          int      `json:"id"`
	Actual      float64  `json:"actual_value"`
	Predicted   *float64 `json:"predicted_value"`
	PayloadSent string   `json:"payload_sent"`
	Error       string   `json:"error,omitempty"`
}

// Valid reports whether the row produced a prediction.
func (r BacktestRow) Valid() bool { return r.Predicted != nil && r.Error == "" }

// BacktestSummary is one appended line of the metrics history.
type BacktestSummary struct {
	MAE            float64 `json:"mae"`
	MSE            float64 `json:"mse"`
	NumPredictions int     `json:"num_predictions"`
}
