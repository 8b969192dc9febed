// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})
	BacktestRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_rows_total",
		Help:      "Total number of replayed rows by outcome",
	}, []string{"outcome"})
)

// Backtest histogram and gauge vectors
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	BacktestError = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_error",
		Help:      "Error metrics of the last backtest run",
	}, []string{"metric"})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "no_predictions", "failure"
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordBacktestRow records the outcome of one replayed row.
// outcome should be one of: "ok", "request_error", "missing_prediction"
func RecordBacktestRow(outcome string) {
	BacktestRowsTotal.WithLabelValues(outcome).Inc()
}

// UpdateBacktestError sets the MAE/MSE gauges of the last run.
func UpdateBacktestError(mae, mse float64) {
	BacktestError.WithLabelValues("mae").Set(mae)
	BacktestError.WithLabelValues("mse").Set(mse)
}
