// Package metrics defines training-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "training_runs_total",
		Help:      "Total number of training runs by status",
	}, []string{"status"})
	AutoMLTrialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "automl_trials_total",
		Help:      "Total number of AutoML candidates evaluated by model family",
	}, []string{"family"})
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "training_duration_seconds",
		Help:      "Duration of training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
	ModelScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_score",
		Help:      "Scores of the last trained model by partition and metric",
	}, []string{"partition", "metric"})
)

// RecordTrainingRun records a training run.
// status should be one of: "success", "failure"
func RecordTrainingRun(status string, durationSeconds float64) {
	TrainingRunsTotal.WithLabelValues(status).Inc()
	TrainingDuration.Observe(durationSeconds)
}

// RecordAutoMLTrial records one evaluated candidate.
func RecordAutoMLTrial(family string) {
	AutoMLTrialsTotal.WithLabelValues(family).Inc()
}

// UpdateModelScores sets the score gauges of one partition ("train" or "test").
func UpdateModelScores(partition string, r2, mse, rmse, mae float64) {
	ModelScore.WithLabelValues(partition, "r2_score").Set(r2)
	ModelScore.WithLabelValues(partition, "mse").Set(mse)
	ModelScore.WithLabelValues(partition, "rmse").Set(rmse)
	ModelScore.WithLabelValues(partition, "mae").Set(mae)
}
