// Package logger provides ML-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// MLLogger provides dedicated logging for ML operations.
type MLLogger struct {
	*logrus.Entry
}

// NewMLLogger creates a new ML logger.
func NewMLLogger(baseLogger *logrus.Logger) *MLLogger {
	return &MLLogger{
		Entry: baseLogger.WithField("component", "ml"),
	}
}

// LogMLPredictionRequest logs a served prediction.
func (ml *MLLogger) LogMLPredictionRequest(modelName string, featuresCount int, overridden bool, latencyMs float64) {
	ml.WithFields(logrus.Fields{
		"model_name":     modelName,
		"features_count": featuresCount,
		"overridden":     overridden,
		"latency_ms":     latencyMs,
	}).Debug("ML prediction request completed")
}

// LogMLPredictionError logs estimator failures.
func (ml *MLLogger) LogMLPredictionError(modelName string, errorReason string) {
	ml.WithFields(logrus.Fields{
		"model_name":   modelName,
		"error_reason": errorReason,
	}).Error("ML prediction failed")
}

// LogCandidateEvaluated logs one AutoML candidate.
func (ml *MLLogger) LogCandidateEvaluated(family string, params map[string]interface{}, cvScore float64) {
	ml.WithFields(logrus.Fields{
		"family":   family,
		"params":   params,
		"cv_score": cvScore,
	}).Debug("AutoML candidate evaluated")
}

// LogSearchCompleted logs the outcome of an AutoML search.
func (ml *MLLogger) LogSearchCompleted(bestModel string, bestLoss float64, evaluated int, elapsed time.Duration) {
	ml.WithFields(logrus.Fields{
		"best_model": bestModel,
		"best_loss":  bestLoss,
		"evaluated":  evaluated,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("AutoML search completed")
}

// LogModelTraining logs model training events.
func (ml *MLLogger) LogModelTraining(modelName string, trainingDuration float64, metrics map[string]float64, hyperparameters map[string]interface{}) {
	ml.WithFields(logrus.Fields{
		"model_name":        modelName,
		"training_duration": trainingDuration,
		"metrics":           metrics,
		"hyperparameters":   hyperparameters,
	}).Info("Model training completed")
}

// LogBacktestCompleted logs a finished backtest run.
func (ml *MLLogger) LogBacktestCompleted(runID string, total, valid int, mae, mse float64) {
	ml.WithFields(logrus.Fields{
		"run_id":          runID,
		"rows":            total,
		"num_predictions": valid,
		"mae":             mae,
		"mse":             mse,
	}).Info("Backtest completed")
}
