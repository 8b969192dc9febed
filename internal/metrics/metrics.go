// Package metrics provides centralized Prometheus metrics registry for the housing predictor.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "housing"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route and status code",
	}, []string{"method", "path", "status"})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of served predictions by source (model, override)",
	}, []string{"source"})
	PredictionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_errors_total",
		Help:      "Total number of failed prediction requests by kind",
	}, []string{"kind"})
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_cache_lookups_total",
		Help:      "Total number of prediction cache lookups by result",
	}, []string{"result"})
	PublishFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_publish_failures_total",
		Help:      "Total number of prediction events that could not be published",
	})
)

// Gauge metrics
var (
	ModelLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_loaded",
		Help:      "1 when a fitted pipeline is loaded in the serving process",
	})
)

// Histogram metrics
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_latency_seconds",
		Help:      "Latency of validated predictions including the audit write",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
	PredictedValue = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "predicted_value",
		Help:      "Distribution of served predictions (MEDV, thousands of dollars)",
		Buckets:   prometheus.LinearBuckets(0, 5, 11),
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionErrorsTotal)
		registry.MustRegister(CacheLookupsTotal)
		registry.MustRegister(PublishFailuresTotal)

		registry.MustRegister(ModelLoaded)

		registry.MustRegister(HTTPRequestDuration)
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(PredictedValue)

		// Register training metrics
		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(TrainingDuration)
		registry.MustRegister(ModelScore)
		registry.MustRegister(AutoMLTrialsTotal)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestRowsTotal)
		registry.MustRegister(BacktestError)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

// RecordPrediction records a served prediction.
// source should be one of: "model", "override"
func RecordPrediction(source string, value, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(source).Inc()
	PredictedValue.Observe(value)
	PredictionLatency.Observe(durationSeconds)
}

// RecordPredictionError records a failed prediction request.
// kind should be one of: "validation", "model", "persistence"
func RecordPredictionError(kind string) {
	PredictionErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheLookup records a prediction cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// RecordPublishFailure records a prediction event that was not published.
func RecordPublishFailure() {
	PublishFailuresTotal.Inc()
}

// SetModelLoaded flips the model gauge.
func SetModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
		return
	}
	ModelLoaded.Set(0)
}
