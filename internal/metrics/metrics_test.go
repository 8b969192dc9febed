package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("override"))

	RecordPrediction("override", 0, 0.001)

	assert.Equal(t, before+1, testutil.ToFloat64(PredictionsTotal.WithLabelValues("override")))
}

func TestRecordPredictionError(t *testing.T) {
	InitRegistry()

	kinds := []string{"validation", "model", "persistence"}
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			before := testutil.ToFloat64(PredictionErrorsTotal.WithLabelValues(kind))
			RecordPredictionError(kind)
			assert.Equal(t, before+1, testutil.ToFloat64(PredictionErrorsTotal.WithLabelValues(kind)))
		})
	}
}

func TestUpdateModelScores(t *testing.T) {
	InitRegistry()

	UpdateModelScores("test", 0.81, 9.0, 3.0, 2.1)

	assert.Equal(t, 0.81, testutil.ToFloat64(ModelScore.WithLabelValues("test", "r2_score")))
	assert.Equal(t, 3.0, testutil.ToFloat64(ModelScore.WithLabelValues("test", "rmse")))
}

func TestBacktestMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBacktestRun("success", 12.5)
		RecordBacktestRow("request_error")
	})
	UpdateBacktestError(2.5, 11.0)
	assert.Equal(t, 2.5, testutil.ToFloat64(BacktestError.WithLabelValues("mae")))
}

func TestSetModelLoaded(t *testing.T) {
	SetModelLoaded(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(ModelLoaded))
	SetModelLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(ModelLoaded))
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordHTTPRequest("GET", "/", "200", 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "housing_http_requests_total")
}
