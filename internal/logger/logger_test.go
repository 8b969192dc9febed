package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = NewLogger("nonsense", "production")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestWithFileTeesOutput(t *testing.T) {
	log, buf := setupTestLogger()
	path := filepath.Join(t.TempDir(), "reports", "main.log")

	closer, err := WithFile(log, path)
	require.NoError(t, err)

	log.Info("training started")
	require.NoError(t, closer.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "training started")
	assert.Contains(t, buf.String(), "training started")
}

func TestAuditLoggerPredictionRecorded(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogPredictionRecorded(7, 24.5, false, time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, float64(7), logEntry["record_id"])
	assert.Equal(t, false, logEntry["overridden"])
}

func TestAuditLoggerPersistenceFailure(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogPersistenceFailure(12.0, errors.New("disk full"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "disk full", logEntry["error"])
	assert.Equal(t, "error", logEntry["level"])
}

func TestMLLoggerSearchCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	mlLogger := NewMLLogger(log)

	mlLogger.LogSearchCompleted("GradientBoostingRegressor", -0.87, 12, 1500*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "ml", logEntry["component"])
	assert.Equal(t, "GradientBoostingRegressor", logEntry["best_model"])
	assert.Equal(t, float64(1500), logEntry["elapsed_ms"])
}

func TestMLLoggerModelTraining(t *testing.T) {
	log, buf := setupTestLogger()
	mlLogger := NewMLLogger(log)

	mlLogger.LogModelTraining(
		"Ridge",
		3.2,
		map[string]float64{"r2_score": 0.74, "rmse": 4.8},
		map[string]interface{}{"alpha": 1.0},
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "Ridge", logEntry["model_name"])
}

func BenchmarkAuditLoggerPredictionRecorded(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	auditLogger := NewAuditLogger(log)

	for i := 0; i < b.N; i++ {
		auditLogger.LogPredictionRecorded(int64(i), 21.6, false, time.Now())
	}
}

func TestMLLoggerPredictionRequest(t *testing.T) {
	log, buf := setupTestLogger()
	mlLogger := NewMLLogger(log)

	mlLogger.LogMLPredictionRequest("LinearRegression", 13, true, 1.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, true, logEntry["overridden"])
	assert.NotContains(t, logEntry, "cache_hit")
	assert.Equal(t, float64(13), logEntry["features_count"])
}
