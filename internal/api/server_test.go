package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/features"
	"github.com/yourusername/housing-predictor/internal/pipeline"
	"github.com/yourusername/housing-predictor/internal/repository"
	"github.com/yourusername/housing-predictor/internal/service"
)

type stubPredictor struct {
	result *service.Result
	err    error
	got    map[string]any
}

func (s *stubPredictor) Predict(ctx context.Context, raw map[string]any) (*service.Result, error) {
	s.got = raw
	return s.result, s.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupRouter(p Predictor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := NewServer(config.ServerConfig{Address: ":0", ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 5}, p, quietLogger())
	return srv.Router()
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"CRIM":0.00632,"ZN":18.0,"INDUS":2.31,"CHAS":0,"NOX":0.538,"RM":6.575,"AGE":65.2,
"DIS":4.09,"RAD":1,"TAX":296.0,"PTRATIO":15.3,"B":396.9,"LSTAT":4.98}`

func TestRoot(t *testing.T) {
	rec := do(setupRouter(&stubPredictor{}), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"API is running!"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	setupRouter(&stubPredictor{}).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestPredict_OK(t *testing.T) {
	stub := &stubPredictor{result: &service.Result{Prediction: 24.5}}
	rec := do(setupRouter(stub), http.MethodPost, "/predict", validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prediction":24.5}`, rec.Body.String())
	assert.Equal(t, json.Number("1"), stub.got["RAD"])
}

func TestPredict_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name: "validation",
			err: &service.ValidationError{Errors: features.ValidationErrors{
				&features.MissingRequiredFeatureError{Name: "CRIM"},
				&features.TypeMismatchError{Name: "RAD", Expected: "integer", Got: "fractional number"},
			}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: `{"detail":[
				{"loc":["body","CRIM"],"msg":"Field required","type":"missing"},
				{"loc":["body","RAD"],"msg":"Input should be a valid integer","type":"int_parsing"}]}`,
		},
		{
			name:       "prediction",
			err:        &service.PredictionError{Err: errors.New("model exploded")},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"detail":"Prediction error: model exploded"}`,
		},
		{
			name:       "persistence",
			err:        &service.PersistenceError{Err: errors.New("disk full")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"Database save error: disk full"}`,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(setupRouter(&stubPredictor{err: tt.err}), http.MethodPost, "/predict", validBody)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestPredict_MalformedBody(t *testing.T) {
	for _, body := range []string{`not json`, `[1,2]`, `null`, ``} {
		stub := &stubPredictor{}
		rec := do(setupRouter(stub), http.MethodPost, "/predict", body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		assert.Nil(t, stub.got, body)
	}
}

// End to end through the real service and a SQLite audit store.
func TestPredict_EndToEnd(t *testing.T) {
	names := features.Default().Names()
	rng := rand.New(rand.NewPCG(3, 4))
	rows := make([][]float64, 60)
	y := make([]float64, len(rows))
	for i := range rows {
		rows[i] = make([]float64, len(names))
		for j := range rows[i] {
			rows[i][j] = rng.Float64() * 10
		}
		y[i] = 3*rows[i][5] + 2
	}
	p, err := pipeline.New(names, &pipeline.MedianImputer{}, &pipeline.StandardScaler{}, &pipeline.LinearRegression{})
	require.NoError(t, err)
	require.NoError(t, p.Fit(pipeline.FromRows(rows), y))

	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "predictions.db"))
	require.NoError(t, err)
	repo := repository.NewGormPredictionRepository(db)
	defer repo.Close()

	svc, err := service.NewPredictionService(service.Config{
		Pipeline:   p,
		Repository: repo,
		Rule:       service.DefaultDegenerateInputRule(),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	router := setupRouter(svc)

	rec := do(router, http.MethodPost, "/predict", validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 3*6.575+2, resp.Prediction, 1e-3)

	rec = do(router, http.MethodPost, "/predict", `{"CRIM":0.1,"INDUS":2.31,"NOX":0.5,"AGE":60,"DIS":4,"TAX":296,"PTRATIO":15,"B":390}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"prediction":0.0}`, rec.Body.String())

	rec = do(router, http.MethodPost, "/predict", `{"RM":6.5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
