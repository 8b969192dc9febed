// Package service implements the prediction use case behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/housing-predictor/internal/features"
	"github.com/yourusername/housing-predictor/internal/logger"
	"github.com/yourusername/housing-predictor/internal/metrics"
	"github.com/yourusername/housing-predictor/internal/ml"
	"github.com/yourusername/housing-predictor/internal/models"
	"github.com/yourusername/housing-predictor/internal/pipeline"
	"github.com/yourusername/housing-predictor/internal/repository"
)

// Result is the outcome of one served prediction.
type Result struct {
	Prediction float64
	RecordID   int64
	Overridden bool
}

// Config wires a PredictionService. Pipeline and Repository are required.
type Config struct {
	Contract   *features.Contract
	Pipeline   *pipeline.Pipeline
	Repository repository.PredictionRepository
	// Rule enables the degenerate-input override when non-nil.
	Rule      *DegenerateInputRule
	Cache     *ml.PredictionCache
	Publisher Publisher
	Logger    *logrus.Logger
}

// PredictionService validates requests, runs the loaded pipeline and
// records every served prediction.
type PredictionService struct {
	contract  *features.Contract
	columns   []string
	predictor ml.RowPredictor
	modelName string
	repo      repository.PredictionRepository
	rule      *DegenerateInputRule
	publisher Publisher

	logger *logrus.Logger
	audit  *logger.AuditLogger
	ml     *logger.MLLogger
}

// NewPredictionService creates a new prediction service around a fitted pipeline.
func NewPredictionService(cfg Config) (*PredictionService, error) {
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if cfg.Repository == nil {
		return nil, fmt.Errorf("prediction repository is required")
	}
	contract := cfg.Contract
	if contract == nil {
		contract = features.Default()
	}
	if err := contract.CheckColumns(cfg.Pipeline.Columns); err != nil {
		return nil, fmt.Errorf("model artifact does not match the feature contract: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	modelName := cfg.Pipeline.Final().Name()
	if automl, ok := cfg.Pipeline.AutoML(); ok && automl.BestModelName != "" {
		modelName = automl.BestModelName
	}

	return &PredictionService{
		contract:  contract,
		columns:   append([]string(nil), cfg.Pipeline.Columns...),
		predictor: ml.NewCachedPredictor(cfg.Pipeline, cfg.Cache),
		modelName: modelName,
		repo:      cfg.Repository,
		rule:      cfg.Rule,
		publisher: cfg.Publisher,
		logger:    log,
		audit:     logger.NewAuditLogger(log),
		ml:        logger.NewMLLogger(log),
	}, nil
}

// ModelName is the family of the loaded estimator.
func (s *PredictionService) ModelName() string { return s.modelName }

// Predict serves one request. It returns *ValidationError, *PredictionError
// or *PersistenceError on failure; in each case nothing is recorded.
func (s *PredictionService) Predict(ctx context.Context, raw map[string]any) (*Result, error) {
	start := time.Now()

	row, err := s.contract.Validate(raw)
	overridden := false
	if err != nil {
		var verrs features.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		if !s.overrideApplies(raw, verrs) {
			s.audit.LogValidationRejected(verrs.Fields(), verrs.Error())
			metrics.RecordPredictionError("validation")
			return nil, &ValidationError{Errors: verrs}
		}
		overridden = true
	} else if s.rule != nil && s.rule.Applies(raw) {
		overridden = true
	}

	result := &Result{Overridden: overridden}
	err = s.repo.WithTx(ctx, func(w repository.PredictionWriter) error {
		if overridden {
			result.Prediction = s.rule.Value()
		} else {
			value, err := s.predictor.PredictRow(s.contract.Vector(row, s.columns))
			if err != nil {
				return &PredictionError{Err: err}
			}
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return &PredictionError{Err: fmt.Errorf("estimator returned non-finite value %v", value)}
			}
			result.Prediction = value
		}

		record, err := models.NewPredictionRecord(s.contract.Names(), row, result.Prediction, overridden)
		if err != nil {
			return &PersistenceError{Err: err}
		}
		id, err := w.Append(ctx, record)
		if err != nil {
			return &PersistenceError{Err: err}
		}
		result.RecordID = id
		s.audit.LogPredictionRecorded(id, result.Prediction, overridden, record.PredictionTime)
		return nil
	})
	if err != nil {
		return nil, s.classify(err, result.Prediction)
	}

	source := "model"
	if overridden {
		source = "override"
	}
	elapsed := time.Since(start)
	metrics.RecordPrediction(source, result.Prediction, elapsed.Seconds())
	s.ml.LogMLPredictionRequest(s.modelName, len(s.columns), overridden, float64(elapsed.Microseconds())/1000)

	s.publish(ctx, result)
	return result, nil
}

// overrideApplies is true when the rule features are the only thing wrong
// with the request.
func (s *PredictionService) overrideApplies(raw map[string]any, verrs features.ValidationErrors) bool {
	return s.rule != nil && s.rule.Applies(raw) && verrs.OnlyMissing(s.rule.Features...)
}

func (s *PredictionService) classify(err error, value float64) error {
	var predErr *PredictionError
	if errors.As(err, &predErr) {
		s.ml.LogMLPredictionError(s.modelName, predErr.Error())
		metrics.RecordPredictionError("model")
		return predErr
	}

	var persistErr *PersistenceError
	if !errors.As(err, &persistErr) {
		// begin or commit failed outside the callback
		persistErr = &PersistenceError{Err: err}
	}
	s.audit.LogPersistenceFailure(value, persistErr.Err)
	metrics.RecordPredictionError("persistence")
	return persistErr
}

// publish is fire-and-forget; a failed publish never fails the request.
func (s *PredictionService) publish(ctx context.Context, result *Result) {
	if s.publisher == nil {
		return
	}
	event := PredictionEvent{
		RecordID:    result.RecordID,
		Prediction:  result.Prediction,
		Overridden:  result.Overridden,
		PredictedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.RecordPublishFailure()
		s.logger.WithError(err).WithField("record_id", result.RecordID).Warn("Failed to publish prediction event")
	}
}
