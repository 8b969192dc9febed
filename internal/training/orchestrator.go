// Package training fits, evaluates, persists and explains the housing pipeline.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/housing-predictor/internal/artifact"
	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/dataset"
	"github.com/yourusername/housing-predictor/internal/explain"
	"github.com/yourusername/housing-predictor/internal/logger"
	"github.com/yourusername/housing-predictor/internal/metrics"
	"github.com/yourusername/housing-predictor/internal/models"
	"github.com/yourusername/housing-predictor/internal/pipeline"
)

// Options holds everything a training run needs.
type Options struct {
	DataPath string
	Target   string
	Features []string
	TestSize float64
	Seed     int64
	Budget   time.Duration
	Folds    int

	ModelPath          string
	MetricsPath        string
	SummaryPath        string
	ImportancePlotPath string
	ShapPlotPath       string

	ExplainSamples int
	ExplainRounds  int

	// Candidates overrides the default AutoML search space when set.
	Candidates []pipeline.Candidate
}

// OptionsFromConfig maps the application config onto training options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataPath:           cfg.Paths.TrainDataPath(cfg.Dataset),
		Target:             cfg.Train.Target,
		Features:           cfg.Train.Features,
		TestSize:           cfg.Train.TestSize,
		Seed:               cfg.Train.RandomState,
		Budget:             pipeline.BudgetFromSeconds(cfg.Train.AutoMLBudgetSecs),
		Folds:              cfg.Train.CVFolds,
		ModelPath:          cfg.Paths.ModelPath(),
		MetricsPath:        cfg.Paths.MetricsPath(),
		SummaryPath:        cfg.Paths.SummaryPath(),
		ImportancePlotPath: cfg.Paths.ImportancePlotPath(),
		ShapPlotPath:       cfg.Paths.ShapPlotPath(),
		ExplainSamples:     cfg.Train.ExplainSamples,
		ExplainRounds:      cfg.Train.ExplainRounds,
	}
}

// Split is the seeded train/test partition of the training data.
type Split struct {
	XTrain [][]float64
	YTrain []float64
	XTest  [][]float64
	YTest  []float64
}

// Result summarizes a completed run.
type Result struct {
	RunID        string
	Metrics      models.MetricsRecord
	ModelPath    string
	Attributions []explain.Attribution
}

// Orchestrator runs the training steps in order.
type Orchestrator struct {
	opts   Options
	store  *artifact.Store
	logger *logrus.Logger
	ml     *logger.MLLogger
}

// NewOrchestrator creates a new training orchestrator.
func NewOrchestrator(opts Options, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		opts:   opts,
		store:  artifact.NewStore(opts.ModelPath, opts.MetricsPath),
		logger: log,
		ml:     logger.NewMLLogger(log),
	}
}

// Run executes the full training workflow. Everything up to and including
// persistence is fatal; the reporting steps after it only log warnings.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := o.logger.WithField("run_id", runID)
	log.Info("Starting training run")

	result, err := o.run(ctx, runID, log)
	if err != nil {
		metrics.RecordTrainingRun("failure", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordTrainingRun("success", time.Since(start).Seconds())

	log.WithField("duration", time.Since(start).Round(time.Millisecond)).Info("Training run completed")
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, runID string, log *logrus.Entry) (*Result, error) {
	split, err := o.LoadAndSplit()
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"train_rows": len(split.YTrain),
		"test_rows":  len(split.YTest),
	}).Info("Data loaded and split")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fitStart := time.Now()
	p, err := o.Fit(split)
	if err != nil {
		return nil, err
	}
	fitElapsed := time.Since(fitStart)

	record, err := o.Evaluate(p, split)
	if err != nil {
		return nil, err
	}
	record.RunID = runID
	o.ml.LogModelTraining(record.BestModelName, fitElapsed.Seconds(), map[string]float64{
		"train_r2":   record.Train.R2,
		"test_r2":    record.Test.R2,
		"test_rmse":  record.Test.RMSE,
		"test_mae":   record.Test.MAE,
		"cv_r2_best": -record.BestLoss,
	}, record.BestConfig)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := o.Persist(p, record); err != nil {
		if errors.Is(err, artifact.ErrStaleMetrics) {
			log.WithError(err).WithFields(logrus.Fields{
				"model_path":   o.opts.ModelPath,
				"metrics_path": o.opts.MetricsPath,
			}).Error("New pipeline is in place but metrics.json still describes the previous run")
		}
		return nil, err
	}
	log.WithField("path", o.opts.ModelPath).Info("Pipeline saved")

	if err := bestEffort(func() error { return o.WriteSummary(p) }); err != nil {
		log.WithError(err).Warn("Failed to write AutoML summary")
	}

	result := &Result{RunID: runID, Metrics: *record, ModelPath: o.opts.ModelPath}
	err = bestEffort(func() error {
		attributions, err := o.Explain(p, split)
		if err != nil {
			return err
		}
		result.Attributions = attributions.Ranking
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to generate SHAP summary")
	}
	return result, nil
}

// bestEffort runs a reporting step that must not take the run down with it.
// A panic is turned into an error.
func bestEffort(step func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("reporting step panicked: %v", p)
		}
	}()
	return step()
}

// LoadAndSplit reads the training CSV and holds out the test partition.
func (o *Orchestrator) LoadAndSplit() (*Split, error) {
	frame, err := dataset.Load(o.opts.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load training data: %w", err)
	}
	columns := append(append([]string(nil), o.opts.Features...), o.opts.Target)
	frame, err = frame.Select(columns)
	if err != nil {
		return nil, fmt.Errorf("training data is missing columns: %w", err)
	}

	train, test, err := dataset.Split(frame, o.opts.TestSize, o.opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split training data: %w", err)
	}

	split := &Split{}
	if split.XTrain, split.YTrain, err = train.XY(o.opts.Features, o.opts.Target); err != nil {
		return nil, err
	}
	if split.XTest, split.YTest, err = test.XY(o.opts.Features, o.opts.Target); err != nil {
		return nil, err
	}
	return split, nil
}

// Fit builds a fresh pipeline and fits it on the training partition only.
func (o *Orchestrator) Fit(split *Split) (*pipeline.Pipeline, error) {
	started := time.Now()
	p := pipeline.NewDefault(o.opts.Features, pipeline.AutoMLConfig{
		Budget:     o.opts.Budget,
		Folds:      o.opts.Folds,
		Seed:       o.opts.Seed,
		Candidates: o.opts.Candidates,
		Observer: func(t pipeline.Trial) {
			metrics.RecordAutoMLTrial(t.Family)
			if t.Err != "" {
				o.logger.WithFields(logrus.Fields{
					"family": t.Family,
					"error":  t.Err,
				}).Warn("AutoML candidate failed")
				return
			}
			o.ml.LogCandidateEvaluated(t.Family, t.Params, t.CVScore)
		},
	})

	if err := p.Fit(pipeline.FromRows(split.XTrain), split.YTrain); err != nil {
		return nil, fmt.Errorf("failed to fit pipeline: %w", err)
	}

	automl, _ := p.AutoML()
	o.ml.LogSearchCompleted(automl.BestModelName, automl.BestLoss, len(automl.Trials), time.Since(started))
	return p, nil
}

// Evaluate scores the fitted pipeline on both partitions.
func (o *Orchestrator) Evaluate(p *pipeline.Pipeline, split *Split) (*models.MetricsRecord, error) {
	automl, ok := p.AutoML()
	if !ok || !automl.Fitted {
		return nil, pipeline.ErrNotFitted
	}

	train, err := score(p, split.XTrain, split.YTrain)
	if err != nil {
		return nil, fmt.Errorf("failed to score train partition: %w", err)
	}
	test, err := score(p, split.XTest, split.YTest)
	if err != nil {
		return nil, fmt.Errorf("failed to score test partition: %w", err)
	}

	metrics.UpdateModelScores("train", train.R2, train.MSE, train.RMSE, train.MAE)
	metrics.UpdateModelScores("test", test.R2, test.MSE, test.RMSE, test.MAE)

	return &models.MetricsRecord{
		TrainedAt:     time.Now().UTC(),
		Train:         train,
		Test:          test,
		BestModelName: automl.BestModelName,
		BestLoss:      automl.BestLoss,
		BestConfig:    automl.BestConfig,
		TrainRows:     len(split.YTrain),
		TestRows:      len(split.YTest),
	}, nil
}

func score(p *pipeline.Pipeline, X [][]float64, y []float64) (models.RegressionMetrics, error) {
	preds, err := p.Predict(pipeline.FromRows(X))
	if err != nil {
		return models.RegressionMetrics{}, err
	}
	s, err := pipeline.Score(y, preds)
	if err != nil {
		return models.RegressionMetrics{}, err
	}
	return models.RegressionMetrics{R2: s.R2, MSE: s.MSE, RMSE: s.RMSE, MAE: s.MAE}, nil
}

// Persist saves the pipeline and its metrics record as a pair.
func (o *Orchestrator) Persist(p *pipeline.Pipeline, record *models.MetricsRecord) error {
	return o.store.SaveRun(p, *record)
}

// Explain computes attributions on the training rows and writes the
// summary chart.
func (o *Orchestrator) Explain(p *pipeline.Pipeline, split *Split) (*explain.Result, error) {
	res, err := explain.Explain(p, pipeline.FromRows(split.XTrain), explain.Config{
		Samples: o.opts.ExplainSamples,
		Rounds:  o.opts.ExplainRounds,
		Seed:    o.opts.Seed,
	})
	if err != nil {
		return nil, err
	}
	chart, err := explain.RankingChart("SHAP Summary (mean |value|)", res.Ranking)
	if err != nil {
		return nil, err
	}
	if err := artifact.WriteFile(o.opts.ShapPlotPath, chart); err != nil {
		return nil, fmt.Errorf("failed to save SHAP plot: %w", err)
	}
	o.logger.WithFields(logrus.Fields{
		"path":  o.opts.ShapPlotPath,
		"exact": res.Exact,
		"rows":  len(res.Rows),
	}).Info("SHAP summary saved")
	return res, nil
}
