package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/housing-predictor/internal/dataset"
	"github.com/yourusername/housing-predictor/internal/logger"
	"github.com/yourusername/housing-predictor/internal/metrics"
	"github.com/yourusername/housing-predictor/internal/models"
)

// Predictor is the remote prediction endpoint.
type Predictor interface {
	Predict(ctx context.Context, payload map[string]any) (float64, error)
}

// Outcome is the result of one run.
type Outcome struct {
	RunID    string
	Rows     []models.BacktestRow
	Summary  *models.BacktestSummary
	Duration time.Duration
}

// Runner replays rows one at a time against the prediction API
type Runner struct {
	config    Config
	predictor Predictor
	logger    *logrus.Logger
	ml        *logger.MLLogger
}

// NewRunner creates a new backtest runner
func NewRunner(cfg Config, predictor Predictor, log *logrus.Logger) (*Runner, error) {
	if predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	if log == nil {
		log = logrus.New()
	}
	return &Runner{
		config:    cfg,
		predictor: predictor,
		logger:    log,
		ml:        logger.NewMLLogger(log),
	}, nil
}

// Config returns the backtest configuration
func (r *Runner) Config() Config {
	return r.config
}

// Run posts every row of frame, writes the report and, when at least one
// row produced a prediction, appends the error summary. Row failures are
// recorded on the row and never stop the run.
func (r *Runner) Run(ctx context.Context, frame *dataset.Frame) (*Outcome, error) {
	start := time.Now()
	outcome := &Outcome{RunID: uuid.New().String()}
	log := r.logger.WithField("run_id", outcome.RunID)

	actuals, err := frame.Column(r.config.Target)
	if err != nil {
		return nil, fmt.Errorf("backtest data: %w", err)
	}
	log.WithFields(logrus.Fields{"rows": frame.Len(), "api_url": r.config.APIURL}).Info("Starting backtest run")

	outcome.Rows = make([]models.BacktestRow, 0, frame.Len())
	for i, values := range frame.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome.Rows = append(outcome.Rows, r.replayRow(ctx, i, frame.Columns, values, actuals[i]))
	}

	if err := WriteReport(r.config.ReportPath, outcome.Rows); err != nil {
		return nil, fmt.Errorf("failed to write backtest report: %w", err)
	}
	log.WithField("path", r.config.ReportPath).Info("Backtest report saved")

	outcome.Duration = time.Since(start)
	summary, ok := CalculateSummary(outcome.Rows)
	if !ok {
		log.Warn("No valid predictions were made; skipping metrics summary")
		metrics.RecordBacktestRun("no_predictions", outcome.Duration.Seconds())
		return outcome, nil
	}
	outcome.Summary = &summary

	if err := AppendSummary(r.config.SummaryPath, summary); err != nil {
		return nil, fmt.Errorf("failed to append metrics summary: %w", err)
	}
	metrics.UpdateBacktestError(summary.MAE, summary.MSE)
	metrics.RecordBacktestRun("success", outcome.Duration.Seconds())
	r.ml.LogBacktestCompleted(outcome.RunID, len(outcome.Rows), summary.NumPredictions, summary.MAE, summary.MSE)
	return outcome, nil
}

// replayRow sends one row. The target column is excluded and missing
// values are omitted from the payload.
func (r *Runner) replayRow(ctx context.Context, id int, columns []string, values []float64, actual float64) models.BacktestRow {
	payload := make(map[string]any, len(columns))
	for j, col := range columns {
		if col == r.config.Target || math.IsNaN(values[j]) {
			continue
		}
		payload[col] = values[j]
	}
	encoded, _ := json.Marshal(payload)
	row := models.BacktestRow{ID: id, Actual: actual, PayloadSent: string(encoded)}

	prediction, err := r.predictor.Predict(ctx, payload)
	if err != nil {
		row.Error = rowError(err)
		metrics.RecordBacktestRow(rowOutcome(err))
		r.logger.WithFields(logrus.Fields{"row_id": id, "error": row.Error}).Warn("Backtest request failed")
		return row
	}
	row.Predicted = &prediction
	metrics.RecordBacktestRow("ok")
	return row
}

// RunSafely loads the backtest CSV and runs it. Any error or panic is
// logged as critical and swallowed; the outcome is nil in that case.
func (r *Runner) RunSafely(ctx context.Context) (outcome *Outcome) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.logger.WithFields(logrus.Fields{
				"severity": "critical",
				"panic":    fmt.Sprint(p),
			}).Error("Backtest run crashed")
			metrics.RecordBacktestRun("failure", time.Since(start).Seconds())
			outcome = nil
		}
	}()

	frame, err := dataset.Load(r.config.DataPath)
	if err != nil {
		r.critical(err, start)
		return nil
	}
	outcome, err = r.Run(ctx, frame)
	if err != nil {
		r.critical(err, start)
		return nil
	}
	return outcome
}

func (r *Runner) critical(err error, start time.Time) {
	r.logger.WithError(err).WithField("severity", "critical").Error("Backtest run failed")
	metrics.RecordBacktestRun("failure", time.Since(start).Seconds())
}
