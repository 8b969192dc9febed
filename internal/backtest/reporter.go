package backtest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/housing-predictor/internal/artifact"
	"github.com/yourusername/housing-predictor/internal/dataset"
	"github.com/yourusername/housing-predictor/internal/models"
)

var (
	reportHeader  = []string{"id", "actual_value", "predicted_value", "payload_sent", "error"}
	summaryHeader = []string{"mae", "mse", "num_predictions"}
)

// WriteReport overwrites the per-row report. A missing prediction is an empty cell.
func WriteReport(path string, rows []models.BacktestRow) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		predicted := ""
		if row.Predicted != nil {
			predicted = dataset.FormatValue(*row.Predicted)
		}
		record := []string{
			strconv.Itoa(row.ID),
			dataset.FormatValue(row.Actual),
			predicted,
			row.PayloadSent,
			row.Error,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return artifact.WriteFile(path, buf.Bytes())
}

// AppendSummary appends one line to the metrics history, writing the
// header only when the file is created.
func AppendSummary(path string, summary models.BacktestSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(summaryHeader); err != nil {
			return err
		}
	}
	if err := w.Write([]string{
		strconv.FormatFloat(summary.MAE, 'f', -1, 64),
		strconv.FormatFloat(summary.MSE, 'f', -1, 64),
		strconv.Itoa(summary.NumPredictions),
	}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// GenerateConsoleReport formats an outcome for terminal output
func GenerateConsoleReport(outcome *Outcome) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	fmt.Fprintf(&builder, "Run ID: %s\n", outcome.RunID)
	fmt.Fprintf(&builder, "Rows Replayed: %d\n", len(outcome.Rows))
	failed := 0
	for _, row := range outcome.Rows {
		if !row.Valid() {
			failed++
		}
	}
	fmt.Fprintf(&builder, "Failed Rows: %d\n", failed)
	if outcome.Summary == nil {
		builder.WriteString("No valid predictions were made.\n")
		return builder.String()
	}
	fmt.Fprintf(&builder, "Predictions: %d\n", outcome.Summary.NumPredictions)
	fmt.Fprintf(&builder, "MAE: %.4f\n", outcome.Summary.MAE)
	fmt.Fprintf(&builder, "MSE: %.4f\n", outcome.Summary.MSE)
	fmt.Fprintf(&builder, "Duration: %s\n", outcome.Duration.Round(time.Millisecond))
	return builder.String()
}
