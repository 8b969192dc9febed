package training

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yourusername/housing-predictor/internal/artifact"
	"github.com/yourusername/housing-predictor/internal/explain"
	"github.com/yourusername/housing-predictor/internal/pipeline"
)

const rule = "=================================================="

var errNoImportances = errors.New("best model does not expose feature importances")

// Importance is one feature's weight in the final model.
type Importance struct {
	Feature string
	Value   float64
}

// Importances returns the winner's importances sorted descending, or
// errNoImportances for families that have none.
func Importances(p *pipeline.Pipeline) ([]Importance, error) {
	automl, ok := p.AutoML()
	if !ok {
		return nil, pipeline.ErrInvalidPipeline
	}
	values, ok := automl.FeatureImportances()
	if !ok {
		return nil, errNoImportances
	}
	if len(values) != len(p.Columns) {
		return nil, fmt.Errorf("got %d importances for %d features", len(values), len(p.Columns))
	}
	out := make([]Importance, len(values))
	for i, v := range values {
		out[i] = Importance{Feature: p.Columns[i], Value: v}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

// WriteSummaryReport renders the AutoML summary text.
func WriteSummaryReport(w io.Writer, p *pipeline.Pipeline) error {
	automl, ok := p.AutoML()
	if !ok || !automl.Fitted {
		return pipeline.ErrNotFitted
	}

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "      AutoML Final Summary Report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Best Model Found: %s\n", automl.BestModelName)
	fmt.Fprintf(&b, "Best R2 Score (during CV): %.4f\n", -automl.BestLoss)
	fmt.Fprintf(&b, "Candidates Evaluated: %d\n", len(automl.Trials))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "--- Best Model Configuration ---")
	keys := make([]string, 0, len(automl.BestConfig))
	for k := range automl.BestConfig {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		fmt.Fprintln(&b, "  (defaults)")
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "  - %s: %v\n", k, automl.BestConfig[k])
	}

	if importances, err := Importances(p); err == nil {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "--- Feature Importances (from final model) ---")
		for _, imp := range importances {
			fmt.Fprintf(&b, "  - %s: %.4f\n", imp.Feature, imp.Value)
		}
	}
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary writes automl_summary.txt and, when the winner has
// importances, the importance chart.
func (o *Orchestrator) WriteSummary(p *pipeline.Pipeline) error {
	var b strings.Builder
	if err := WriteSummaryReport(&b, p); err != nil {
		return err
	}
	if err := artifact.WriteFile(o.opts.SummaryPath, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	o.logger.WithField("path", o.opts.SummaryPath).Info("AutoML summary saved")

	importances, err := Importances(p)
	if err != nil {
		o.logger.WithError(err).Warn("Skipping feature importance plot")
		return nil
	}
	labels := make([]string, len(importances))
	values := make([]float64, len(importances))
	for i, imp := range importances {
		labels[i] = imp.Feature
		values[i] = imp.Value
	}
	automl, _ := p.AutoML()
	chart, err := explain.RankedBarChart(
		fmt.Sprintf("Feature Importance (%s)", automl.BestModelName), "importance", labels, values)
	if err != nil {
		return err
	}
	if err := artifact.WriteFile(o.opts.ImportancePlotPath, chart); err != nil {
		return fmt.Errorf("failed to save importance plot: %w", err)
	}
	o.logger.WithField("path", o.opts.ImportancePlotPath).Info("Feature importance plot saved")
	return nil
}
