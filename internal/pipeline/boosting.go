package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// GradientBoostingRegressor fits shallow trees to squared-error residuals,
// starting from the target mean.
type GradientBoostingRegressor struct {
	NEstimators    int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int
	Init           float64
	Trees          []*DecisionTreeRegressor
	NFeatures      int
	Fitted         bool
}

func (m *GradientBoostingRegressor) Name() string { return "GradientBoostingRegressor" }

func (m *GradientBoostingRegressor) Params() map[string]any {
	return map[string]any{
		"n_estimators":  m.NEstimators,
		"learning_rate": m.LearningRate,
		"max_depth":     m.MaxDepth,
	}
}

func (m *GradientBoostingRegressor) Fit(X *mat.Dense, y []float64) error {
	r, c := dims(X)
	if r == 0 {
		return ErrEmptyInput
	}
	if len(y) != r {
		return fmt.Errorf("got %d targets for %d rows", len(y), r)
	}
	if m.NEstimators < 1 || m.LearningRate <= 0 {
		return fmt.Errorf("invalid boosting parameters: n_estimators=%d learning_rate=%v", m.NEstimators, m.LearningRate)
	}

	rows := rowsOf(X)
	m.NFeatures = c
	m.Init = stat.Mean(y, nil)
	m.Trees = make([]*DecisionTreeRegressor, 0, m.NEstimators)

	pred := make([]float64, r)
	for i := range pred {
		pred[i] = m.Init
	}
	residual := make([]float64, r)
	for t := 0; t < m.NEstimators; t++ {
		floats.SubTo(residual, y, pred)
		tree := &DecisionTreeRegressor{MaxDepth: m.MaxDepth, MinSamplesLeaf: m.MinSamplesLeaf}
		tree.fitRows(rows, residual)
		for i, row := range rows {
			pred[i] += m.LearningRate * tree.predictRow(row)
		}
		m.Trees = append(m.Trees, tree)
	}
	m.Fitted = true
	return nil
}

func (m *GradientBoostingRegressor) Predict(X *mat.Dense) ([]float64, error) {
	if !m.Fitted {
		return nil, ErrNotFitted
	}
	r, c := dims(X)
	if c != m.NFeatures {
		return nil, &SchemaMismatchError{Stage: m.Name(), Want: m.NFeatures, Got: c}
	}
	out := make([]float64, r)
	row := make([]float64, c)
	for i := range out {
		mat.Row(row, i, X)
		v := m.Init
		for _, tree := range m.Trees {
			v += m.LearningRate * tree.predictRow(row)
		}
		out[i] = v
	}
	return out, nil
}

// FeatureImportances averages the per-tree importances.
func (m *GradientBoostingRegressor) FeatureImportances() []float64 {
	out := make([]float64, m.NFeatures)
	for _, tree := range m.Trees {
		floats.Add(out, tree.Importances)
	}
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}
