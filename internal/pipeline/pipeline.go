// Package pipeline implements the fitted estimator: imputation, scaling and an
// AutoML-selected regressor chained as ordered stages.
package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Stage is one step of a pipeline.
type Stage interface {
	Name() string
}

// Transformer is an intermediate stage.
type Transformer interface {
	Stage
	Fit(X *mat.Dense, y []float64) error
	Transform(X *mat.Dense) (*mat.Dense, error)
}

// Predictor is the final stage.
type Predictor interface {
	Stage
	Fit(X *mat.Dense, y []float64) error
	Predict(X *mat.Dense) ([]float64, error)
}

// Pipeline is the unit persisted as the model artifact. Columns records the
// feature order the stages were fitted on.
type Pipeline struct {
	Columns []string
	Stages  []Stage
}

// New validates the stage list: every stage but the last must be a
// Transformer, the last a Predictor.
func New(columns []string, stages ...Stage) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: no stages", ErrInvalidPipeline)
	}
	for i, s := range stages[:len(stages)-1] {
		if _, ok := s.(Transformer); !ok {
			return nil, fmt.Errorf("%w: stage %d (%s) is not a transformer", ErrInvalidPipeline, i, s.Name())
		}
	}
	last := stages[len(stages)-1]
	if _, ok := last.(Predictor); !ok {
		return nil, fmt.Errorf("%w: final stage %s is not a predictor", ErrInvalidPipeline, last.Name())
	}
	return &Pipeline{Columns: append([]string(nil), columns...), Stages: stages}, nil
}

// Final returns the predictor stage.
func (p *Pipeline) Final() Predictor {
	return p.Stages[len(p.Stages)-1].(Predictor)
}

// Fit fits every transformer in order on the output of the previous one,
// then fits the predictor.
func (p *Pipeline) Fit(X *mat.Dense, y []float64) error {
	if err := p.checkWidth(X); err != nil {
		return err
	}
	Xt := X
	for _, s := range p.Stages[:len(p.Stages)-1] {
		t := s.(Transformer)
		if err := t.Fit(Xt, y); err != nil {
			return fmt.Errorf("failed to fit stage %s: %w", t.Name(), err)
		}
		var err error
		if Xt, err = t.Transform(Xt); err != nil {
			return fmt.Errorf("failed to transform at stage %s: %w", t.Name(), err)
		}
	}
	final := p.Final()
	if err := final.Fit(Xt, y); err != nil {
		return fmt.Errorf("failed to fit stage %s: %w", final.Name(), err)
	}
	return nil
}

// Transform runs X through the transformers only.
func (p *Pipeline) Transform(X *mat.Dense) (*mat.Dense, error) {
	if err := p.checkWidth(X); err != nil {
		return nil, err
	}
	Xt := X
	for _, s := range p.Stages[:len(p.Stages)-1] {
		var err error
		if Xt, err = s.(Transformer).Transform(Xt); err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.Name(), err)
		}
	}
	return Xt, nil
}

// Predict transforms X and predicts with the final stage. It never refits.
func (p *Pipeline) Predict(X *mat.Dense) ([]float64, error) {
	Xt, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	out, err := p.Final().Predict(Xt)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", p.Final().Name(), err)
	}
	return out, nil
}

// PredictRow predicts a single row given in Columns order.
func (p *Pipeline) PredictRow(row []float64) (float64, error) {
	out, err := p.Predict(mat.NewDense(1, len(row), append([]float64(nil), row...)))
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// AutoML returns the search stage when the predictor is one.
func (p *Pipeline) AutoML() (*AutoML, bool) {
	a, ok := p.Final().(*AutoML)
	return a, ok
}

func (p *Pipeline) checkWidth(X *mat.Dense) error {
	if len(p.Columns) == 0 {
		return nil
	}
	if _, c := X.Dims(); c != len(p.Columns) {
		return &SchemaMismatchError{Stage: "pipeline", Want: len(p.Columns), Got: c}
	}
	return nil
}

// FromRows builds a dense matrix from row slices.
func FromRows(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), c, data)
}

// rowsOf copies a matrix back into row slices.
func rowsOf(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	out := make([][]float64, r)
	for i := range out {
		row := make([]float64, c)
		for j := range row {
			row[j] = X.At(i, j)
		}
		out[i] = row
	}
	return out
}

func dims(X *mat.Dense) (int, int) {
	if X == nil || X.IsEmpty() {
		return 0, 0
	}
	return X.Dims()
}
