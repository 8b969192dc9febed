package pipeline

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// olsJitter keeps the normal equations factorizable when columns are collinear.
const olsJitter = 1e-8

// LinearRegression is ordinary least squares.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
	Fitted    bool
}

func (m *LinearRegression) Name() string           { return "LinearRegression" }
func (m *LinearRegression) Params() map[string]any { return map[string]any{} }

func (m *LinearRegression) Fit(X *mat.Dense, y []float64) error {
	coef, intercept, err := fitRidge(X, y, olsJitter)
	if err != nil {
		return err
	}
	m.Coef, m.Intercept, m.Fitted = coef, intercept, true
	return nil
}

func (m *LinearRegression) Predict(X *mat.Dense) ([]float64, error) {
	if !m.Fitted {
		return nil, ErrNotFitted
	}
	return linearPredict(m.Name(), X, m.Coef, m.Intercept)
}

func (m *LinearRegression) Coefficients() []float64 { return m.Coef }
func (m *LinearRegression) InterceptTerm() float64  { return m.Intercept }

// Ridge is L2-regularized least squares. The intercept is not penalized.
type Ridge struct {
	Alpha     float64
	Coef      []float64
	Intercept float64
	Fitted    bool
}

func (m *Ridge) Name() string           { return "Ridge" }
func (m *Ridge) Params() map[string]any { return map[string]any{"alpha": m.Alpha} }

func (m *Ridge) Fit(X *mat.Dense, y []float64) error {
	coef, intercept, err := fitRidge(X, y, m.Alpha+olsJitter)
	if err != nil {
		return err
	}
	m.Coef, m.Intercept, m.Fitted = coef, intercept, true
	return nil
}

func (m *Ridge) Predict(X *mat.Dense) ([]float64, error) {
	if !m.Fitted {
		return nil, ErrNotFitted
	}
	return linearPredict(m.Name(), X, m.Coef, m.Intercept)
}

func (m *Ridge) Coefficients() []float64 { return m.Coef }
func (m *Ridge) InterceptTerm() float64  { return m.Intercept }

// fitRidge solves (XcᵀXc + αI)β = Xcᵀyc on centered data.
func fitRidge(X *mat.Dense, y []float64, alpha float64) ([]float64, float64, error) {
	r, c := dims(X)
	if r == 0 {
		return nil, 0, ErrEmptyInput
	}
	if len(y) != r {
		return nil, 0, fmt.Errorf("got %d targets for %d rows", len(y), r)
	}

	xMean := make([]float64, c)
	for j := range xMean {
		xMean[j] = stat.Mean(mat.Col(nil, j, X), nil)
	}
	yMean := stat.Mean(y, nil)

	Xc := mat.NewDense(r, c, nil)
	Xc.Apply(func(_, j int, v float64) float64 { return v - xMean[j] }, X)
	yc := append([]float64(nil), y...)
	floats.AddConst(-yMean, yc)

	var xtx mat.SymDense
	xtx.SymOuterK(1, Xc.T())
	for j := 0; j < c; j++ {
		xtx.SetSym(j, j, xtx.At(j, j)+alpha)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, 0, errors.New("normal equations are not positive definite")
	}

	var xty mat.VecDense
	xty.MulVec(Xc.T(), mat.NewVecDense(r, yc))

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, 0, err
		}
	}

	coef := make([]float64, c)
	for j := range coef {
		coef[j] = beta.AtVec(j)
	}
	return coef, yMean - floats.Dot(coef, xMean), nil
}

func linearPredict(name string, X *mat.Dense, coef []float64, intercept float64) ([]float64, error) {
	r, c := dims(X)
	if c != len(coef) {
		return nil, &SchemaMismatchError{Stage: name, Want: len(coef), Got: c}
	}
	if r == 0 {
		return []float64{}, nil
	}
	var out mat.VecDense
	out.MulVec(X, mat.NewVecDense(c, coef))
	preds := make([]float64, r)
	for i := range preds {
		preds[i] = out.AtVec(i) + intercept
	}
	return preds, nil
}
