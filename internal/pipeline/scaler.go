package pipeline

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each column and divides by its population
// standard deviation. Constant columns keep scale 1.
type StandardScaler struct {
	Mean   []float64
	Scale  []float64
	Fitted bool
}

func (s *StandardScaler) Name() string { return "scaler" }

func (s *StandardScaler) Fit(X *mat.Dense, _ []float64) error {
	r, c := dims(X)
	if r == 0 {
		return ErrEmptyInput
	}
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Mean[j] = mean
		s.Scale[j] = math.Sqrt(variance)
		if s.Scale[j] == 0 || math.IsNaN(s.Scale[j]) {
			s.Scale[j] = 1
		}
	}
	s.Fitted = true
	return nil
}

func (s *StandardScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	if !s.Fitted {
		return nil, ErrNotFitted
	}
	r, c := dims(X)
	if c != len(s.Mean) {
		return nil, &SchemaMismatchError{Stage: s.Name(), Want: len(s.Mean), Got: c}
	}
	if r == 0 {
		return &mat.Dense{}, nil
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, _ float64) float64 {
		return (X.At(i, j) - s.Mean[j]) / s.Scale[j]
	}, X)
	return out, nil
}
