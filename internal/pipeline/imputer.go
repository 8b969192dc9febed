package pipeline

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// MedianImputer replaces missing values with the per-column median seen at fit.
type MedianImputer struct {
	Medians []float64
	Fitted  bool
}

func (m *MedianImputer) Name() string { return "imputer" }

// Fit learns column medians over non-missing values. A column with no
// observed values gets 0.
func (m *MedianImputer) Fit(X *mat.Dense, _ []float64) error {
	r, c := dims(X)
	if r == 0 {
		return ErrEmptyInput
	}
	m.Medians = make([]float64, c)
	col := make([]float64, 0, r)
	for j := 0; j < c; j++ {
		col = col[:0]
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				col = append(col, v)
			}
		}
		m.Medians[j] = median(col)
	}
	m.Fitted = true
	return nil
}

// Transform returns a copy of X with NaN cells filled.
func (m *MedianImputer) Transform(X *mat.Dense) (*mat.Dense, error) {
	if !m.Fitted {
		return nil, ErrNotFitted
	}
	r, c := dims(X)
	if c != len(m.Medians) {
		return nil, &SchemaMismatchError{Stage: m.Name(), Want: len(m.Medians), Got: c}
	}
	if r == 0 {
		return &mat.Dense{}, nil
	}
	out := mat.DenseCopyOf(X)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(out.At(i, j)) {
				out.Set(i, j, m.Medians[j])
			}
		}
	}
	return out, nil
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
