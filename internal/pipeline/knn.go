package pipeline

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	WeightsUniform  = "uniform"
	WeightsDistance = "distance"
)

// KNeighborsRegressor averages the targets of the K nearest training rows
// by Euclidean distance.
type KNeighborsRegressor struct {
	K       int
	Weights string
	TrainX  [][]float64
	TrainY  []float64
	Fitted  bool
}

func (m *KNeighborsRegressor) Name() string { return "KNeighborsRegressor" }

func (m *KNeighborsRegressor) Params() map[string]any {
	return map[string]any{"n_neighbors": m.K, "weights": m.Weights}
}

func (m *KNeighborsRegressor) Fit(X *mat.Dense, y []float64) error {
	r, _ := dims(X)
	if r == 0 {
		return ErrEmptyInput
	}
	if len(y) != r {
		return fmt.Errorf("got %d targets for %d rows", len(y), r)
	}
	if m.K < 1 {
		return fmt.Errorf("n_neighbors must be positive, got %d", m.K)
	}
	m.TrainX = rowsOf(X)
	m.TrainY = append([]float64(nil), y...)
	m.Fitted = true
	return nil
}

type neighbor struct {
	dist float64
	y    float64
}

func (m *KNeighborsRegressor) Predict(X *mat.Dense) ([]float64, error) {
	if !m.Fitted {
		return nil, ErrNotFitted
	}
	r, c := dims(X)
	if want := len(m.TrainX[0]); c != want {
		return nil, &SchemaMismatchError{Stage: m.Name(), Want: want, Got: c}
	}

	k := min(m.K, len(m.TrainX))
	out := make([]float64, r)
	neighbors := make([]neighbor, len(m.TrainX))
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		for t, train := range m.TrainX {
			neighbors[t] = neighbor{dist: floats.Distance(row, train, 2), y: m.TrainY[t]}
		}
		sort.SliceStable(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })
		out[i] = m.aggregate(neighbors[:k])
	}
	return out, nil
}

func (m *KNeighborsRegressor) aggregate(nearest []neighbor) float64 {
	if m.Weights != WeightsDistance {
		sum := 0.0
		for _, n := range nearest {
			sum += n.y
		}
		return sum / float64(len(nearest))
	}

	// exact matches take all the weight
	exact, exactSum := 0, 0.0
	for _, n := range nearest {
		if n.dist == 0 {
			exact++
			exactSum += n.y
		}
	}
	if exact > 0 {
		return exactSum / float64(exact)
	}

	num, den := 0.0, 0.0
	for _, n := range nearest {
		w := 1 / n.dist
		num += w * n.y
		den += w
	}
	if den == 0 || math.IsInf(den, 0) {
		return nearest[0].y
	}
	return num / den
}
