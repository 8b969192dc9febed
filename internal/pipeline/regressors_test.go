package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearRegressionRecoversCoefficients(t *testing.T) {
	X, y := linearData(300, 11)
	m := &LinearRegression{}
	require.NoError(t, m.Fit(X, y))

	assert.InDelta(t, 3.0, m.Coef[0], 0.01)
	assert.InDelta(t, -2.0, m.Coef[1], 0.01)
	assert.InDelta(t, 5.0, m.Intercept, 0.05)
}

func TestRidgeShrinks(t *testing.T) {
	X, y := linearData(100, 12)
	weak := &Ridge{Alpha: 0.01}
	strong := &Ridge{Alpha: 1e5}
	require.NoError(t, weak.Fit(X, y))
	require.NoError(t, strong.Fit(X, y))

	assert.Less(t, abs(strong.Coef[0]), abs(weak.Coef[0]))
	assert.Equal(t, map[string]any{"alpha": 1e5}, strong.Params())
}

func TestLinearRegressionCollinearColumns(t *testing.T) {
	rows := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	m := &LinearRegression{}
	require.NoError(t, m.Fit(FromRows(rows), []float64{2, 4, 6, 8}))

	pred, err := m.Predict(FromRows([][]float64{{5, 10}}))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pred[0], 1e-3)
}

func TestKNeighborsUniformAndDistance(t *testing.T) {
	X := FromRows([][]float64{{0}, {1}, {2}, {10}})
	y := []float64{0, 10, 20, 100}

	uniform := &KNeighborsRegressor{K: 2, Weights: WeightsUniform}
	require.NoError(t, uniform.Fit(X, y))
	pred, err := uniform.Predict(FromRows([][]float64{{0.4}}))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, pred[0], 1e-12)

	distance := &KNeighborsRegressor{K: 2, Weights: WeightsDistance}
	require.NoError(t, distance.Fit(X, y))
	pred, err = distance.Predict(FromRows([][]float64{{1}, {0.25}}))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pred[0], 1e-12)
	// weights 4 and 4/3
	assert.InDelta(t, 2.5, pred[1], 1e-9)
}

func TestDecisionTreeFitsSteps(t *testing.T) {
	X, y := stepData(100)
	m := &DecisionTreeRegressor{MaxDepth: 3, MinSamplesLeaf: 1}
	require.NoError(t, m.Fit(X, y))

	pred, err := m.Predict(FromRows([][]float64{{2, 0}, {8, 2}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, pred)

	fi := m.FeatureImportances()
	assert.InDelta(t, 1.0, fi[0], 1e-12)
	assert.InDelta(t, 0.0, fi[1], 1e-12)
}

func TestDecisionTreeRespectsMinLeaf(t *testing.T) {
	X := FromRows([][]float64{{1}, {2}, {3}, {4}})
	m := &DecisionTreeRegressor{MaxDepth: 5, MinSamplesLeaf: 3}
	require.NoError(t, m.Fit(X, []float64{1, 2, 3, 4}))
	assert.Len(t, m.Nodes, 1)
}

func TestGradientBoostingReducesError(t *testing.T) {
	X, y := linearData(120, 13)
	m := &GradientBoostingRegressor{NEstimators: 50, LearningRate: 0.1, MaxDepth: 3, MinSamplesLeaf: 1}
	require.NoError(t, m.Fit(X, y))

	pred, err := m.Predict(X)
	require.NoError(t, err)
	s, err := Score(y, pred)
	require.NoError(t, err)
	assert.Greater(t, s.R2, 0.9)

	fi := m.FeatureImportances()
	require.Len(t, fi, 2)
	assert.InDelta(t, 1.0, fi[0]+fi[1], 1e-9)
}

func TestKFoldPartitions(t *testing.T) {
	folds, err := KFold(11, 3, 42)
	require.NoError(t, err)
	require.Len(t, folds, 3)
	assert.Len(t, folds[0], 4)
	assert.Len(t, folds[2], 3)

	seen := map[int]bool{}
	for _, f := range folds {
		for _, i := range f {
			assert.False(t, seen[i])
			seen[i] = true
		}
	}
	assert.Len(t, seen, 11)

	again, err := KFold(11, 3, 42)
	require.NoError(t, err)
	assert.Equal(t, folds, again)

	_, err = KFold(2, 3, 1)
	assert.Error(t, err)
}

func TestAutoMLBudgetAlwaysEvaluatesOne(t *testing.T) {
	X, y := linearData(60, 14)
	a := NewAutoML(AutoMLConfig{Budget: time.Nanosecond, Folds: 3, Seed: 1})
	require.NoError(t, a.Fit(X, y))

	assert.Len(t, a.Trials, 1)
	assert.Equal(t, "LinearRegression", a.BestModelName)
	assert.Less(t, a.BestLoss, -0.99)
}

func TestAutoMLPicksBestFamily(t *testing.T) {
	X, y := stepData(90)
	var observed []Trial
	a := NewAutoML(AutoMLConfig{
		Budget: time.Minute,
		Folds:  3,
		Seed:   1,
		Candidates: []Candidate{
			{Family: "LinearRegression", Params: map[string]any{}, New: func() Regressor { return &LinearRegression{} }},
			{Family: "DecisionTreeRegressor", Params: map[string]any{"max_depth": 2}, New: func() Regressor {
				return &DecisionTreeRegressor{MaxDepth: 2, MinSamplesLeaf: 1}
			}},
		},
		Observer: func(tr Trial) { observed = append(observed, tr) },
	})
	require.NoError(t, a.Fit(X, y))

	assert.Len(t, observed, 2)
	assert.Equal(t, "DecisionTreeRegressor", a.BestModelName)
	assert.InDelta(t, -1.0, a.BestLoss, 1e-9)
	assert.Equal(t, 2, a.BestConfig["max_depth"])

	fi, ok := a.FeatureImportances()
	require.True(t, ok)
	assert.Len(t, fi, 2)
}

func TestAutoMLLinearHasNoImportances(t *testing.T) {
	X, y := linearData(30, 15)
	a := NewAutoML(AutoMLConfig{Budget: time.Nanosecond, Folds: 3})
	require.NoError(t, a.Fit(X, y))

	_, ok := a.FeatureImportances()
	assert.False(t, ok)
}

func TestDefaultCandidatesCoverFamilies(t *testing.T) {
	families := map[string]bool{}
	for _, c := range DefaultCandidates() {
		families[c.Family] = true
		assert.Equal(t, c.Family, c.New().Name())
	}
	assert.Len(t, families, 5)
}

func TestFormatParams(t *testing.T) {
	assert.Equal(t, "(defaults)", FormatParams(nil))
	assert.Equal(t, "alpha=1, beta=x", FormatParams(map[string]any{"beta": "x", "alpha": 1.0}))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
