package explain

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/yourusername/housing-predictor/internal/pipeline"
)

func fitted(t *testing.T, cands []pipeline.Candidate, y func(x0, x1 float64) float64) (*pipeline.Pipeline, *mat.Dense) {
	t.Helper()
	rng := rand.New(rand.NewPCG(3, 3))
	rows := make([][]float64, 80)
	ys := make([]float64, 80)
	for i := range rows {
		x0, x1 := rng.Float64()*10, rng.Float64()*10
		rows[i] = []float64{x0, x1}
		ys[i] = y(x0, x1)
	}
	X := pipeline.FromRows(rows)
	p := pipeline.NewDefault([]string{"RM", "LSTAT"}, pipeline.AutoMLConfig{
		Budget: time.Minute, Folds: 3, Seed: 1, Candidates: cands,
	})
	require.NoError(t, p.Fit(X, ys))
	return p, X
}

func linearOnly() []pipeline.Candidate {
	return pipeline.DefaultCandidates()[:1]
}

func treeOnly() []pipeline.Candidate {
	return []pipeline.Candidate{{
		Family: "DecisionTreeRegressor",
		Params: map[string]any{},
		New: func() pipeline.Regressor {
			return &pipeline.DecisionTreeRegressor{MaxDepth: 6, MinSamplesLeaf: 1}
		},
	}}
}

func TestExplainLinearIsExactAndAdditive(t *testing.T) {
	p, X := fitted(t, linearOnly(), func(x0, x1 float64) float64 { return 5*x0 + 0.1*x1 })

	res, err := Explain(p, X, Config{Samples: 10, Seed: 1})
	require.NoError(t, err)
	assert.True(t, res.Exact)
	require.Len(t, res.Values, 10)
	assert.Equal(t, "RM", res.Ranking[0].Feature)

	// attributions sum to prediction minus mean prediction
	preds, err := p.Predict(X)
	require.NoError(t, err)
	mean := 0.0
	for _, v := range preds {
		mean += v
	}
	mean /= float64(len(preds))

	for k, i := range res.Rows {
		phi := res.Values[k]
		assert.InDelta(t, preds[i]-mean, phi[0]+phi[1], 1e-6)
	}
}

func TestExplainSampledRanksDominantFeature(t *testing.T) {
	p, X := fitted(t, treeOnly(), func(x0, x1 float64) float64 {
		if x0 > 5 {
			return 30
		}
		return 10
	})

	res, err := Explain(p, X, Config{Samples: 20, Rounds: 5, Seed: 2})
	require.NoError(t, err)
	assert.False(t, res.Exact)
	assert.Equal(t, "RM", res.Ranking[0].Feature)
	assert.Greater(t, res.Ranking[0].MeanAbs, res.Ranking[1].MeanAbs)
}

func TestExplainRejectsEmpty(t *testing.T) {
	p, _ := fitted(t, linearOnly(), func(x0, x1 float64) float64 { return x0 })
	_, err := Explain(p, &mat.Dense{}, Config{})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestRankedBarChartProducesPNG(t *testing.T) {
	png, err := RankedBarChart("Feature importance", "importance", []string{"RM", "LSTAT", "CRIM"}, []float64{0.5, 0.3, 0.2})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = RankedBarChart("x", "y", []string{"a"}, nil)
	assert.Error(t, err)
}
