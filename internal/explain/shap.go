// Package explain computes additive feature attributions for a fitted
// pipeline and renders ranked bar charts.
package explain

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/housing-predictor/internal/pipeline"
)

// ErrNoRows is returned when there is nothing to explain.
var ErrNoRows = errors.New("no rows to explain")

// Config bounds the attribution work.
type Config struct {
	// Samples caps the rows explained; 0 means all rows.
	Samples int
	// Rounds is the number of sampled permutations per row for non-linear models.
	Rounds int
	Seed   int64
}

// Attribution is the mean absolute contribution of one feature.
type Attribution struct {
	Feature string
	MeanAbs float64
}

// Result holds per-row attributions over the processed features.
type Result struct {
	Features []string
	Rows     []int
	Values   [][]float64
	Ranking  []Attribution
	Exact    bool
}

// Explain attributes the pipeline's predictions on X (raw feature rows in
// pipeline column order) to individual features. Linear winners get exact
// values coef·(x - mean); anything else gets permutation-sampled Shapley
// values against the processed rows as background.
func Explain(p *pipeline.Pipeline, X *mat.Dense, cfg Config) (*Result, error) {
	if X == nil || X.IsEmpty() {
		return nil, ErrNoRows
	}
	processed, err := p.Transform(X)
	if err != nil {
		return nil, fmt.Errorf("failed to transform rows: %w", err)
	}

	model := pipeline.Predictor(p.Final())
	if automl, ok := p.AutoML(); ok {
		if !automl.Fitted {
			return nil, pipeline.ErrNotFitted
		}
		model = automl.Best
	}

	r, c := processed.Dims()
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 0xda942042e4dd58b5))
	sampleIdx := rng.Perm(r)
	if cfg.Samples > 0 && cfg.Samples < r {
		sampleIdx = sampleIdx[:cfg.Samples]
	}

	res := &Result{Features: append([]string(nil), p.Columns...), Rows: sampleIdx}
	if len(res.Features) != c {
		res.Features = make([]string, c)
		for j := range res.Features {
			res.Features[j] = fmt.Sprintf("f%d", j)
		}
	}

	if lm, ok := model.(pipeline.LinearModel); ok {
		res.Values = linearShap(lm.Coefficients(), processed, sampleIdx)
		res.Exact = true
	} else {
		rounds := cfg.Rounds
		if rounds < 1 {
			rounds = 10
		}
		res.Values, err = sampledShap(model, processed, sampleIdx, rounds, rng)
		if err != nil {
			return nil, err
		}
	}

	res.Ranking = rank(res.Features, res.Values)
	return res, nil
}

func linearShap(coef []float64, X *mat.Dense, idx []int) [][]float64 {
	_, c := X.Dims()
	means := make([]float64, c)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, X), nil)
	}
	out := make([][]float64, len(idx))
	for k, i := range idx {
		phi := make([]float64, c)
		for j := range phi {
			phi[j] = coef[j] * (X.At(i, j) - means[j])
		}
		out[k] = phi
	}
	return out
}

// sampledShap walks a random feature ordering from a random background row
// to the explained row, crediting each feature with the prediction change
// when it is switched over. Each walk is predicted as one batch.
func sampledShap(model pipeline.Predictor, X *mat.Dense, idx []int, rounds int, rng *rand.Rand) ([][]float64, error) {
	r, c := X.Dims()
	out := make([][]float64, len(idx))
	path := mat.NewDense(c+1, c, nil)

	for k, i := range idx {
		phi := make([]float64, c)
		for round := 0; round < rounds; round++ {
			order := rng.Perm(c)
			bg := rng.IntN(r)

			current := mat.Row(nil, bg, X)
			path.SetRow(0, current)
			for step, j := range order {
				current[j] = X.At(i, j)
				path.SetRow(step+1, current)
			}

			preds, err := model.Predict(path)
			if err != nil {
				return nil, fmt.Errorf("failed to predict permutation path: %w", err)
			}
			for step, j := range order {
				phi[j] += preds[step+1] - preds[step]
			}
		}
		for j := range phi {
			phi[j] /= float64(rounds)
		}
		out[k] = phi
	}
	return out, nil
}

func rank(features []string, values [][]float64) []Attribution {
	ranking := make([]Attribution, len(features))
	for j, f := range features {
		sum := 0.0
		for _, row := range values {
			sum += math.Abs(row[j])
		}
		mean := 0.0
		if len(values) > 0 {
			mean = sum / float64(len(values))
		}
		ranking[j] = Attribution{Feature: f, MeanAbs: mean}
	}
	sort.SliceStable(ranking, func(a, b int) bool { return ranking[a].MeanAbs > ranking[b].MeanAbs })
	return ranking
}
