package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Candidate is one (family, hyperparameters) point of the search space.
type Candidate struct {
	Family string
	Params map[string]any
	New    func() Regressor
}

// DefaultCandidates is the search space in evaluation order: cheap
// families first so a short budget still yields a model.
func DefaultCandidates() []Candidate {
	var out []Candidate
	add := func(r func() Regressor) {
		proto := r()
		out = append(out, Candidate{Family: proto.Name(), Params: proto.Params(), New: r})
	}

	add(func() Regressor { return &LinearRegression{} })
	for _, alpha := range []float64{0.1, 1, 10} {
		add(func() Regressor { return &Ridge{Alpha: alpha} })
	}
	for _, k := range []int{3, 5, 10} {
		for _, w := range []string{WeightsUniform, WeightsDistance} {
			add(func() Regressor { return &KNeighborsRegressor{K: k, Weights: w} })
		}
	}
	for _, depth := range []int{4, 6, 8} {
		for _, leaf := range []int{2, 5} {
			add(func() Regressor { return &DecisionTreeRegressor{MaxDepth: depth, MinSamplesLeaf: leaf} })
		}
	}
	for _, n := range []int{100, 200} {
		for _, lr := range []float64{0.05, 0.1} {
			add(func() Regressor {
				return &GradientBoostingRegressor{NEstimators: n, LearningRate: lr, MaxDepth: 3, MinSamplesLeaf: 1}
			})
		}
	}
	return out
}

// Trial records one evaluated candidate.
type Trial struct {
	Family  string
	Params  map[string]any
	CVScore float64
	Elapsed time.Duration
	Err     string
}

// AutoMLConfig configures the search.
type AutoMLConfig struct {
	Budget     time.Duration
	Folds      int
	Seed       int64
	Candidates []Candidate
	Observer   func(Trial)
}

// AutoML evaluates candidates in order with k-fold CV until the time
// budget runs out, then refits the best on all rows. At least one
// candidate is always evaluated.
type AutoML struct {
	Budget time.Duration
	Folds  int
	Seed   int64

	Best          Regressor
	BestModelName string
	BestLoss      float64
	BestConfig    map[string]any
	Trials        []Trial
	Fitted        bool

	candidates []Candidate
	observer   func(Trial)
}

// NewAutoML creates an unfitted search stage.
func NewAutoML(cfg AutoMLConfig) *AutoML {
	if cfg.Folds == 0 {
		cfg.Folds = 5
	}
	return &AutoML{
		Budget:     cfg.Budget,
		Folds:      cfg.Folds,
		Seed:       cfg.Seed,
		candidates: cfg.Candidates,
		observer:   cfg.Observer,
	}
}

func (a *AutoML) Name() string { return "automl" }

func (a *AutoML) Fit(X *mat.Dense, y []float64) error {
	r, _ := dims(X)
	if r == 0 {
		return ErrEmptyInput
	}
	if r < 2 {
		return fmt.Errorf("need at least 2 rows for cross-validation, got %d", r)
	}
	candidates := a.candidates
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}
	folds := min(a.Folds, r)

	a.Trials = a.Trials[:0]
	start := time.Now()
	bestIdx, bestScore := -1, math.Inf(-1)
	for i, cand := range candidates {
		if i > 0 && time.Since(start) >= a.Budget {
			break
		}
		began := time.Now()
		score, err := CrossValScore(cand.New, X, y, folds, a.Seed)
		trial := Trial{Family: cand.Family, Params: cand.Params, CVScore: score, Elapsed: time.Since(began)}
		if err != nil {
			trial.Err = err.Error()
		}
		a.Trials = append(a.Trials, trial)
		if a.observer != nil {
			a.observer(trial)
		}
		if err == nil && !math.IsNaN(score) && score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 {
		return errors.New("no candidate could be evaluated")
	}

	winner := candidates[bestIdx]
	model := winner.New()
	if err := model.Fit(X, y); err != nil {
		return fmt.Errorf("failed to refit %s: %w", winner.Family, err)
	}
	a.Best = model
	a.BestModelName = winner.Family
	a.BestLoss = -bestScore
	a.BestConfig = model.Params()
	a.Fitted = true
	return nil
}

func (a *AutoML) Predict(X *mat.Dense) ([]float64, error) {
	if !a.Fitted {
		return nil, ErrNotFitted
	}
	return a.Best.Predict(X)
}

// FeatureImportances returns the winner's importances when it has them.
func (a *AutoML) FeatureImportances() ([]float64, bool) {
	if !a.Fitted {
		return nil, false
	}
	fi, ok := a.Best.(FeatureImportancer)
	if !ok {
		return nil, false
	}
	return fi.FeatureImportances(), true
}

// FormatParams renders hyperparameters as sorted key=value pairs.
func FormatParams(params map[string]any) string {
	if len(params) == 0 {
		return "(defaults)"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	return strings.Join(parts, ", ")
}
