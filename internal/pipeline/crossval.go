package pipeline

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// KFold shuffles n row indices with seed and deals them into k folds. The
// first n%k folds hold one extra row.
func KFold(n, k int, seed int64) ([][]int, error) {
	if k < 2 || k > n {
		return nil, fmt.Errorf("cannot make %d folds from %d rows", k, n)
	}
	perm := rand.New(rand.NewPCG(uint64(seed), 0x2545f4914f6cdd1d)).Perm(n)
	folds := make([][]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		folds[f] = perm[start : start+size]
		start += size
	}
	return folds, nil
}

// CrossValScore fits a fresh model per fold and returns the mean held-out R².
func CrossValScore(newModel func() Regressor, X *mat.Dense, y []float64, folds int, seed int64) (float64, error) {
	r, _ := dims(X)
	if len(y) != r {
		return 0, fmt.Errorf("got %d targets for %d rows", len(y), r)
	}
	splits, err := KFold(r, folds, seed)
	if err != nil {
		return 0, err
	}
	rows := rowsOf(X)

	scores := make([]float64, 0, len(splits))
	for f, testIdx := range splits {
		inTest := make(map[int]bool, len(testIdx))
		for _, i := range testIdx {
			inTest[i] = true
		}
		var trainRows, testRows [][]float64
		var trainY, testY []float64
		for i, row := range rows {
			if inTest[i] {
				testRows = append(testRows, row)
				testY = append(testY, y[i])
			} else {
				trainRows = append(trainRows, row)
				trainY = append(trainY, y[i])
			}
		}

		model := newModel()
		if err := model.Fit(FromRows(trainRows), trainY); err != nil {
			return 0, fmt.Errorf("fold %d: %w", f, err)
		}
		pred, err := model.Predict(FromRows(testRows))
		if err != nil {
			return 0, fmt.Errorf("fold %d: %w", f, err)
		}
		scores = append(scores, stat.RSquaredFrom(pred, testY, nil))
	}
	return stat.Mean(scores, nil), nil
}
