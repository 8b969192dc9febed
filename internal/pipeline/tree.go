package pipeline

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const leafFeature = -1

// TreeNode is one node of a fitted regression tree. Leaves have Feature -1.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Samples   int
}

// DecisionTreeRegressor is a CART tree grown on squared error.
type DecisionTreeRegressor struct {
	MaxDepth       int
	MinSamplesLeaf int
	Nodes          []TreeNode
	Importances    []float64
	NFeatures      int
	Fitted         bool
}

func (m *DecisionTreeRegressor) Name() string { return "DecisionTreeRegressor" }

func (m *DecisionTreeRegressor) Params() map[string]any {
	return map[string]any{"max_depth": m.MaxDepth, "min_samples_leaf": m.MinSamplesLeaf}
}

func (m *DecisionTreeRegressor) Fit(X *mat.Dense, y []float64) error {
	r, _ := dims(X)
	if r == 0 {
		return ErrEmptyInput
	}
	if len(y) != r {
		return fmt.Errorf("got %d targets for %d rows", len(y), r)
	}
	m.fitRows(rowsOf(X), y)
	return nil
}

func (m *DecisionTreeRegressor) fitRows(rows [][]float64, y []float64) {
	if m.MinSamplesLeaf < 1 {
		m.MinSamplesLeaf = 1
	}
	m.NFeatures = len(rows[0])
	m.Nodes = m.Nodes[:0]
	m.Importances = make([]float64, m.NFeatures)

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	b := &treeBuilder{tree: m, rows: rows, y: y}
	b.build(idx, 0)

	if total := floats.Sum(m.Importances); total > 0 {
		floats.Scale(1/total, m.Importances)
	}
	m.Fitted = true
}

func (m *DecisionTreeRegressor) Predict(X *mat.Dense) ([]float64, error) {
	if !m.Fitted {
		return nil, ErrNotFitted
	}
	r, c := dims(X)
	if c != m.NFeatures {
		return nil, &SchemaMismatchError{Stage: m.Name(), Want: m.NFeatures, Got: c}
	}
	out := make([]float64, r)
	row := make([]float64, c)
	for i := range out {
		mat.Row(row, i, X)
		out[i] = m.predictRow(row)
	}
	return out, nil
}

// FeatureImportances returns the normalized impurity decrease per feature.
func (m *DecisionTreeRegressor) FeatureImportances() []float64 {
	return append([]float64(nil), m.Importances...)
}

func (m *DecisionTreeRegressor) predictRow(row []float64) float64 {
	n := 0
	for m.Nodes[n].Feature != leafFeature {
		node := m.Nodes[n]
		if row[node.Feature] <= node.Threshold {
			n = node.Left
		} else {
			n = node.Right
		}
	}
	return m.Nodes[n].Value
}

type treeBuilder struct {
	tree *DecisionTreeRegressor
	rows [][]float64
	y    []float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

func (b *treeBuilder) build(idx []int, depth int) int {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, TreeNode{Feature: leafFeature, Value: sum / n, Samples: len(idx)})

	sse := sumSq - sum*sum/n
	if (b.tree.MaxDepth > 0 && depth >= b.tree.MaxDepth) || len(idx) < 2*b.tree.MinSamplesLeaf || sse <= 1e-12 {
		return id
	}

	best, ok := b.bestSplit(idx, sse)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if b.rows[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	b.tree.Importances[best.feature] += best.gain

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	node := &b.tree.Nodes[id]
	node.Feature, node.Threshold, node.Left, node.Right = best.feature, best.threshold, l, r
	return id
}

func (b *treeBuilder) bestSplit(idx []int, parentSSE float64) (split, bool) {
	minLeaf := b.tree.MinSamplesLeaf
	n := len(idx)
	sorted := make([]int, n)
	best := split{gain: 1e-12}
	found := false

	for f := 0; f < b.tree.NFeatures; f++ {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.rows[sorted[a]][f] < b.rows[sorted[c]][f] })

		var totalSum, totalSq float64
		for _, i := range sorted {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		var leftSum, leftSq float64
		for k := 1; k < n; k++ {
			yi := b.y[sorted[k-1]]
			leftSum += yi
			leftSq += yi * yi
			if k < minLeaf || n-k < minLeaf {
				continue
			}
			lo, hi := b.rows[sorted[k-1]][f], b.rows[sorted[k]][f]
			if lo == hi {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			sseLeft := leftSq - leftSum*leftSum/nl
			sseRight := rightSq - rightSum*rightSum/nr
			if gain := parentSSE - sseLeft - sseRight; gain > best.gain {
				best = split{feature: f, threshold: (lo + hi) / 2, gain: gain}
				found = true
			}
		}
	}
	return best, found
}
