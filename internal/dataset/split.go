package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

func testCount(n int, testSize float64) (int, error) {
	if testSize <= 0 || testSize >= 1 {
		return 0, fmt.Errorf("test size %v outside (0, 1)", testSize)
	}
	k := int(math.Ceil(testSize * float64(n)))
	if k < 1 || k >= n {
		return 0, fmt.Errorf("cannot split %d rows with test size %v", n, testSize)
	}
	return k, nil
}

// Split shuffles rows with a seeded generator and holds out ceil(testSize*n)
// of them. The same seed always yields the same partition.
func Split(f *Frame, testSize float64, seed int64) (train, test *Frame, err error) {
	k, err := testCount(f.Len(), testSize)
	if err != nil {
		return nil, nil, err
	}
	perm := newRand(seed).Perm(f.Len())
	return f.Take(perm[k:]), f.Take(perm[:k]), nil
}

// StratifiedSplit is Split that keeps the class proportions of column in
// both partitions. The column must not contain NaN.
func StratifiedSplit(f *Frame, column string, testSize float64, seed int64) (train, test *Frame, err error) {
	values, err := f.Column(column)
	if err != nil {
		return nil, nil, err
	}
	k, err := testCount(f.Len(), testSize)
	if err != nil {
		return nil, nil, err
	}

	groups := make(map[float64][]int)
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, nil, fmt.Errorf("stratify column %s has missing values", column)
		}
		groups[v] = append(groups[v], i)
	}
	keys := make([]float64, 0, len(groups))
	for v := range groups {
		keys = append(keys, v)
	}
	sort.Float64s(keys)

	// floor allocation, then hand out the remainder by largest fraction
	type share struct {
		key  float64
		take int
		frac float64
	}
	shares := make([]share, len(keys))
	allocated := 0
	for i, key := range keys {
		exact := testSize * float64(len(groups[key]))
		take := int(math.Floor(exact))
		shares[i] = share{key: key, take: take, frac: exact - float64(take)}
		allocated += take
	}
	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return shares[order[a]].frac > shares[order[b]].frac })
	for _, i := range order {
		if allocated >= k {
			break
		}
		if shares[i].take < len(groups[shares[i].key]) {
			shares[i].take++
			allocated++
		}
	}

	rng := newRand(seed)
	var trainIdx, testIdx []int
	for _, s := range shares {
		members := groups[s.key]
		perm := rng.Perm(len(members))
		for p, m := range perm {
			if p < s.take {
				testIdx = append(testIdx, members[m])
			} else {
				trainIdx = append(trainIdx, members[m])
			}
		}
	}
	rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })

	return f.Take(trainIdx), f.Take(testIdx), nil
}
