package ml

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "1|2.5|NaN", CacheKey([]float64{1, 2.5, math.NaN()}))
	assert.NotEqual(t, CacheKey([]float64{0}), CacheKey([]float64{math.NaN()}))
}

func TestPredictionCacheGetSet(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 100)
	defer cache.Clear()

	row := []float64{0.1, 6.5, 4.9}
	_, ok := cache.Get(row)
	assert.False(t, ok)

	cache.Set(row, 24.1)
	v, ok := cache.Get(row)
	require.True(t, ok)
	assert.Equal(t, 24.1, v)

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)
}

func TestPredictionCacheExpiration(t *testing.T) {
	cache := NewPredictionCache(50*time.Millisecond, 100)
	row := []float64{1}
	cache.Set(row, 10)

	time.Sleep(120 * time.Millisecond)

	_, ok := cache.Get(row)
	assert.False(t, ok)
}

func TestPredictionCacheMaxSize(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 2)
	cache.Set([]float64{1}, 1)
	cache.Set([]float64{2}, 2)
	cache.Set([]float64{3}, 3)

	assert.Equal(t, 2, cache.ItemCount())
	_, ok := cache.Get([]float64{3})
	assert.False(t, ok)
}

type countingPredictor struct {
	calls int
	err   error
}

func (c *countingPredictor) PredictRow(row []float64) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return row[0] * 2, nil
}

func TestCachedPredictor(t *testing.T) {
	inner := &countingPredictor{}
	p := NewCachedPredictor(inner, NewPredictionCache(time.Hour, 10))

	for i := 0; i < 3; i++ {
		v, err := p.PredictRow([]float64{4})
		require.NoError(t, err)
		assert.Equal(t, 8.0, v)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCachedPredictor_ErrorsNotCached(t *testing.T) {
	inner := &countingPredictor{err: errors.New("boom")}
	p := NewCachedPredictor(inner, NewPredictionCache(time.Hour, 10))

	_, err := p.PredictRow([]float64{4})
	assert.Error(t, err)
	_, err = p.PredictRow([]float64{4})
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedPredictor_NilCache(t *testing.T) {
	inner := &countingPredictor{}
	p := NewCachedPredictor(inner, nil)

	_, _ = p.PredictRow([]float64{1})
	_, _ = p.PredictRow([]float64{1})
	assert.Equal(t, 2, inner.calls)
}
