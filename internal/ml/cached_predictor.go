package ml

// RowPredictor predicts one feature row in pipeline column order.
type RowPredictor interface {
	PredictRow(row []float64) (float64, error)
}

// CachedPredictor wraps a RowPredictor with a PredictionCache.
type CachedPredictor struct {
	predictor RowPredictor
	cache     *PredictionCache
}

// NewCachedPredictor returns a caching wrapper. A nil cache disables memoization.
func NewCachedPredictor(predictor RowPredictor, cache *PredictionCache) *CachedPredictor {
	return &CachedPredictor{predictor: predictor, cache: cache}
}

// PredictRow returns the cached value for row or computes and stores it.
// Errors are never cached.
func (c *CachedPredictor) PredictRow(row []float64) (float64, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(row); ok {
			return v, nil
		}
	}
	v, err := c.predictor.PredictRow(row)
	if err != nil {
		return 0, err
	}
	if c.cache != nil {
		c.cache.Set(row, v)
	}
	return v, nil
}
