package ml

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/housing-predictor/internal/metrics"
)

// CacheKey renders a feature row as a cache key. NaN is kept distinct from
// every number so rows with missing values never collide with filled ones.
func CacheKey(row []float64) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte('|')
		}
		if math.IsNaN(v) {
			b.WriteString("NaN")
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// PredictionCache memoizes estimator outputs per feature row.
type PredictionCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int

	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewPredictionCache creates a new prediction cache. A maxSize of 0 means unbounded.
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction
func (pc *PredictionCache) Get(row []float64) (float64, bool) {
	if v, found := pc.cache.Get(CacheKey(row)); found {
		if value, ok := v.(float64); ok {
			pc.hitCount.Add(1)
			metrics.RecordCacheLookup(true)
			return value, true
		}
	}
	pc.missCount.Add(1)
	metrics.RecordCacheLookup(false)
	return 0, false
}

// Set stores a prediction. When the cache is full, expired items are
// dropped first and the write is skipped if that frees nothing.
func (pc *PredictionCache) Set(row []float64, value float64) {
	if pc.maxSize > 0 && pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
		if pc.cache.ItemCount() >= pc.maxSize {
			return
		}
	}
	pc.cache.Set(CacheKey(row), value, pc.ttl)
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.cache.Flush()
	pc.hitCount.Store(0)
	pc.missCount.Store(0)
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount.Load()
	misses = pc.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
