package repository

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/database"
	"github.com/yourusername/housing-predictor/internal/features"
	"github.com/yourusername/housing-predictor/internal/models"
)

func newSQLiteRepo(t *testing.T) *GormPredictionRepository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "predictions.db"))
	require.NoError(t, err)
	repo := NewGormPredictionRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleRecord(prediction float64) *models.PredictionRecord {
	names := features.Default().Names()
	values := []float64{0.02, math.NaN(), 7.07, 0, 0.469, 6.4, 78.9, 4.97, 2, 242, 17.8, 396.9, 9.14}
	rec, err := models.NewPredictionRecord(names, values, prediction, false)
	if err != nil {
		panic(err)
	}
	return rec
}

func appendOne(ctx context.Context, repo PredictionRepository, rec *models.PredictionRecord) (int64, error) {
	var id int64
	err := repo.WithTx(ctx, func(w PredictionWriter) error {
		var err error
		id, err = w.Append(ctx, rec)
		return err
	})
	return id, err
}

func runRepositoryContract(t *testing.T, repo PredictionRepository) {
	ctx := context.Background()

	t.Run("append assigns increasing ids and timestamps", func(t *testing.T) {
		first := sampleRecord(21.6)
		id1, err := appendOne(ctx, repo, first)
		require.NoError(t, err)
		id2, err := appendOne(ctx, repo, sampleRecord(34.7))
		require.NoError(t, err)

		assert.Greater(t, id2, id1)
		assert.Equal(t, id1, first.ID)
		assert.False(t, first.PredictionTime.IsZero())
	})

	t.Run("failed transaction is rolled back", func(t *testing.T) {
		before, err := repo.Count(ctx)
		require.NoError(t, err)

		boom := errors.New("model failed")
		err = repo.WithTx(ctx, func(w PredictionWriter) error {
			if _, err := w.Append(ctx, sampleRecord(1)); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		after, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("recent returns newest first with nullable features", func(t *testing.T) {
		rec := sampleRecord(0)
		rec.Overridden = true
		rec.RM = nil
		rec.LSTAT = nil
		id, err := appendOne(ctx, repo, rec)
		require.NoError(t, err)

		recent, err := repo.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, id, recent[0].ID)
		assert.True(t, recent[0].Overridden)
		assert.Nil(t, recent[0].RM)
		assert.Nil(t, recent[0].ZN)
		require.NotNil(t, recent[0].RAD)
		assert.Equal(t, int64(2), *recent[0].RAD)
		assert.Greater(t, recent[0].ID, recent[1].ID)
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		before, err := repo.Count(ctx)
		require.NoError(t, err)

		const writers = 20
		var wg sync.WaitGroup
		ids := make([]int64, writers)
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids[i], errs[i] = appendOne(ctx, repo, sampleRecord(float64(i)))
			}(i)
		}
		wg.Wait()

		seen := make(map[int64]bool, writers)
		for i := range ids {
			require.NoError(t, errs[i])
			assert.False(t, seen[ids[i]], "duplicate id %d", ids[i])
			seen[ids[i]] = true
		}
		after, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+writers, after)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}

func TestGormPredictionRepository(t *testing.T) {
	runRepositoryContract(t, newSQLiteRepo(t))
}

func TestPostgresPredictionRepository(t *testing.T) {
	db := database.SetupTestDB(t)
	runRepositoryContract(t, NewPostgresPredictionRepository(db))
}

func TestNewPredictionRepository_SQLite(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "nested", "predictions.db"),
	}}

	repo, err := NewPredictionRepository(context.Background(), cfg)
	require.NoError(t, err)
	defer repo.Close()

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewPredictionRepository_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "mysql"}}

	_, err := NewPredictionRepository(context.Background(), cfg)
	assert.Error(t, err)
}
