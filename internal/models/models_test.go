package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPredictionRecordMapsFeatures(t *testing.T) {
	names := []string{"CRIM", "ZN", "CHAS", "RM", "RAD", "UNKNOWN"}
	values := []float64{0.1, math.NaN(), 1, 6.5, 4, 9}

	r, err := NewPredictionRecord(names, values, 24.0, false)
	require.NoError(t, err)

	require.NotNil(t, r.CRIM)
	assert.Equal(t, 0.1, *r.CRIM)
	assert.Nil(t, r.ZN)
	require.NotNil(t, r.CHAS)
	assert.Equal(t, int64(1), *r.CHAS)
	require.NotNil(t, r.RAD)
	assert.Equal(t, int64(4), *r.RAD)
	assert.Nil(t, r.LSTAT)
	assert.Equal(t, 24.0, r.PredictionValue)

	feats := r.Features()
	assert.Len(t, feats, 4)
	assert.Equal(t, 6.5, feats["RM"])
	_, ok := feats["ZN"]
	assert.False(t, ok)
}

func TestNewPredictionRecordRejectsInvalidInput(t *testing.T) {
	_, err := NewPredictionRecord([]string{"CRIM", "RM"}, []float64{0.1}, 24.0, false)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewPredictionRecord([]string{"RM"}, []float64{6.5}, math.NaN(), false)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewPredictionRecord([]string{"RM"}, []float64{6.5}, math.Inf(1), false)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestFeatureArgsMatchColumns(t *testing.T) {
	r := &PredictionRecord{}
	assert.Len(t, r.FeatureArgs(), len(FeatureColumns))
}

func TestBacktestRowValid(t *testing.T) {
	v := 21.0
	assert.True(t, BacktestRow{Predicted: &v}.Valid())
	assert.False(t, BacktestRow{Error: "timeout"}.Valid())
}
