package dataset

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/housing-predictor/internal/datasource"
)

const sampleCSV = `CRIM,ZN,CHAS,RM,MDEV
0.00632,18,0,6.575,24
0.02731,NA,0,6.421,21.6
0.02729,0,,7.185,34.7
`

func sequentialFrame(t *testing.T, n int, classes int) *Frame {
	t.Helper()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = []float64{float64(i), float64(i % classes)}
	}
	f, err := New([]string{"ID", "CHAS"}, rows)
	require.NoError(t, err)
	return f
}

func ids(f *Frame) []float64 {
	col, _ := f.Column("ID")
	return col
}

func TestReadCSVMissingTokens(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"CRIM", "ZN", "CHAS", "RM", "MDEV"}, f.Columns)
	require.Equal(t, 3, f.Len())
	assert.True(t, math.IsNaN(f.Rows[1][1]))
	assert.True(t, math.IsNaN(f.Rows[2][2]))
	assert.Equal(t, 34.7, f.Rows[2][4])
}

func TestReadCSVRejectsNonNumeric(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("A,B\n1,abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column B")
}

func TestWriteCSVRoundTripKeepsMissing(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, f))
	assert.Contains(t, buf.String(), "0.02731,,0,6.421,21.6")

	again, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, f.Columns, again.Columns)
	assert.True(t, math.IsNaN(again.Rows[1][1]))
}

func TestColumnNameFixer(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	fixer := &ColumnNameFixer{}
	assert.Same(t, fixer, fixer.Fit(f))

	fixed := fixer.Transform(f)
	assert.True(t, fixed.Has("MEDV"))
	assert.False(t, fixed.Has("MDEV"))
	// input untouched
	assert.True(t, f.Has("MDEV"))

	// idempotent
	assert.Equal(t, fixed.Columns, fixer.Transform(fixed).Columns)
}

func TestColumnNameFixerPassThrough(t *testing.T) {
	f, err := New([]string{"RM", "MEDV", "MDEV"}, [][]float64{{6, 24, 1}})
	require.NoError(t, err)

	out := (&ColumnNameFixer{}).Transform(f)
	assert.Equal(t, f.Columns, out.Columns)
}

func TestLoadAppliesFixer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.True(t, f.Has("MEDV"))
}

func TestFrameSelectDropXY(t *testing.T) {
	f, err := New([]string{"A", "B", "Y"}, [][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	sel, err := f.Select([]string{"B", "A"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 1}, {5, 4}}, sel.Rows)

	_, err = f.Select([]string{"Z"})
	assert.True(t, errors.Is(err, ErrColumnNotFound))

	assert.Equal(t, []string{"A", "Y"}, f.Drop("B").Columns)

	x, y, err := f.XY([]string{"A", "B"}, "Y")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {4, 5}}, x)
	assert.Equal(t, []float64{3, 6}, y)
}

func TestNewRejectsRaggedRows(t *testing.T) {
	_, err := New([]string{"A", "B"}, [][]float64{{1}})
	assert.Error(t, err)
}

func TestSplitDeterministicAndDisjoint(t *testing.T) {
	f := sequentialFrame(t, 100, 2)

	train1, test1, err := Split(f, 0.2, 42)
	require.NoError(t, err)
	train2, test2, err := Split(f, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, 80, train1.Len())
	assert.Equal(t, 20, test1.Len())
	assert.Equal(t, ids(train1), ids(train2))
	assert.Equal(t, ids(test1), ids(test2))

	all := append(ids(train1), ids(test1)...)
	sort.Float64s(all)
	for i, v := range all {
		assert.Equal(t, float64(i), v)
	}

	_, test3, err := Split(f, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, ids(test1), ids(test3))
}

func TestSplitRejectsBadSizes(t *testing.T) {
	f := sequentialFrame(t, 3, 1)
	_, _, err := Split(f, 0, 1)
	assert.Error(t, err)
	_, _, err = Split(f, 0.99, 1)
	assert.Error(t, err)
}

func TestStratifiedSplitKeepsProportions(t *testing.T) {
	// 90 rows of class 0, 10 of class 1
	rows := make([][]float64, 100)
	for i := range rows {
		class := 0.0
		if i%10 == 0 {
			class = 1
		}
		rows[i] = []float64{float64(i), class}
	}
	f, err := New([]string{"ID", "CHAS"}, rows)
	require.NoError(t, err)

	train, test, err := StratifiedSplit(f, "CHAS", 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, test.Len())

	chas, _ := test.Column("CHAS")
	ones := 0
	for _, v := range chas {
		if v == 1 {
			ones++
		}
	}
	assert.Equal(t, 2, ones)

	again, _, err := StratifiedSplit(f, "CHAS", 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, ids(train), ids(again))
}

func TestStratifiedSplitRejectsMissing(t *testing.T) {
	f, err := New([]string{"ID", "CHAS"}, [][]float64{{1, 0}, {2, math.NaN()}, {3, 1}})
	require.NoError(t, err)

	_, _, err = StratifiedSplit(f, "CHAS", 0.5, 1)
	assert.Error(t, err)
}

func TestPrepareFillsStratifyColumn(t *testing.T) {
	rows := make([][]float64, 20)
	for i := range rows {
		chas := 0.0
		if i%5 == 0 {
			chas = math.NaN()
		}
		rows[i] = []float64{float64(i), chas}
	}
	f, err := New([]string{"ID", "CHAS"}, rows)
	require.NoError(t, err)

	train, backtest, err := Prepare(f, PrepareOptions{BacktestSize: 0.25, Seed: 42, StratifyColumn: "CHAS"})
	require.NoError(t, err)
	assert.Equal(t, 15, train.Len())
	assert.Equal(t, 5, backtest.Len())

	chas, _ := train.Column("CHAS")
	for _, v := range chas {
		assert.False(t, math.IsNaN(v))
	}
}

func TestLoadLowercaseHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BostonHousing.csv")
	data := "crim,zn,indus,chas,nox,rm,age,dis,rad,tax,ptratio,b,lstat,medv\n" +
		"0.00632,18,2.31,0,0.538,6.575,65.2,4.09,1,296,15.3,396.9,4.98,24\n" +
		"0.02731,0,7.07,1,0.469,6.421,78.9,4.9671,2,242,17.8,396.9,9.14,21.6\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CRIM", "ZN", "INDUS", "CHAS", "NOX", "RM", "AGE",
		"DIS", "RAD", "TAX", "PTRATIO", "B", "LSTAT", "MEDV",
	}, f.Columns)

	train, backtest, err := Prepare(f, PrepareOptions{BacktestSize: 0.5, Seed: 1, StratifyColumn: "CHAS"})
	require.NoError(t, err)
	assert.Equal(t, 1, train.Len())
	assert.Equal(t, 1, backtest.Len())
}

func TestPrepareRejectsMissingStratifyColumn(t *testing.T) {
	f := sequentialFrame(t, 10, 2)

	_, _, err := Prepare(f, PrepareOptions{BacktestSize: 0.2, Seed: 1, StratifyColumn: "RAD"})
	assert.ErrorIs(t, err, ErrColumnNotFound)

	train, backtest, err := Prepare(f, PrepareOptions{BacktestSize: 0.2, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, train.Len()+backtest.Len())
}

func TestFetchFromFileSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "upstream.csv")
	require.NoError(t, os.WriteFile(src, []byte(sampleCSV), 0o644))

	dest := filepath.Join(dir, "data", "HousingData.csv")
	n, err := Fetch(context.Background(), datasource.NewFileSource(src), dest, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleCSV)), n)

	f, err := Load(dest)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
}

func TestFetchRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "upstream.csv")
	require.NoError(t, os.WriteFile(src, []byte("<html>not a csv</html>\nfoo,bar\n"), 0o644))

	dest := filepath.Join(dir, "HousingData.csv")
	_, err := Fetch(context.Background(), datasource.NewFileSource(src), dest, nil)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}
