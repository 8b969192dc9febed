package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/housing-predictor/internal/datasource"
)

// Fetch copies the dataset from src to dest. The destination only appears
// once the copy is complete.
func Fetch(ctx context.Context, src datasource.Source, dest string, logger *logrus.Logger) (int64, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, rc)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to download dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	// reject a body that is not a parsable dataset before replacing the old file
	if _, err := Load(tmp.Name()); err != nil {
		return 0, fmt.Errorf("downloaded dataset is invalid: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("failed to move dataset into place: %w", err)
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{"source": src.Name(), "path": dest, "bytes": n}).Info("Dataset downloaded")
	}
	return n, nil
}

// PrepareOptions controls the train/backtest split.
type PrepareOptions struct {
	BacktestSize   float64
	Seed           int64
	StratifyColumn string
}

// Prepare fills missing stratification values with 0 and splits the raw
// frame into training and backtest partitions. A configured stratify column
// must exist; an empty one means a plain seeded split.
func Prepare(raw *Frame, opts PrepareOptions) (train, backtest *Frame, err error) {
	if opts.StratifyColumn == "" {
		return Split(raw, opts.BacktestSize, opts.Seed)
	}
	if !raw.Has(opts.StratifyColumn) {
		return nil, nil, fmt.Errorf("%w: stratify column %s", ErrColumnNotFound, opts.StratifyColumn)
	}
	filled, err := raw.FillNaN(opts.StratifyColumn, 0)
	if err != nil {
		return nil, nil, err
	}
	return StratifiedSplit(filled, opts.StratifyColumn, opts.BacktestSize, opts.Seed)
}
