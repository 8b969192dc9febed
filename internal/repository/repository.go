// Package repository provides the append-only prediction audit store.
package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/housing-predictor/internal/config"
	"github.com/yourusername/housing-predictor/internal/database"
)

// NewPredictionRepository opens the audit store selected by database.driver.
func NewPredictionRepository(ctx context.Context, cfg *config.Config) (PredictionRepository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresPredictionRepository(db), nil
	case "sqlite":
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
		db, err := OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewGormPredictionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
