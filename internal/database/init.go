package database

import (
	"context"
	"fmt"

	"github.com/yourusername/housing-predictor/internal/config"
)

// predictionsSchema bootstraps the append-only audit table.
const predictionsSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	id               BIGSERIAL PRIMARY KEY,
	prediction_time  TIMESTAMPTZ NOT NULL DEFAULT now(),
	prediction_value DOUBLE PRECISION NOT NULL,
	overridden       BOOLEAN NOT NULL DEFAULT false,
	crim             DOUBLE PRECISION,
	zn               DOUBLE PRECISION,
	indus            DOUBLE PRECISION,
	chas             BIGINT,
	nox              DOUBLE PRECISION,
	rm               DOUBLE PRECISION,
	age              DOUBLE PRECISION,
	dis              DOUBLE PRECISION,
	rad              BIGINT,
	tax              DOUBLE PRECISION,
	ptratio          DOUBLE PRECISION,
	b                DOUBLE PRECISION,
	lstat            DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_predictions_prediction_time ON predictions (prediction_time);
`

// Initialize creates a database connection pool and makes sure the
// predictions table exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the predictions table when it is missing.
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.pool.Exec(ctx, predictionsSchema); err != nil {
		return fmt.Errorf("failed to create predictions table: %w", err)
	}
	return nil
}
