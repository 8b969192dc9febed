package repository

import (
	"context"

	"github.com/yourusername/housing-predictor/internal/models"
)

// PredictionWriter appends audit records inside one transaction.
type PredictionWriter interface {
	// Append stores the record and fills in its ID and PredictionTime.
	Append(ctx context.Context, record *models.PredictionRecord) (int64, error)
}

// PredictionRepository defines the interface for prediction audit access.
// Records are append-only; there is no update or delete.
type PredictionRepository interface {
	// WithTx runs fn in a scoped transaction that is committed when fn
	// returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(PredictionWriter) error) error
	Count(ctx context.Context) (int64, error)
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*models.PredictionRecord, error)
	Ping(ctx context.Context) error
	Close() error
}
