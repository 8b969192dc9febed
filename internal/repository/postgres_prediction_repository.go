package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/housing-predictor/internal/database"
	"github.com/yourusername/housing-predictor/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) *PostgresPredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

var (
	selectColumns = "id, prediction_time, prediction_value, overridden, " + strings.Join(models.FeatureColumns, ", ")
	insertQuery   = fmt.Sprintf(
		"INSERT INTO predictions (prediction_value, overridden, %s) VALUES (%s) RETURNING id, prediction_time",
		strings.Join(models.FeatureColumns, ", "),
		placeholders(2+len(models.FeatureColumns)),
	)
)

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

type pgWriter struct {
	tx pgx.Tx
}

// Append inserts a record; the database assigns id and prediction_time.
func (w *pgWriter) Append(ctx context.Context, record *models.PredictionRecord) (int64, error) {
	args := append([]any{record.PredictionValue, record.Overridden}, record.FeatureArgs()...)
	if err := w.tx.QueryRow(ctx, insertQuery, args...).Scan(&record.ID, &record.PredictionTime); err != nil {
		return 0, fmt.Errorf("failed to insert prediction: %w", err)
	}
	return record.ID, nil
}

// WithTx runs fn inside a database transaction.
func (r *PostgresPredictionRepository) WithTx(ctx context.Context, fn func(PredictionWriter) error) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&pgWriter{tx: tx})
	})
}

// Count returns the number of stored predictions
func (r *PostgresPredictionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM predictions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}

// Recent retrieves the latest predictions, newest first
func (r *PostgresPredictionRepository) Recent(ctx context.Context, limit int) ([]*models.PredictionRecord, error) {
	query := "SELECT " + selectColumns + " FROM predictions ORDER BY id DESC LIMIT $1"

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var records []*models.PredictionRecord
	for rows.Next() {
		rec := &models.PredictionRecord{}
		err := rows.Scan(
			&rec.ID, &rec.PredictionTime, &rec.PredictionValue, &rec.Overridden,
			&rec.CRIM, &rec.ZN, &rec.INDUS, &rec.CHAS, &rec.NOX, &rec.RM, &rec.AGE,
			&rec.DIS, &rec.RAD, &rec.TAX, &rec.PTRATIO, &rec.B, &rec.LSTAT,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}
	return records, nil
}

// Ping verifies database connectivity
func (r *PostgresPredictionRepository) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Close releases the connection pool
func (r *PostgresPredictionRepository) Close() error {
	r.db.Close()
	return nil
}
