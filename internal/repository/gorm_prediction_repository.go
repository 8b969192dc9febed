package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yourusername/housing-predictor/internal/models"
)

// GormPredictionRepository implements PredictionRepository on gorm. It is
// used with SQLite for local runs and tests.
type GormPredictionRepository struct {
	db *gorm.DB
}

// OpenSQLite opens the SQLite file at path with a single connection, so
// writers are serialized, and migrates the predictions table.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.PredictionRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate predictions table: %w", err)
	}
	return db, nil
}

// NewGormPredictionRepository creates a repository over an open gorm handle.
func NewGormPredictionRepository(db *gorm.DB) *GormPredictionRepository {
	return &GormPredictionRepository{db: db}
}

type gormWriter struct {
	tx *gorm.DB
}

func (w *gormWriter) Append(ctx context.Context, record *models.PredictionRecord) (int64, error) {
	record.ID = 0
	record.PredictionTime = time.Now().UTC()
	if err := w.tx.WithContext(ctx).Create(record).Error; err != nil {
		return 0, fmt.Errorf("failed to insert prediction: %w", err)
	}
	return record.ID, nil
}

// WithTx runs fn inside a gorm transaction.
func (r *GormPredictionRepository) WithTx(ctx context.Context, fn func(PredictionWriter) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormWriter{tx: tx})
	})
}

func (r *GormPredictionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.PredictionRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}

func (r *GormPredictionRepository) Recent(ctx context.Context, limit int) ([]*models.PredictionRecord, error) {
	var records []*models.PredictionRecord
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	return records, nil
}

func (r *GormPredictionRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormPredictionRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
