package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// MaxListLimit caps how many runs a single query returns.
const MaxListLimit = 500

// SQLiteAdapter implements ports.RunRepository using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// FetchRunModel is the GORM model for fetch sequence records.
type FetchRunModel struct {
	ID         string `gorm:"primaryKey"`
	Trigger    string `gorm:"index"`
	StartedAt  time.Time
	FinishedAt time.Time `gorm:"index"`
	Attempts   int
	Succeeded  int
	Outcome    string `gorm:"index"`
	Error      string
}

// TableName keeps the table name stable if the model is renamed.
func (FetchRunModel) TableName() string {
	return "fetch_runs"
}

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("failed to install tracing plugin: %w", err)
	}

	if err := db.AutoMigrate(&FetchRunModel{}); err != nil {
		return nil, err
	}

	return &SQLiteAdapter{db: db}, nil
}

// SaveRunsBatch saves multiple runs in a single transaction.
// A run saved twice keeps its latest values.
func (a *SQLiteAdapter) SaveRunsBatch(ctx context.Context, runs []domain.FetchRun) error {
	if len(runs) == 0 {
		return nil
	}

	models := make([]FetchRunModel, len(runs))
	for i, r := range runs {
		models[i] = toModel(r)
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			UpdateAll: true,
		}).CreateInBatches(models, 100).Error
	})
}

// ListRuns returns the most recently finished runs first.
func (a *SQLiteAdapter) ListRuns(ctx context.Context, limit int) ([]domain.FetchRun, error) {
	if limit < 1 || limit > MaxListLimit {
		return nil, domain.ErrInvalidLimit
	}

	var models []FetchRunModel
	if err := a.db.WithContext(ctx).
		Order("finished_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}

	runs := make([]domain.FetchRun, len(models))
	for i, m := range models {
		runs[i] = toDomain(m)
	}
	return runs, nil
}

// Close releases the underlying connection pool.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var _ ports.RunRepository = (*SQLiteAdapter)(nil)
