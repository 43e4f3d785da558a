package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dcimring/pickleball-ratings/internal/models"

	"gorm.io/gorm"
)

// PostgresRepository handles all PostgreSQL operations
type PostgresRepository struct {
	db     *gorm.DB
	schema string
}

// NewPostgresRepository creates a new Postgres repository. Tables are
// qualified with schema unless it is empty.
func NewPostgresRepository(db *gorm.DB, schema string) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		schema: schema,
	}
}

func (r *PostgresRepository) table(name string) string {
	if r.schema == "" {
		return name
	}
	return r.schema + "." + name
}

// CurrentRankings fetches the current snapshot of one mode, best rank first
func (r *PostgresRepository) CurrentRankings(ctx context.Context, mode models.Mode) (models.Collection, error) {
	var rows models.Collection
	err := r.db.WithContext(ctx).
		Table(r.table(mode.TableName())).
		Where("is_current = ?", true).
		Order("rank_position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query %s rankings: %w", mode, err)
	}
	return rows, nil
}

// InsertFeatureRequest stores a validated suggestion
func (r *PostgresRepository) InsertFeatureRequest(ctx context.Context, req *models.FeatureRequest) error {
	return r.db.WithContext(ctx).Table(r.table(models.FeatureRequestTable)).Create(req).Error
}

// PublishRankings replaces the current snapshot of a mode: existing rows
// stop being current and entries are inserted as the new current rows,
// all in one transaction.
func (r *PostgresRepository) PublishRankings(ctx context.Context, mode models.Mode, entries models.Collection, batchSize int) error {
	validFrom := time.Now().UTC()
	for i := range entries {
		entries[i].ID = 0
		entries[i].IsCurrent = true
		entries[i].ValidFrom = validFrom
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Table(r.table(mode.TableName())).
			Where("is_current = ?", true).
			Update("is_current", false).Error
		if err != nil {
			return fmt.Errorf("retire current %s rows: %w", mode, err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Table(r.table(mode.TableName())).CreateInBatches(&entries, batchSize).Error; err != nil {
			return fmt.Errorf("insert %s rows: %w", mode, err)
		}
		return nil
	})
}

// Ping checks if database is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates the schema and the ranking and feature request tables
func (r *PostgresRepository) AutoMigrate() error {
	if r.schema != "" {
		if err := r.db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", r.schema)).Error; err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, mode := range models.Modes {
		if err := r.db.Table(r.table(mode.TableName())).AutoMigrate(&models.RankingEntry{}); err != nil {
			return fmt.Errorf("migrate %s: %w", mode.TableName(), err)
		}
	}
	if err := r.db.Table(r.table(models.FeatureRequestTable)).AutoMigrate(&models.FeatureRequest{}); err != nil {
		return fmt.Errorf("migrate %s: %w", models.FeatureRequestTable, err)
	}
	return nil
}
