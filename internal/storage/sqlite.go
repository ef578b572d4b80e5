package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"codeberg.org/marketwire/server/internal/articles"
)

// same layout as the Postgres articles table
type articleRecord struct {
	ID                 string `gorm:"primaryKey"`
	Title              string `gorm:"not null"`
	Content            string
	Source             string
	PublishedAt        time.Time `gorm:"index"`
	URL                string
	IsDuplicate        bool `gorm:"index"`
	DuplicateOfID      *string
	EntitiesJSON       string `gorm:"column:entities_json"`
	ImpactedStocksJSON string `gorm:"column:impacted_stocks_json"`
	Sector             string `gorm:"index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (articleRecord) TableName() string {
	return articlesTable
}

func (r *articleRecord) row() articles.Row {
	return articles.Row{
		ID:                 r.ID,
		Title:              r.Title,
		Content:            r.Content,
		Source:             r.Source,
		PublishedAt:        r.PublishedAt,
		URL:                r.URL,
		IsDuplicate:        r.IsDuplicate,
		DuplicateOfID:      r.DuplicateOfID,
		EntitiesJSON:       r.EntitiesJSON,
		ImpactedStocksJSON: r.ImpactedStocksJSON,
		Sector:             r.Sector,
	}
}

// record store on a single SQLite file, for local runs without Postgres
type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&articleRecord{}); err != nil {
		return fmt.Errorf("failed to migrate articles table: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, row *articles.Row) error {
	rec := articleRecord{
		ID:                 row.ID,
		Title:              row.Title,
		Content:            row.Content,
		Source:             row.Source,
		PublishedAt:        row.PublishedAt,
		URL:                row.URL,
		IsDuplicate:        row.IsDuplicate,
		DuplicateOfID:      row.DuplicateOfID,
		EntitiesJSON:       row.EntitiesJSON,
		ImpactedStocksJSON: row.ImpactedStocksJSON,
		Sector:             row.Sector,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "content", "source", "published_at", "url",
				"is_duplicate", "duplicate_of_id", "entities_json", "impacted_stocks_json",
				"sector", "updated_at",
			}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", row.ID, err)
	}

	return nil
}

func (s *SQLiteStore) GetMany(ctx context.Context, ids []string) ([]articles.Row, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []articleRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}

	return toRows(records), nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*articles.Stats, error) {
	var total, duplicates int64

	if err := s.db.WithContext(ctx).Model(&articleRecord{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to get article stats: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&articleRecord{}).Where("is_duplicate = ?", true).Count(&duplicates).Error; err != nil {
		return nil, fmt.Errorf("failed to get article stats: %w", err)
	}

	return &articles.Stats{
		TotalArticles:      int(total),
		DuplicatesDetected: int(duplicates),
		UniqueArticles:     int(total - duplicates),
	}, nil
}

func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]articles.Row, int, error) {
	// a fresh chain per statement; gorm chains are not reusable after Count
	filtered := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&articleRecord{})

		if opts.Sector != "" {
			tx = tx.Where("sector = ?", opts.Sector)
		}

		if opts.UniqueOnly {
			tx = tx.Where("is_duplicate = ?", false)
		}

		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	tx := filtered().Order("published_at DESC").Order("id ASC")

	if opts.Offset > 0 {
		tx = tx.Offset(opts.Offset)
	}

	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}

	var records []articleRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}

	return toRows(records), int(total), nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}
}

func toRows(records []articleRecord) []articles.Row {
	rows := make([]articles.Row, 0, len(records))
	for i := range records {
		rows = append(rows, records[i].row())
	}

	return rows
}
