package vectorindex

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// one row per indexed article
type embeddingRecord struct {
	ID        string    `gorm:"primaryKey"`
	Vector    []float32 `gorm:"serializer:json;not null"`
	Title     string
	Source    string
	Sector    string `gorm:"index"`
	UpdatedAt time.Time
}

func (embeddingRecord) TableName() string {
	return "article_embeddings"
}

// embeddings persisted in SQLite and scanned in full on every query;
// meant for single-node deployments with a modest corpus
type SQLiteIndex struct {
	db *gorm.DB
}

func NewSQLiteIndex(db *gorm.DB) *SQLiteIndex {
	return &SQLiteIndex{db: db}
}

func (s *SQLiteIndex) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&embeddingRecord{}); err != nil {
		return fmt.Errorf("failed to migrate embeddings table: %w", err)
	}

	return nil
}

func (s *SQLiteIndex) Upsert(ctx context.Context, id string, vector []float32, meta Metadata) error {
	if len(vector) == 0 {
		return fmt.Errorf("vector index upsert: empty vector for %s", id)
	}

	rec := embeddingRecord{
		ID:     id,
		Vector: vector,
		Title:  meta.Title,
		Source: meta.Source,
		Sector: meta.Sector,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector", "title", "source", "sector", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert embedding %s: %w", id, err)
	}

	return nil
}

func (s *SQLiteIndex) Query(ctx context.Context, vector []float32, k int, filter *Filter) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("vector index query: k must be positive, got %d", k)
	}

	tx := s.db.WithContext(ctx).Order("rowid")
	if filter != nil && filter.Sector != "" {
		tx = tx.Where("sector = ?", filter.Sector)
	}

	var records []embeddingRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}

	matches := make([]Match, 0, len(records))

	for _, rec := range records {
		if len(rec.Vector) != len(vector) {
			return nil, fmt.Errorf("vector index query: dimension mismatch (%d != %d)", len(rec.Vector), len(vector))
		}

		matches = append(matches, Match{
			ID:       rec.ID,
			Distance: l2(rec.Vector, vector),
			Metadata: Metadata{Title: rec.Title, Source: rec.Source, Sector: rec.Sector},
		})
	}

	// stable, so ties keep insertion order
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	if k < len(matches) {
		matches = matches[:k]
	}

	return matches, nil
}

func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&embeddingRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}

	return int(n), nil
}
