package storage

import (
	"context"

	"codeberg.org/marketwire/server/internal/articles"
)

// relational store of processed articles
type RecordStore interface {
	Upsert(ctx context.Context, row *articles.Row) error
	// rows come back in no particular order; unknown ids are skipped
	GetMany(ctx context.Context, ids []string) ([]articles.Row, error)
	Stats(ctx context.Context) (*articles.Stats, error)
	// newest first; total counts every row matching the filter
	List(ctx context.Context, opts ListOptions) (rows []articles.Row, total int, err error)
}

// paging and filtering for List
type ListOptions struct {
	Limit  int
	Offset int
	Sector string
	// when true only non-duplicate rows are returned
	UniqueOnly bool
}

// a RecordStore that owns its connection
type Database interface {
	RecordStore
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}
