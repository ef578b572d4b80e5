package pipeline

import (
	"context"
	"time"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/dedup"
)

// novelty check and indexing, see dedup.Stage
type Deduplicator interface {
	Classify(ctx context.Context, article *articles.Article) (dedup.Decision, error)
	Commit(ctx context.Context, article *articles.Article) error
}

// never fails, see extraction.Stage
type Extractor interface {
	Extract(ctx context.Context, article *articles.Article) *articles.Article
}

// serializes pipeline runs; the returned func releases the lock
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// receives every persisted article; failures are logged and never fail the run
type Publisher interface {
	Publish(ctx context.Context, article *articles.Article) error
}

// outcome of one article in a batch
type ItemResult struct {
	Index   int
	Title   string
	Article *articles.Article
	Err     error
}

type BatchResult struct {
	Ingested   int
	Duplicates int
	Failed     int
	Items      []ItemResult
	Duration   time.Duration
}
