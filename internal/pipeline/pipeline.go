// Package pipeline runs each article through deduplication, extraction and
// persistence, in that order, one article at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/logger"
	"codeberg.org/marketwire/server/internal/storage"
)

var ErrInvalidInput = errors.New("article title is required")

type Orchestrator struct {
	dedup      Deduplicator
	extractor  Extractor
	store      storage.RecordStore
	locker     Locker
	publishers []Publisher
}

// locker may be nil, in which case runs are serialized in-process
func New(dedup Deduplicator, extractor Extractor, store storage.RecordStore, locker Locker) *Orchestrator {
	if locker == nil {
		locker = NewMutexLocker()
	}

	return &Orchestrator{
		dedup:     dedup,
		extractor: extractor,
		store:     store,
		locker:    locker,
	}
}

// adds p to the publishers notified after each persisted article
func (o *Orchestrator) WithPublisher(p Publisher) *Orchestrator {
	o.publishers = append(o.publishers, p)
	return o
}

// processes one article to the persisted state; nothing is retried here
func (o *Orchestrator) Ingest(ctx context.Context, in articles.Input) (*articles.Article, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrInvalidInput
	}

	article := articles.New(in)
	log := logger.FromContext(ctx).With("article_id", article.ID)

	unlock, err := o.locker.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	r := &run{state: Received, article: article}

	for r.state != Persisted {
		from := r.state

		if err := o.transition(ctx, r); err != nil {
			log.Error("pipeline run failed", "state", from.String(), "error", err)
			return nil, err
		}

		log.Debug("pipeline transition", "from", from.String(), "to", r.state.String())
	}

	log.Info("article ingested",
		"title", r.article.Title,
		"duplicate", r.article.IsDuplicate,
		"duplicate_of", r.article.DuplicateOfID,
		"sector", r.article.Sector,
		"impacted_stocks", len(r.article.ImpactedStocks),
	)

	for _, p := range o.publishers {
		if err := p.Publish(ctx, r.article); err != nil {
			log.Warn("failed to publish article", "publisher", fmt.Sprintf("%T", p), "error", err)
		}
	}

	return r.article, nil
}

// ingests inputs one by one; a failed article is recorded and the batch continues
func (o *Orchestrator) IngestBatch(ctx context.Context, inputs []articles.Input) *BatchResult {
	start := time.Now()
	result := &BatchResult{Items: make([]ItemResult, 0, len(inputs))}

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			result.Failed++
			result.Items = append(result.Items, ItemResult{Index: i, Title: in.Title, Err: err})

			continue
		}

		article, err := o.Ingest(ctx, in)

		item := ItemResult{Index: i, Title: in.Title, Article: article, Err: err}
		result.Items = append(result.Items, item)

		switch {
		case err != nil:
			result.Failed++
		case article.IsDuplicate:
			result.Duplicates++
		default:
			result.Ingested++
		}
	}

	result.Duration = time.Since(start)

	logger.FromContext(ctx).Info("batch ingested",
		"total", len(inputs),
		"ingested", result.Ingested,
		"duplicates", result.Duplicates,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result
}

// joins the errors of failed items, nil when every item succeeded
func (b *BatchResult) Err() error {
	var errs []error

	for _, item := range b.Items {
		if item.Err != nil {
			errs = append(errs, fmt.Errorf("article %d (%q): %w", item.Index, item.Title, item.Err))
		}
	}

	return errors.Join(errs...)
}
