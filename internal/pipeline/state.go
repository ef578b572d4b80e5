package pipeline

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/logger"
)

// position of an article in the pipeline
type State int

const (
	Received State = iota
	DedupChecked
	Extracted
	Persisted
)

func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case DedupChecked:
		return "dedup_checked"
	case Extracted:
		return "extracted"
	case Persisted:
		return "persisted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrTerminalState    = errors.New("pipeline run already persisted")
	ErrExtractDuplicate = errors.New("extraction must not run on a duplicate article")
)

// one article moving through the pipeline
type run struct {
	state     State
	article   *articles.Article
	extracted bool
}

// advances r by exactly one state; every state has a defined outcome
func (o *Orchestrator) transition(ctx context.Context, r *run) error {
	switch r.state {
	case Received:
		decision, err := o.dedup.Classify(ctx, r.article)
		if err != nil {
			return fmt.Errorf("deduplication failed: %w", err)
		}

		r.article.IsDuplicate = decision.IsDuplicate
		r.article.DuplicateOfID = decision.DuplicateOfID

		if !decision.IsDuplicate {
			if err := o.dedup.Commit(ctx, r.article); err != nil {
				return fmt.Errorf("deduplication commit failed: %w", err)
			}
		}

		r.state = DedupChecked

	case DedupChecked:
		if !r.article.IsDuplicate {
			if err := o.extract(ctx, r); err != nil {
				return err
			}
		}

		r.state = Extracted

	case Extracted:
		row, err := articles.ToRow(r.article)
		if err != nil {
			return fmt.Errorf("failed to encode article: %w", err)
		}

		if err := o.store.Upsert(ctx, row); err != nil {
			return fmt.Errorf("persistence failed: %w", err)
		}

		r.state = Persisted

	case Persisted:
		return ErrTerminalState

	default:
		return fmt.Errorf("unknown pipeline state %s", r.state)
	}

	return nil
}

func (o *Orchestrator) extract(ctx context.Context, r *run) error {
	if r.article.IsDuplicate {
		return ErrExtractDuplicate
	}

	r.article = o.extractor.Extract(ctx, r.article)
	r.extracted = true

	// refresh index metadata with the extracted sector so filtered search can find it
	if r.article.Sector != articles.DefaultSector {
		if err := o.dedup.Commit(ctx, r.article); err != nil {
			logger.FromContext(ctx).Warn("failed to update index metadata",
				"article_id", r.article.ID,
				"sector", r.article.Sector,
				"error", err,
			)
		}
	}

	return nil
}
