// Package extraction turns article text into a sector label, named entities and
// per-symbol market impact records.
package extraction

import (
	"context"
	"fmt"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/logger"
)

type Stage struct {
	strategy  Strategy
	extractor extractor
}

func NewStage(completer Completer, cfg Config) (*Stage, error) {
	if completer == nil {
		return nil, fmt.Errorf("extraction requires a completer")
	}

	switch cfg.Strategy {
	case StrategyLLM, "":
		return &Stage{strategy: StrategyLLM, extractor: &llmExtractor{completer: completer}}, nil

	case StrategyRule:
		tickers := cfg.Tickers
		if tickers == nil {
			table, err := DefaultTickerTable()
			if err != nil {
				return nil, err
			}

			tickers = table
		}

		recognizer := cfg.Recognizer
		if recognizer == nil {
			recognizer = Chain(tickers, NewProseRecognizer())
		}

		return &Stage{
			strategy: StrategyRule,
			extractor: &ruleExtractor{
				recognizer: recognizer,
				tickers:    tickers,
				completer:  completer,
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown extraction strategy: %q", cfg.Strategy)
	}
}

func (s *Stage) Strategy() Strategy {
	return s.strategy
}

// fills sector, entities and impacted stocks; on failure the article keeps the
// default sector and empty lists so persistence can continue
func (s *Stage) Extract(ctx context.Context, article *articles.Article) *articles.Article {
	result, err := s.extractor.extract(ctx, article)
	if err != nil {
		logger.FromContext(ctx).Warn("extraction failed, using defaults",
			"article_id", article.ID,
			"strategy", string(s.strategy),
			"error", err,
		)

		article.Sector = articles.DefaultSector
		article.Entities = []articles.Entity{}
		article.ImpactedStocks = []articles.ImpactedStock{}

		return article
	}

	article.Sector = result.Sector
	if article.Sector == "" {
		article.Sector = articles.DefaultSector
	}

	article.Entities = uniqueEntities(result.Entities)
	article.ImpactedStocks = Consolidate(result.ImpactedStocks)

	logger.FromContext(ctx).Debug("extracted article intelligence",
		"article_id", article.ID,
		"sector", article.Sector,
		"entities", len(article.Entities),
		"impacted_stocks", len(article.ImpactedStocks),
	)

	return article
}
