// Package query answers free-text searches over the article corpus: it expands the
// query, retrieves nearest articles with an optional sector filter, and joins them
// against the record store in relevance order.
package query

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/logger"
	"codeberg.org/marketwire/server/internal/storage"
	"codeberg.org/marketwire/server/internal/vectorindex"
)

type Agent struct {
	expander *expander
	embedder Embedder
	index    vectorindex.Index
	store    storage.RecordStore
	topK     int
}

func NewAgent(completer Completer, embedder Embedder, index vectorindex.Index, store storage.RecordStore, cfg Config) (*Agent, error) {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}

	heuristics := cfg.Heuristics
	if heuristics == nil {
		table, err := DefaultHeuristics()
		if err != nil {
			return nil, err
		}

		heuristics = table
	}

	return &Agent{
		expander: &expander{
			completer:  completer,
			cache:      cfg.Cache,
			heuristics: heuristics,
		},
		embedder: embedder,
		index:    index,
		store:    store,
		topK:     cfg.TopK,
	}, nil
}

func (a *Agent) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	log := logger.FromContext(ctx)

	exp := a.expander.expand(ctx, query)
	expanded := expandedContext(query, exp.Terms)

	result := &Result{
		Query:           query,
		ExpandedContext: expanded,
		Results:         []Hit{},
	}

	if filterable(exp.Sector) {
		result.TargetSector = exp.Sector
	}

	text := searchText(expanded)

	vector, err := a.embedder.GenerateQueryEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	matches, fellBack, err := a.retrieve(ctx, vector, result.TargetSector)
	if err != nil {
		return nil, err
	}

	result.UsedFallback = fellBack

	hits, err := a.join(ctx, matches)
	if err != nil {
		return nil, err
	}

	result.Results = hits

	log.Debug("search completed",
		"query", query,
		"expansion", string(exp.Source),
		"sector", result.TargetSector,
		"fallback", fellBack,
		"matches", len(matches),
		"results", len(hits),
	)

	return result, nil
}

// filtered lookup first when a sector is known; on error or zero hits exactly one
// unfiltered retry, whose error is returned as is
func (a *Agent) retrieve(ctx context.Context, vector []float32, sector string) ([]vectorindex.Match, bool, error) {
	if sector == "" {
		matches, err := a.index.Query(ctx, vector, a.topK, nil)
		if err != nil {
			return nil, false, fmt.Errorf("vector index search failed: %w", err)
		}

		return matches, false, nil
	}

	matches, err := a.index.Query(ctx, vector, a.topK, &vectorindex.Filter{Sector: sector})
	if err == nil && len(matches) > 0 {
		return matches, false, nil
	}

	if err != nil {
		logger.FromContext(ctx).Warn("filtered search failed, retrying unfiltered", "sector", sector, "error", err)
	}

	matches, err = a.index.Query(ctx, vector, a.topK, nil)
	if err != nil {
		return nil, true, fmt.Errorf("vector index search failed: %w", err)
	}

	return matches, true, nil
}

// fetches rows in one call and restores index rank; ids missing from the store are
// dropped
func (a *Agent) join(ctx context.Context, matches []vectorindex.Match) ([]Hit, error) {
	if len(matches) == 0 {
		return []Hit{}, nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}

	rows, err := a.store.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}

	byID := make(map[string]*articles.Row, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	hits := make([]Hit, 0, len(matches))

	for _, m := range matches {
		row, ok := byID[m.ID]
		if !ok {
			continue
		}

		article, err := articles.FromRow(row)
		if err != nil {
			logger.FromContext(ctx).Warn("skipping undecodable article", "article_id", m.ID, "error", err)
			continue
		}

		hits = append(hits, Hit{Article: *article, Distance: m.Distance})
	}

	return hits, nil
}

func filterable(sector string) bool {
	return sector != "" && !strings.EqualFold(sector, articles.DefaultSector)
}
