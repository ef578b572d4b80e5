// Package dedup decides whether an incoming article is a near-duplicate of one already
// indexed, and indexes the ones that are not.
package dedup

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/vectorindex"
)

const defaultCacheSize = 256

type Stage struct {
	embedder  Embedder
	index     vectorindex.Index
	threshold float64

	mu        sync.Mutex
	cache     map[string]cachedEmbedding
	order     []string
	cacheSize int
}

type cachedEmbedding struct {
	text   string
	vector []float32
}

func NewStage(embedder Embedder, index vectorindex.Index, cfg Config) *Stage {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}

	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}

	return &Stage{
		embedder:  embedder,
		index:     index,
		threshold: cfg.Threshold,
		cache:     make(map[string]cachedEmbedding),
		cacheSize: cfg.CacheSize,
	}
}

func (s *Stage) Threshold() float64 {
	return s.threshold
}

// compares the article against its nearest indexed neighbour; an earlier copy of the
// same article (same id) is not a neighbour
func (s *Stage) Classify(ctx context.Context, article *articles.Article) (Decision, error) {
	vector, err := s.embedding(ctx, article)
	if err != nil {
		return Decision{}, err
	}

	matches, err := s.index.Query(ctx, vector, 2, nil)
	if err != nil {
		return Decision{}, fmt.Errorf("dedup lookup failed: %w", err)
	}

	for _, m := range matches {
		if m.ID == article.ID {
			continue
		}

		decision := Decision{Distance: m.Distance, HasNeighbor: true}

		if m.Distance < s.threshold {
			decision.IsDuplicate = true
			decision.DuplicateOfID = m.ID
		}

		return decision, nil
	}

	return Decision{}, nil
}

// indexes a unique article with its title, source and sector
func (s *Stage) Commit(ctx context.Context, article *articles.Article) error {
	if article.IsDuplicate {
		return fmt.Errorf("%w: %s", ErrDuplicateCommit, article.ID)
	}

	vector, err := s.embedding(ctx, article)
	if err != nil {
		return err
	}

	meta := vectorindex.Metadata{
		Title:  article.Title,
		Source: article.Source,
		Sector: article.Sector,
	}

	if err := s.index.Upsert(ctx, article.ID, vector, meta); err != nil {
		return fmt.Errorf("dedup commit failed: %w", err)
	}

	return nil
}

// returns the cached embedding for the article or computes and caches a new one
func (s *Stage) embedding(ctx context.Context, article *articles.Article) ([]float32, error) {
	text := article.EmbeddingText()

	s.mu.Lock()
	cached, ok := s.cache[article.ID]
	s.mu.Unlock()

	if ok && cached.text == text {
		return cached.vector, nil
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed article %s: %w", article.ID, err)
	}

	s.remember(article.ID, text, vector)

	return vector, nil
}

func (s *Stage) remember(id, text string, vector []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cache[id]; !exists {
		s.order = append(s.order, id)
	}

	s.cache[id] = cachedEmbedding{text: text, vector: vector}

	for len(s.order) > s.cacheSize {
		delete(s.cache, s.order[0])
		s.order = s.order[1:]
	}
}
