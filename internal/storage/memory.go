package storage

import (
	"context"
	"sort"
	"sync"

	"codeberg.org/marketwire/server/internal/articles"
)

// in-process record store for development and tests
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]articles.Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]articles.Row)}
}

func (m *MemoryStore) Upsert(_ context.Context, row *articles.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *row
	if row.DuplicateOfID != nil {
		ref := *row.DuplicateOfID
		stored.DuplicateOfID = &ref
	}

	m.rows[row.ID] = stored

	return nil
}

func (m *MemoryStore) GetMany(_ context.Context, ids []string) ([]articles.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	result := make([]articles.Row, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}

		seen[id] = true

		if row, ok := m.rows[id]; ok {
			result = append(result, row)
		}
	}

	return result, nil
}

func (m *MemoryStore) Stats(_ context.Context) (*articles.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &articles.Stats{TotalArticles: len(m.rows)}

	for _, row := range m.rows {
		if row.IsDuplicate {
			stats.DuplicatesDetected++
		}
	}

	stats.UniqueArticles = stats.TotalArticles - stats.DuplicatesDetected

	return stats, nil
}

func (m *MemoryStore) List(_ context.Context, opts ListOptions) ([]articles.Row, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]articles.Row, 0, len(m.rows))

	for _, row := range m.rows {
		if opts.Sector != "" && row.Sector != opts.Sector {
			continue
		}

		if opts.UniqueOnly && row.IsDuplicate {
			continue
		}

		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PublishedAt.Equal(matched[j].PublishedAt) {
			return matched[i].PublishedAt.After(matched[j].PublishedAt)
		}

		return matched[i].ID < matched[j].ID
	})

	total := len(matched)

	if opts.Offset >= total {
		return []articles.Row{}, total, nil
	}

	matched = matched[max(opts.Offset, 0):]

	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	return matched, total, nil
}
