package vectorindex

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

type memoryEntry struct {
	vector []float32
	meta   Metadata
	seq    int
}

// brute-force in-process index, used for development and tests
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	nextSeq int
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]*memoryEntry)}
}

func (m *MemoryIndex) Upsert(_ context.Context, id string, vector []float32, meta Metadata) error {
	if len(vector) == 0 {
		return fmt.Errorf("vector index upsert: empty vector for %s", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := slices.Clone(vector)

	if existing, ok := m.entries[id]; ok {
		existing.vector = stored
		existing.meta = meta
		return nil
	}

	m.entries[id] = &memoryEntry{vector: stored, meta: meta, seq: m.nextSeq}
	m.nextSeq++

	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float32, k int, filter *Filter) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("vector index query: k must be positive, got %d", k)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		match Match
		seq   int
	}

	candidates := make([]scored, 0, len(m.entries))

	for id, e := range m.entries {
		if filter != nil && filter.Sector != "" && e.meta.Sector != filter.Sector {
			continue
		}

		if len(e.vector) != len(vector) {
			return nil, fmt.Errorf("vector index query: dimension mismatch (%d != %d)", len(e.vector), len(vector))
		}

		candidates = append(candidates, scored{
			match: Match{ID: id, Distance: l2(e.vector, vector), Metadata: e.meta},
			seq:   e.seq,
		})
	}

	// ties resolve to the earliest insert
	slices.SortFunc(candidates, func(a, b scored) int {
		if a.match.Distance != b.match.Distance {
			if a.match.Distance < b.match.Distance {
				return -1
			}

			return 1
		}

		return a.seq - b.seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	matches := make([]Match, k)
	for i := range k {
		matches[i] = candidates[i].match
	}

	return matches, nil
}

func (m *MemoryIndex) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries), nil
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum)
}
