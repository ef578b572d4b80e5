package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/marketwire/server/internal/articles"
)

func newRow(t *testing.T, id string, duplicateOf string) *articles.Row {
	t.Helper()

	a := &articles.Article{
		ID:          id,
		Title:       "title " + id,
		PublishedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Sector:      "Banking",
		Entities:    []articles.Entity{{Name: "HDFC Bank", Type: articles.EntityCompany}},
		ImpactedStocks: []articles.ImpactedStock{
			{Symbol: "HDFCBANK", Confidence: 1.0, Type: articles.ImpactDirect, Sentiment: articles.SentimentNeutral},
		},
	}

	if duplicateOf != "" {
		a.IsDuplicate = true
		a.DuplicateOfID = duplicateOf
	}

	row, err := articles.ToRow(a)
	require.NoError(t, err)

	return row
}

func TestMemoryStore_UpsertAndGetMany(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, newRow(t, "a", "")))
	require.NoError(t, store.Upsert(ctx, newRow(t, "b", "a")))

	rows, err := store.GetMany(ctx, []string{"b", "missing", "a", "b"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[string]articles.Row{}
	for _, r := range rows {
		byID[r.ID] = r
	}

	require.NotNil(t, byID["b"].DuplicateOfID)
	assert.Equal(t, "a", *byID["b"].DuplicateOfID)
	assert.Nil(t, byID["a"].DuplicateOfID)

	rowA := byID["a"]
	decoded, err := articles.FromRow(&rowA)
	require.NoError(t, err)
	assert.Equal(t, "HDFCBANK", decoded.ImpactedStocks[0].Symbol)
}

func TestMemoryStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, newRow(t, "a", "")))

	updated := newRow(t, "a", "")
	updated.Sector = "IT"
	require.NoError(t, store.Upsert(ctx, updated))

	rows, err := store.GetMany(ctx, []string{"a"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "IT", rows[0].Sector)
}

func TestMemoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, newRow(t, "a", "")))
	require.NoError(t, store.Upsert(ctx, newRow(t, "b", "a")))
	require.NoError(t, store.Upsert(ctx, newRow(t, "c", "gone")))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &articles.Stats{TotalArticles: 3, DuplicatesDetected: 2, UniqueArticles: 1}, stats)
}

func TestBuildGetManyQuery(t *testing.T) {
	query, args, err := buildGetManyQuery([]string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, title, content, source, published_at, url, is_duplicate, duplicate_of_id, entities_json, impacted_stocks_json, sector FROM articles WHERE id IN ($1,$2)",
		query,
	)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		row := newRow(t, id, "")
		row.PublishedAt = base.Add(time.Duration(i) * time.Hour)
		if id == "c" {
			row.Sector = "IT"
		}
		require.NoError(t, store.Upsert(ctx, row))
	}
	require.NoError(t, store.Upsert(ctx, newRow(t, "e", "a")))

	rows, total, err := store.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "d", rows[0].ID)
	assert.Equal(t, "c", rows[1].ID)

	rows, total, err = store.List(ctx, ListOptions{Limit: 10, Offset: 1, Sector: "Banking", UniqueOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, "a", rows[1].ID)

	rows, total, err = store.List(ctx, ListOptions{Limit: 10, Offset: 50})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, rows)
}

func TestBuildListQuery(t *testing.T) {
	opts := ListOptions{Limit: 20, Offset: 40, Sector: "Banking", UniqueOnly: true}

	query, args, err := buildListQuery(opts, false)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, title, content, source, published_at, url, is_duplicate, duplicate_of_id, entities_json, impacted_stocks_json, sector FROM articles WHERE sector = $1 AND is_duplicate = $2 ORDER BY published_at DESC, id ASC LIMIT 20 OFFSET 40",
		query,
	)
	assert.Equal(t, []any{"Banking", false}, args)

	query, args, err = buildListQuery(ListOptions{}, true)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM articles", query)
	assert.Empty(t, args)
}
