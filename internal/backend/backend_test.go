package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/vectorindex"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "marketwire.db")

	b, err := Open(ctx, "sqlite://"+path, 1536)
	require.NoError(t, err)

	assert.Equal(t, KindSQLite, b.Kind)

	row, err := articles.ToRow(&articles.Article{
		ID:          "a",
		Title:       "RBI keeps repo rate unchanged",
		PublishedAt: time.Date(2024, 2, 8, 10, 0, 0, 0, time.UTC),
		Sector:      "Banking",
	})
	require.NoError(t, err)
	require.NoError(t, b.Store.Upsert(ctx, row))
	require.NoError(t, b.Index.Upsert(ctx, "a", []float32{1, 0}, vectorindex.Metadata{Sector: "Banking"}))

	b.Close()

	// everything survives a reopen
	b, err = Open(ctx, "sqlite://"+path, 1536)
	require.NoError(t, err)
	defer b.Close()

	stats, err := b.Store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalArticles)

	matches, err := b.Index.Query(ctx, []float32{1, 0}, 1, &vectorindex.Filter{Sector: "Banking"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

func TestOpen_EmptySQLitePath(t *testing.T) {
	_, err := Open(context.Background(), "sqlite://", 1536)
	assert.Error(t, err)
}
