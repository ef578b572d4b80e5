package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/marketwire/server/internal/pipeline"
)

func TestReadInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"title": "RBI keeps repo rate unchanged at 6.5%", "source": "Mint", "published_at": "2024-02-08T10:00:00Z", "url": "https://example.com/rbi"},
		{"title": "Infosys wins $2bn deal", "content": "Infosys signed a five-year contract."}
	]`), 0o600))

	inputs, err := readInputs(path)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, "RBI keeps repo rate unchanged at 6.5%", inputs[0].Title)
	assert.Equal(t, time.Date(2024, 2, 8, 10, 0, 0, 0, time.UTC), inputs[0].PublishedAt)
	assert.Equal(t, "Infosys signed a five-year contract.", inputs[1].Content)
}

func TestReadInputs_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "not an array"}`), 0o600))

	_, err := readInputs(path)
	assert.Error(t, err)

	_, err = readInputs(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	partial := &pipeline.BatchResult{
		Ingested: 1,
		Failed:   1,
		Items: []pipeline.ItemResult{
			{Index: 0, Title: "ok"},
			{Index: 1, Title: "broken", Err: errors.New("store unavailable")},
		},
	}
	assert.NoError(t, summarize(partial, 2))

	total := &pipeline.BatchResult{
		Failed: 1,
		Items:  []pipeline.ItemResult{{Index: 0, Title: "broken", Err: errors.New("store unavailable")}},
	}
	err := summarize(total, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")

	assert.NoError(t, summarize(&pipeline.BatchResult{}, 0))
}
