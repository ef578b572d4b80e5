package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/feeds"
	"codeberg.org/marketwire/server/internal/pipeline"
)

type fakePoller struct {
	inputs []articles.Input
	report *feeds.Report
}

func (f *fakePoller) Poll(context.Context) ([]articles.Input, *feeds.Report) {
	return f.inputs, f.report
}

type fakeBatch struct {
	got []articles.Input
}

func (f *fakeBatch) IngestBatch(_ context.Context, inputs []articles.Input) *pipeline.BatchResult {
	f.got = inputs

	return &pipeline.BatchResult{
		Ingested:   1,
		Duplicates: 1,
		Failed:     1,
		Items: []pipeline.ItemResult{
			{Index: 0, Title: inputs[0].Title},
			{Index: 1, Title: inputs[1].Title},
			{Index: 2, Title: inputs[2].Title, Err: errors.New("store unavailable")},
		},
	}
}

func TestPollHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	poller := &fakePoller{
		inputs: []articles.Input{
			{Title: "HDFC Bank raises lending rates"},
			{Title: "HDFC Bank hikes MCLR"},
			{Title: "Sensex closes higher"},
		},
		report: &feeds.Report{
			Feeds: 2,
			Items: 3,
			Errors: []feeds.FeedError{
				{URL: "https://broken.example/rss", Err: errors.New("status 502")},
			},
		},
	}
	batch := &fakeBatch{}

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), poller, batch)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, batch.got, 3)

	var resp PollResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 1, resp.Ingested)
	assert.Equal(t, 1, resp.Duplicates)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, 2, resp.Feeds)
	assert.Equal(t, []FeedError{{URL: "https://broken.example/rss", Error: "status 502"}}, resp.FeedErrors)
	assert.Equal(t, []Failure{{Title: "Sensex closes higher", Error: "store unavailable"}}, resp.Failures)
}
