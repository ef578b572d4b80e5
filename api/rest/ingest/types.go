package ingest

import (
	"context"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/feeds"
	"codeberg.org/marketwire/server/internal/pipeline"
)

type Poller interface {
	Poll(ctx context.Context) ([]articles.Input, *feeds.Report)
}

type BatchIngester interface {
	IngestBatch(ctx context.Context, inputs []articles.Input) *pipeline.BatchResult
}

// PollResponse summarizes one poll of every configured feed
type PollResponse struct {
	Ingested   int         `json:"ingested"`
	Duplicates int         `json:"duplicates"`
	Failed     int         `json:"failed"`
	Feeds      int         `json:"feeds"`
	Items      int         `json:"items"`
	DurationMS int64       `json:"duration_ms"`
	FeedErrors []FeedError `json:"feed_errors,omitempty"`
	Failures   []Failure   `json:"failures,omitempty"`
}

type FeedError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// an article the pipeline could not process
type Failure struct {
	Title string `json:"title"`
	Error string `json:"error"`
}
