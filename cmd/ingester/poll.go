package main

import (
	"context"

	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/feeds"
	"codeberg.org/marketwire/server/internal/logger"
)

// polls every configured feed once and runs the items through the pipeline
func IngestFeeds(ctx context.Context, cfg *config.Config, flags config.Flags) error {
	logger.Info("starting feed ingestion", "feeds", len(cfg.FeedURLs), "limit", flags.Limit, "full_text", flags.FullText)

	p, err := newIngestPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	poller := feeds.NewPoller(feeds.Config{
		URLs:      cfg.FeedURLs,
		ItemLimit: flags.Limit,
		FullText:  flags.FullText,
		Timeout:   cfg.FeedTimeout,
	})

	inputs, report := poller.Poll(ctx)

	for _, fe := range report.Errors {
		logger.Warn("feed failed", "url", fe.URL, "error", fe.Err)
	}

	logger.Info("feeds polled", "feeds", report.Feeds, "items", report.Items)

	return summarize(p.IngestBatch(ctx, inputs), len(inputs))
}
