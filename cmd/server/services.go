package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"codeberg.org/marketwire/server/internal/archive"
	"codeberg.org/marketwire/server/internal/backend"
	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/dedup"
	"codeberg.org/marketwire/server/internal/events"
	"codeberg.org/marketwire/server/internal/extraction"
	"codeberg.org/marketwire/server/internal/feeds"
	"codeberg.org/marketwire/server/internal/llm"
	"codeberg.org/marketwire/server/internal/logger"
	"codeberg.org/marketwire/server/internal/pipeline"
	"codeberg.org/marketwire/server/internal/query"
)

// creates the pipeline, the query agent and everything they call
func InitializeServices(ctx context.Context, cfg *config.Config, stores *backend.Backend, redisClient *redis.Client) (*Services, error) {
	llmClient, err := llm.NewLLM(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	index := stores.Index

	dedupStage := dedup.NewStage(llmClient, index, dedup.Config{Threshold: cfg.DedupThreshold})

	extractionStage, err := extraction.NewStage(llmClient, extraction.Config{
		Strategy: extraction.Strategy(cfg.ExtractionStrategy),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction stage: %w", err)
	}

	// without redis the orchestrator falls back to an in-process mutex
	var locker pipeline.Locker
	var cache query.ExpansionCache

	if redisClient != nil {
		locker = pipeline.NewRedisLocker(redisClient)
		cache = query.NewRedisCache(redisClient, 0)
	} else {
		cache = query.NewMemoryCache(0, 0)
	}

	orchestrator := pipeline.New(dedupStage, extractionStage, stores.Store, locker)

	var publisher *events.KafkaPublisher

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaProcessedTopic)
		if err != nil {
			return nil, err
		}

		orchestrator.WithPublisher(publisher)
	}

	var articleArchive *archive.S3Archive

	if cfg.ArchiveBucket != "" {
		articleArchive, err = archive.NewS3Archive(ctx, archive.Config{
			Bucket:       cfg.ArchiveBucket,
			Prefix:       cfg.ArchivePrefix,
			Region:       cfg.ArchiveRegion,
			Endpoint:     cfg.ArchiveEndpoint,
			UsePathStyle: cfg.ArchivePathStyle,
		})
		if err != nil {
			closePublisher(publisher)
			return nil, err
		}

		orchestrator.WithPublisher(articleArchive)
	}

	agent, err := query.NewAgent(llmClient, llmClient, index, stores.Store, query.Config{
		TopK:  cfg.SearchTopK,
		Cache: cache,
	})
	if err != nil {
		closePublisher(publisher)
		return nil, fmt.Errorf("failed to create query agent: %w", err)
	}

	poller := feeds.NewPoller(feeds.Config{
		URLs:      cfg.FeedURLs,
		ItemLimit: cfg.FeedItemLimit,
		FullText:  cfg.FeedFullText,
		Timeout:   cfg.FeedTimeout,
	})

	logger.Info("services initialized",
		"llm_provider", cfg.LLMProvider,
		"llm_model", llmClient.Model(),
		"embedder_provider", cfg.EmbedderProvider,
		"backend", stores.Kind,
		"dedup_threshold", dedupStage.Threshold(),
		"extraction_strategy", extractionStage.Strategy(),
		"feeds", len(cfg.FeedURLs),
		"redis", redisClient != nil,
		"kafka", publisher != nil,
		"archive_bucket", cfg.ArchiveBucket,
	)

	return &Services{
		LLM:        llmClient,
		Index:      index,
		Dedup:      dedupStage,
		Extraction: extractionStage,
		Pipeline:   orchestrator,
		Query:      agent,
		Feeds:      poller,
		Events:     publisher,
		Archive:    articleArchive,
	}, nil
}

func closePublisher(publisher *events.KafkaPublisher) {
	if publisher != nil {
		publisher.Close() //nolint:errcheck,gosec // best-effort cleanup
	}
}
