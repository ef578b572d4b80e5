package main

import (
	"context"
	"fmt"

	"codeberg.org/marketwire/server/internal/archive"
	"codeberg.org/marketwire/server/internal/backend"
	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/dedup"
	"codeberg.org/marketwire/server/internal/events"
	"codeberg.org/marketwire/server/internal/extraction"
	"codeberg.org/marketwire/server/internal/llm"
	"codeberg.org/marketwire/server/internal/logger"
	"codeberg.org/marketwire/server/internal/pipeline"
)

// an orchestrator plus the connections it owns
type ingestPipeline struct {
	*pipeline.Orchestrator
	stores    *backend.Backend
	locker    *pipeline.RedisLocker
	publisher *events.KafkaPublisher
}

func (p *ingestPipeline) Close() {
	if p.publisher != nil {
		p.publisher.Close() //nolint:errcheck,gosec // best-effort cleanup on exit
	}

	if p.locker != nil {
		p.locker.Close() //nolint:errcheck,gosec // best-effort cleanup on exit
	}

	p.stores.Close()
}

// connects to the stores and wires dedup, extraction and persistence
func newIngestPipeline(ctx context.Context, cfg *config.Config) (*ingestPipeline, error) {
	llmClient, err := llm.NewLLM(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	dimension, err := llm.EmbeddingDimension(llm.Provider(cfg.EmbedderProvider), cfg.EmbedderModel)
	if err != nil {
		return nil, err
	}

	extractionStage, err := extraction.NewStage(llmClient, extraction.Config{
		Strategy: extraction.Strategy(cfg.ExtractionStrategy),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction stage: %w", err)
	}

	stores, err := backend.Open(ctx, cfg.DatabaseURL, dimension)
	if err != nil {
		return nil, err
	}

	p := &ingestPipeline{stores: stores}

	// share the server's lock so a running API and this process never interleave
	var locker pipeline.Locker
	if cfg.RedisURL != "" {
		p.locker, err = pipeline.NewRedisLockerFromURL(cfg.RedisURL)
		if err != nil {
			stores.Close()
			return nil, err
		}

		locker = p.locker
	}

	dedupStage := dedup.NewStage(llmClient, stores.Index, dedup.Config{Threshold: cfg.DedupThreshold})
	p.Orchestrator = pipeline.New(dedupStage, extractionStage, stores.Store, locker)

	if len(cfg.KafkaBrokers) > 0 {
		p.publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaProcessedTopic)
		if err != nil {
			p.Close()
			return nil, err
		}

		p.WithPublisher(p.publisher)
	}

	if cfg.ArchiveBucket != "" {
		articleArchive, err := archive.NewS3Archive(ctx, archive.Config{
			Bucket:       cfg.ArchiveBucket,
			Prefix:       cfg.ArchivePrefix,
			Region:       cfg.ArchiveRegion,
			Endpoint:     cfg.ArchiveEndpoint,
			UsePathStyle: cfg.ArchivePathStyle,
		})
		if err != nil {
			p.Close()
			return nil, err
		}

		p.WithPublisher(articleArchive)
	}

	logger.Info("pipeline ready",
		"backend", stores.Kind,
		"extraction_strategy", extractionStage.Strategy(),
		"redis_lock", p.locker != nil,
		"kafka", p.publisher != nil,
		"archive_bucket", cfg.ArchiveBucket,
	)

	return p, nil
}

// logs a batch outcome; fails only when nothing in a non-empty batch could be processed
func summarize(result *pipeline.BatchResult, total int) error {
	for _, item := range result.Items {
		if item.Err != nil {
			logger.Warn("article failed", "index", item.Index, "title", item.Title, "error", item.Err)
		}
	}

	logger.Info("ingestion finished",
		"total", total,
		"ingested", result.Ingested,
		"duplicates", result.Duplicates,
		"failed", result.Failed,
		"duration", result.Duration.String(),
	)

	if total > 0 && result.Failed == total {
		return fmt.Errorf("every article failed: %w", result.Err())
	}

	return nil
}
