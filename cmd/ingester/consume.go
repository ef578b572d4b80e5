package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/events"
	"codeberg.org/marketwire/server/internal/logger"
	"codeberg.org/marketwire/server/internal/pipeline"
)

type singleIngester interface {
	Ingest(ctx context.Context, in articles.Input) (*articles.Article, error)
}

// runs raw articles from the kafka topic through the pipeline until interrupted
func ConsumeTopic(ctx context.Context, cfg *config.Config) error {
	if len(cfg.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS environment variable is required for consume")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	p, err := newIngestPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	consumer, err := events.NewConsumer(events.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaRawTopic,
		GroupID: cfg.KafkaGroupID,
		Handler: ingestHandler(p),
	})
	if err != nil {
		return err
	}
	defer consumer.Close() //nolint:errcheck // best-effort cleanup on exit

	return consumer.Run(ctx)
}

// invalid or malformed articles are marked so they are not redelivered;
// pipeline failures stay unmarked and come back after a restart or rebalance
func ingestHandler(ingester singleIngester) events.HandlerFunc {
	return func(ctx context.Context, payload []byte) (bool, error) {
		in, ok := events.DecodeInput(payload)
		if !ok {
			return true, nil
		}

		article, err := ingester.Ingest(ctx, in)
		if err != nil {
			return errors.Is(err, pipeline.ErrInvalidInput), err
		}

		logger.Debug("consumed article", "article_id", article.ID, "duplicate", article.IsDuplicate)

		return true, nil
	}
}
