package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/logger"
)

// ingests a JSON array of {title, content, source, published_at, url} objects
func IngestFile(ctx context.Context, cfg *config.Config, flags config.Flags) error {
	logger.Info("starting file ingestion", "path", flags.Path)

	inputs, err := readInputs(flags.Path)
	if err != nil {
		return err
	}

	logger.Info("loaded articles", "count", len(inputs))

	p, err := newIngestPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	return summarize(p.IngestBatch(ctx, inputs), len(inputs))
}

func readInputs(path string) ([]articles.Input, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator's flag
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var inputs []articles.Input
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return inputs, nil
}
