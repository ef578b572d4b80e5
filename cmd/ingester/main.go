package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ingester <command> [options]")
		fmt.Println("Commands:")
		fmt.Println("  poll      - fetch the configured RSS feeds once and ingest every item")
		fmt.Println("  file      - ingest a JSON array of articles")
		fmt.Println("  consume   - ingest raw articles from the kafka topic until interrupted")
		fmt.Println("\nOptions:")
		fmt.Println("  --limit <n>    - (poll) max items per feed")
		fmt.Println("  --full-text    - (poll) fetch full article text with readability")
		fmt.Println("  --path <path>  - (file) path to the JSON file")
		os.Exit(1)
	}

	command := os.Args[1]

	// load environment variables
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	// route to appropriate command
	switch command {
	case "poll":
		flags := config.ParsePollFlags(cfg)
		if err := IngestFeeds(ctx, cfg, flags); err != nil {
			logger.Fatal("failed to ingest feeds", "error", err)
		}

	case "file":
		flags := config.ParseFileFlags()
		if err := IngestFile(ctx, cfg, flags); err != nil {
			logger.Fatal("failed to ingest file", "error", err)
		}

	case "consume":
		if err := ConsumeTopic(ctx, cfg); err != nil {
			logger.Fatal("failed to consume articles", "error", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}
