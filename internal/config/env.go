package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort               = "8080"
	defaultLLMProvider        = "anthropic"
	defaultEmbedderProvider   = "openai"
	defaultDedupThreshold     = 0.3
	defaultExtractionStrategy = "llm"
	defaultSearchTopK         = 5
	defaultSearchRateLimit    = "60-M"
	defaultFeedItemLimit      = 5
	defaultFeedTimeout        = 30 * time.Second
	defaultKafkaRawTopic      = "marketwire.articles.raw"
	defaultKafkaEventsTopic   = "marketwire.articles.processed"
	defaultKafkaGroupID       = "marketwire-ingester"
	defaultArchivePrefix      = "articles"
)

// financial news feeds polled when FEED_URLS is not set
var defaultFeedURLs = []string{
	"https://www.moneycontrol.com/rss/latestnews.xml",
	"https://economictimes.indiatimes.com/rssfeedsdefault.cms",
	"https://www.livemint.com/rss/news",
	"https://www.business-standard.com/rss/latest-news",
	"https://www.financialexpress.com/feed/",
}

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		Environment:        envOr("ENVIRONMENT", "development"),
		Port:               envOr("PORT", defaultPort),
		CORSOrigins:        envList("CORS_ORIGINS", nil),
		AnthropicKey:       os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		MistralKey:         os.Getenv("MISTRAL_API_KEY"),
		CohereKey:          os.Getenv("COHERE_API_KEY"),
		LLMProvider:        strings.ToLower(envOr("LLM_PROVIDER", defaultLLMProvider)),
		LLMModel:           os.Getenv("LLM_MODEL"),
		EmbedderProvider:   strings.ToLower(envOr("EMBEDDER_PROVIDER", defaultEmbedderProvider)),
		EmbedderModel:      os.Getenv("EMBEDDER_MODEL"),
		DedupThreshold:     envFloat("DEDUP_DISTANCE_THRESHOLD", defaultDedupThreshold),
		ExtractionStrategy: strings.ToLower(envOr("EXTRACTION_STRATEGY", defaultExtractionStrategy)),
		SearchTopK:         envInt("SEARCH_TOP_K", defaultSearchTopK),
		SearchRateLimit:    envOr("SEARCH_RATE_LIMIT", defaultSearchRateLimit),
		FeedURLs:           envList("FEED_URLS", defaultFeedURLs),
		FeedItemLimit:      envInt("FEED_ITEM_LIMIT", defaultFeedItemLimit),
		FeedFullText:       envBool("FEED_FULL_TEXT", false),
		FeedTimeout:        envDuration("FEED_TIMEOUT", defaultFeedTimeout),

		KafkaBrokers:        envList("KAFKA_BROKERS", nil),
		KafkaRawTopic:       envOr("KAFKA_RAW_TOPIC", defaultKafkaRawTopic),
		KafkaProcessedTopic: envOr("KAFKA_PROCESSED_TOPIC", defaultKafkaEventsTopic),
		KafkaGroupID:        envOr("KAFKA_GROUP_ID", defaultKafkaGroupID),

		ArchiveBucket:    os.Getenv("ARCHIVE_S3_BUCKET"),
		ArchivePrefix:    envOr("ARCHIVE_S3_PREFIX", defaultArchivePrefix),
		ArchiveRegion:    os.Getenv("AWS_REGION"),
		ArchiveEndpoint:  os.Getenv("ARCHIVE_S3_ENDPOINT"),
		ArchivePathStyle: envBool("ARCHIVE_S3_PATH_STYLE", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if key := c.providerKey(c.LLMProvider); key == "" {
		return fmt.Errorf("API key for LLM provider %q is required", c.LLMProvider)
	}

	if key := c.providerKey(c.EmbedderProvider); key == "" {
		return fmt.Errorf("API key for embedder provider %q is required", c.EmbedderProvider)
	}

	if c.DedupThreshold <= 0 {
		return fmt.Errorf("DEDUP_DISTANCE_THRESHOLD must be positive, got %v", c.DedupThreshold)
	}

	switch c.ExtractionStrategy {
	case "llm", "rule":
	default:
		return fmt.Errorf("unsupported EXTRACTION_STRATEGY: %s", c.ExtractionStrategy)
	}

	return nil
}

// returns the API key configured for a provider name
func (c *Config) providerKey(provider string) string {
	switch provider {
	case "anthropic":
		return c.AnthropicKey
	case "openai":
		return c.OpenAIKey
	case "mistral":
		return c.MistralKey
	case "cohere":
		return c.CohereKey
	default:
		return ""
	}
}

// returns the API key for the given provider
func (c *Config) APIKey(provider string) string {
	return c.providerKey(provider)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}

	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}

	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}

	return fallback
}

// splits a comma separated list, dropping blanks
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}
