package config

import "time"

type Config struct {
	DatabaseURL string
	RedisURL    string
	Environment string
	Port        string
	// allowed browser origins; empty allows any
	CORSOrigins []string

	AnthropicKey string
	OpenAIKey    string
	MistralKey   string
	CohereKey    string

	// which provider completes prompts and which one embeds text
	LLMProvider      string
	LLMModel         string
	EmbedderProvider string
	EmbedderModel    string

	DedupThreshold     float64
	ExtractionStrategy string
	SearchTopK         int
	SearchRateLimit    string

	FeedURLs      []string
	FeedItemLimit int
	FeedFullText  bool
	FeedTimeout   time.Duration

	// empty disables kafka entirely
	KafkaBrokers        []string
	KafkaRawTopic       string
	KafkaProcessedTopic string
	KafkaGroupID        string

	// empty bucket disables the S3 article archive
	ArchiveBucket    string
	ArchivePrefix    string
	ArchiveRegion    string
	ArchiveEndpoint  string
	ArchivePathStyle bool
}

type Flags struct {
	Path     string
	FullText bool
	Limit    int
}
