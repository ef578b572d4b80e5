package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/marketwire/server/internal/archive"
	"codeberg.org/marketwire/server/internal/backend"
	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/dedup"
	"codeberg.org/marketwire/server/internal/events"
	"codeberg.org/marketwire/server/internal/extraction"
	"codeberg.org/marketwire/server/internal/feeds"
	"codeberg.org/marketwire/server/internal/llm"
	"codeberg.org/marketwire/server/internal/pipeline"
	"codeberg.org/marketwire/server/internal/query"
	"codeberg.org/marketwire/server/internal/vectorindex"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	backend  *backend.Backend
	redis    *redis.Client // nil when REDIS_URL is unset
	services *Services
	router   *gin.Engine
}

// holds the pipeline stages and agents built on top of the stores
type Services struct {
	LLM        llm.LLM
	Index      vectorindex.Index
	Dedup      *dedup.Stage
	Extraction *extraction.Stage
	Pipeline   *pipeline.Orchestrator
	Query      *query.Agent
	Feeds      *feeds.Poller
	Events     *events.KafkaPublisher // nil when KAFKA_BROKERS is unset
	Archive    *archive.S3Archive     // nil when ARCHIVE_S3_BUCKET is unset
}
