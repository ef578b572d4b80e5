package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/marketwire/server/internal/backend"
	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/llm"
)

const redisConnectTimeout = 5 * time.Second

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	dimension, err := llm.EmbeddingDimension(llm.Provider(cfg.EmbedderProvider), cfg.EmbedderModel)
	if err != nil {
		return nil, err
	}

	stores, err := backend.Open(ctx, cfg.DatabaseURL, dimension)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client

	if cfg.RedisURL != "" {
		redisClient, err = connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			stores.Close()
			return nil, err
		}
	}

	services, err := InitializeServices(ctx, cfg, stores, redisClient)
	if err != nil {
		closeRedis(redisClient)
		stores.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		config:   cfg,
		backend:  stores,
		redis:    redisClient,
		services: services,
		router:   router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		closePublisher(services.Events)
		closeRedis(redisClient)
		stores.Close()
		return nil, err
	}

	return server, nil
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func closeRedis(client *redis.Client) {
	if client != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup
	}
}

// releases the stores in reverse order of creation
func (s *Server) Close() {
	closePublisher(s.services.Events)
	closeRedis(s.redis)
	s.backend.Close()
}
