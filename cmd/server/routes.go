package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"codeberg.org/marketwire/server/api/rest/articles"
	"codeberg.org/marketwire/server/api/rest/health"
	"codeberg.org/marketwire/server/api/rest/ingest"
	"codeberg.org/marketwire/server/api/rest/search"
	"codeberg.org/marketwire/server/api/rest/stats"
	"codeberg.org/marketwire/server/internal/ratelimit"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(CORSMiddleware(server.config.CORSOrigins))
	router.GET("/health", health.Handler(server.healthChecks()...))

	limiterStore, err := ratelimit.NewStore(server.redis)
	if err != nil {
		return err
	}

	searchLimit, err := ratelimit.Middleware(server.config.SearchRateLimit, limiterStore)
	if err != nil {
		return err
	}

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		articles.RegisterRoutes(v1, server.services.Pipeline, server.backend.Store)
		ingest.RegisterRoutes(v1, server.services.Feeds, server.services.Pipeline)
		search.RegisterRoutes(v1, server.services.Query, searchLimit)
		stats.RegisterRoutes(v1, server.backend.Store)
	}

	return nil
}

// allows any origin unless an explicit list is configured
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}

func (s *Server) healthChecks() []health.Checker {
	checks := []health.Checker{
		health.CheckFunc{Label: string(s.backend.Kind), Fn: s.backend.Store.Ping},
	}

	if s.redis != nil {
		checks = append(checks, health.CheckFunc{
			Label: "redis",
			Fn: func(ctx context.Context) error {
				return s.redis.Ping(ctx).Err()
			},
		})
	}

	return checks
}
