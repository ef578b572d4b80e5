// Package ratelimit throttles expensive endpoints per client IP.
package ratelimit

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/marketwire/server/internal/errors"
	"codeberg.org/marketwire/server/internal/logger"
)

// counters live in redis when a client is given so every replica shares them
func NewStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStore(), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   redisPrefix,
		MaxRetry: redisMaxRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}

	return store, nil
}

// returns a gin middleware enforcing formatted (e.g. "30-M") per client IP
func Middleware(formatted string, store limiter.Store) (gin.HandlerFunc, error) {
	if formatted == "" {
		formatted = DefaultRate
	}

	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithLimitReachedHandler(limitReached(rate)),
		mgin.WithErrorHandler(storeFailed),
	), nil
}

func limitReached(rate limiter.Rate) mgin.LimitReachedHandler {
	retryAfter := strconv.Itoa(int(rate.Period / time.Second))

	return func(c *gin.Context) {
		logger.Warn("rate limit exceeded", "ip", c.ClientIP(), "path", c.Request.URL.Path)

		c.Header("Retry-After", retryAfter)
		errors.TooManyRequests(c, "too many requests. please slow down.")
	}
}

func storeFailed(c *gin.Context, err error) {
	errors.InternalError(c, "rate limiter unavailable", err)
}
