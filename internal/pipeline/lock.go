package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"codeberg.org/marketwire/server/internal/logger"
)

const (
	defaultLockKey   = "marketwire:ingest_lock"
	defaultLockTTL   = 2 * time.Minute
	lockPollInterval = 50 * time.Millisecond
)

// in-process lock; honours context cancellation while waiting
type MutexLocker struct {
	ch chan struct{}
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{ch: make(chan struct{}, 1)}
}

func (m *MutexLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case m.ch <- struct{}{}:
		return func() { <-m.ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to acquire ingest lock: %w", ctx.Err())
	}
}

// deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// pushes the expiry forward only while the key still holds our token
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// cross-process lock held in Redis so several ingesters share one index and store.
// The TTL only covers a crashed holder: while a run is in progress a watchdog keeps
// extending it, every ttl/3, until the run unlocks.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, key: defaultLockKey, ttl: defaultLockTTL}
}

// creates a Redis-backed locker from a URL
func NewRedisLockerFromURL(redisURL string) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisLocker(client), nil
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire ingest lock: %w", err)
		}

		if ok {
			return l.hold(token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire ingest lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// starts the watchdog for token and returns the unlock func
func (l *RedisLocker) hold(token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(l.ttl / 3)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !l.extend(token) {
					return
				}
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(token)
		})
	}
}

// false once the key no longer belongs to token
func (l *RedisLocker) extend(token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := extendScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
	if err != nil {
		// transient; the next tick tries again while the key is still alive
		logger.Warn("failed to extend ingest lock", "key", l.key, "error", err)
		return true
	}

	if n == 0 {
		logger.Error("ingest lock lost while a run was in progress", "key", l.key)
		return false
	}

	return true
}

func (l *RedisLocker) release(token string) {
	// released even if the run's context was cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		logger.Warn("failed to release ingest lock", "key", l.key, "error", err)
	}
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
