package ratelimit

const (
	// requests per client IP, in limiter's "<count>-<period>" format
	DefaultRate = "30-M"

	redisPrefix   = "marketwire:ratelimit"
	redisMaxRetry = 3
)
