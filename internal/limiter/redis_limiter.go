package limiter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/redis/go-redis/v9"
)

// windowScript increments the window counter and returns {count, pttl}
// The expiry is set on the first hit so abandoned windows clean themselves up.
var windowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {current, redis.call('PTTL', KEYS[1])}
`)

// RedisLimiter is a fixed-window limiter shared by every instance behind the same Redis
//
// Key format: ratelimit:{key}:{window}
type RedisLimiter struct {
	client     *redis.Client
	limit      int64
	windowSize time.Duration
	log        *logger.Logger
}

// NewRedisLimiter creates a Redis limiter allowing requestsPerSecond per key
// Fractional rates widen the window: 0.2 req/s becomes 1 request per 5 seconds.
func NewRedisLimiter(addr, password string, db int, requestsPerSecond float64, log *logger.Logger) (*RedisLimiter, error) {
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %v", requestsPerSecond)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	windowSize := time.Second
	if requestsPerSecond < 1.0 {
		windowSize = time.Duration(math.Ceil(1.0/requestsPerSecond)) * time.Second
	}

	if log == nil {
		log = logger.NewDefault()
	}

	return &RedisLimiter{
		client:     client,
		limit:      int64(math.Ceil(requestsPerSecond * windowSize.Seconds())),
		windowSize: windowSize,
		log:        log.WithComponent("RedisLimiter"),
	}, nil
}

// Allow charges one request to key in the current window
// Redis failures fail open so a cache outage does not take lookups down with it.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	window := time.Now().UnixNano() / int64(rl.windowSize)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	result, err := windowScript.Run(ctx, rl.client, []string{redisKey}, rl.windowSize.Milliseconds()).Int64Slice()
	if err != nil || len(result) != 2 {
		rl.log.Warn().Err(err).Str("key", key).Msg("Rate limit check failed, allowing request")
		return Decision{Allowed: true}
	}

	count, pttl := result[0], result[1]
	if count <= rl.limit {
		return Decision{Allowed: true, Remaining: int(rl.limit - count)}
	}

	retry := time.Duration(pttl) * time.Millisecond
	if pttl < 0 {
		retry = rl.windowSize
	}
	return Decision{Allowed: false, RetryAfter: retry}
}

// Close closes the Redis connection
func (rl *RedisLimiter) Close() error {
	if rl.client != nil {
		return rl.client.Close()
	}
	return nil
}
