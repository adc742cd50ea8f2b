package limiter

import (
	"context"
	"math"
	"sync"
	"time"
)

// Decision is the outcome of a single admission check
type Decision struct {
	Allowed    bool
	Remaining  int           // whole requests left in the current budget
	RetryAfter time.Duration // zero when Allowed
}

// Limiter throttles inbound lookup requests per client key
// Implementations: in-memory token buckets and a Redis fixed window
type Limiter interface {
	Allow(ctx context.Context, key string) Decision

	// Close cleans up any resources (Redis connections, etc.)
	Close() error
}

// bucketIdleTTL is how long an untouched bucket is kept
const bucketIdleTTL = 5 * time.Minute

// TokenBucket is one client's budget
// Tokens refill continuously at refillRate up to capacity; a request costs one token.
type TokenBucket struct {
	mu             sync.Mutex
	tokens         float64
	capacity       float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	now            func() time.Time
}

// NewTokenBucket creates a full bucket
// Capacity is raised to 1 so fractional rates (0.2 req/s) still admit a first request.
func NewTokenBucket(rate, capacity float64) *TokenBucket {
	return newTokenBucket(rate, capacity, time.Now)
}

func newTokenBucket(rate, capacity float64, now func() time.Time) *TokenBucket {
	capacity = max(capacity, 1.0)
	return &TokenBucket{
		tokens:         capacity,
		capacity:       capacity,
		refillRate:     rate,
		lastRefillTime: now(),
		now:            now,
	}
}

// Take consumes one token if available
func (tb *TokenBucket) Take() Decision {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= 1.0 {
		tb.tokens--
		return Decision{Allowed: true, Remaining: int(math.Floor(tb.tokens))}
	}

	var retry time.Duration
	if tb.refillRate > 0 {
		retry = time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second))
	}
	return Decision{Allowed: false, RetryAfter: retry}
}

// must be called with mu held
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.tokens = min(tb.tokens+elapsed*tb.refillRate, tb.capacity)
	tb.lastRefillTime = now
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefillTime
}

// MemoryLimiter keeps one token bucket per client key
// Suitable for single-instance deployments
type MemoryLimiter struct {
	buckets     sync.Map // key -> *TokenBucket
	rate        float64
	capacity    float64
	now         func() time.Time
	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// NewMemoryLimiter creates an in-memory limiter allowing requestsPerSecond per key
// Burst size equals one second worth of requests.
func NewMemoryLimiter(requestsPerSecond float64) *MemoryLimiter {
	return &MemoryLimiter{
		rate:        requestsPerSecond,
		capacity:    requestsPerSecond,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// Allow charges one request to key
func (rl *MemoryLimiter) Allow(_ context.Context, key string) Decision {
	decision := rl.bucket(key).Take()
	rl.maybeCleanup()
	return decision
}

func (rl *MemoryLimiter) bucket(key string) *TokenBucket {
	if value, ok := rl.buckets.Load(key); ok {
		return value.(*TokenBucket)
	}
	actual, _ := rl.buckets.LoadOrStore(key, newTokenBucket(rl.rate, rl.capacity, rl.now))
	return actual.(*TokenBucket)
}

// maybeCleanup drops buckets idle for longer than bucketIdleTTL, at most once per TTL
func (rl *MemoryLimiter) maybeCleanup() {
	rl.cleanupMu.Lock()
	defer rl.cleanupMu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) < bucketIdleTTL {
		return
	}

	threshold := now.Add(-bucketIdleTTL)
	rl.buckets.Range(func(key, value any) bool {
		if value.(*TokenBucket).idleSince().Before(threshold) {
			rl.buckets.Delete(key)
		}
		return true
	})

	rl.lastCleanup = now
}

// Close is a no-op for the in-memory limiter
func (rl *MemoryLimiter) Close() error {
	return nil
}
