package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	// ignoredSetKey holds the ignored addresses
	ignoredSetKey = "ignored_ips"
	// ignoredReasonsKey is a hash of address -> reason
	ignoredReasonsKey = "ignored_ips:reasons"
)

// RedisStore implements Store using a Redis set
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store and checks the connection
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// IgnoredAddresses returns the members of the ignore set in sorted order
func (s *RedisStore) IgnoredAddresses(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, ignoredSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}
	sort.Strings(members)
	return members, nil
}

// Add puts an address in the ignore set and records why
func (s *RedisStore) Add(ctx context.Context, ip, reason string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, ignoredSetKey, ip)
		pipe.HSet(ctx, ignoredReasonsKey, ip, reason)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

// Reason returns the recorded reason for an ignored address
func (s *RedisStore) Reason(ctx context.Context, ip string) (string, bool, error) {
	reason, err := s.client.HGet(ctx, ignoredReasonsKey, ip).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("Redis query failed: %w", err)
	}
	return reason, true, nil
}

// LoadFromCSV copies an ignore list CSV into Redis and returns how many rows were stored
func (s *RedisStore) LoadFromCSV(ctx context.Context, csvPath string) (int, error) {
	csvStore, err := NewCSVStore(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}
	defer csvStore.Close()

	count := 0
	for ip, reason := range csvStore.reasons {
		if err := s.Add(ctx, ip, reason); err != nil {
			return count, fmt.Errorf("failed to store IP %s: %w", ip, err)
		}
		count++
	}

	return count, nil
}

// IsEmpty reports whether the ignore set has no members
func (s *RedisStore) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.client.SCard(ctx, ignoredSetKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check Redis keys: %w", err)
	}
	return n == 0, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
