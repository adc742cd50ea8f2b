package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/evyataryagoni/ipenrich/internal/metrics"
)

// Store is a source of operator-maintained addresses that must never be looked up
// Allows multiple implementations (CSV, MySQL, Redis) and easy testing with mocks
type Store interface {
	// IgnoredAddresses returns every ignored address value
	IgnoredAddresses(ctx context.Context) ([]string, error)

	// Close cleans up resources (database connections, file handles, etc.)
	Close() error
}

// Config selects and configures an ignore store
type Config struct {
	Type string // "none", "csv", "mysql" or "redis"

	CSVPath string

	MySQLDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New creates a store based on the configuration (factory pattern)
func New(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "none", "":
		return emptyStore{}, nil
	case "csv":
		return NewCSVStore(cfg.CSVPath)
	case "mysql":
		return NewMySQLStore(cfg.MySQLDSN)
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown ignore store type: %s (supported: 'none', 'csv', 'mysql', 'redis')", cfg.Type)
	}
}

// Snapshot reads the ignore list once and records the query outcome
// The returned slice is owned by the caller
func Snapshot(ctx context.Context, s Store, datastore string, m *metrics.Metrics, log *logger.Logger) ([]string, error) {
	addresses, err := s.IgnoredAddresses(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	if m != nil {
		m.IgnoreStoreQueriesTotal.WithLabelValues(datastore, status).Inc()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore list from %s: %w", datastore, err)
	}

	if log != nil {
		log.Info().Str("datastore", datastore).Int("count", len(addresses)).Msg("Ignore list loaded")
	}
	return addresses, nil
}

// emptyStore backs IGNORE_STORE_TYPE=none
type emptyStore struct{}

func (emptyStore) IgnoredAddresses(context.Context) ([]string, error) { return nil, nil }

func (emptyStore) Close() error { return nil }
