package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/life-engine/pkg/rules"
	"github.com/jwebster45206/life-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// DefaultArchiveTTL is how long finished lives are kept when no TTL is given.
const DefaultArchiveTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for life
// archives and player profiles, and the filesystem for rule tables
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	ttl     time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL is a
// redis:// URL; a bare host:port is accepted too.
func NewRedisStorage(redisURL string, dataDir string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt, err = redis.ParseURL("redis://" + redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
	}

	if dataDir == "" {
		dataDir = "./data"
	}
	if ttl <= 0 {
		ttl = DefaultArchiveTTL
	}

	return &RedisStorage{
		client:  redis.NewClient(opt),
		logger:  logger,
		dataDir: dataDir,
		ttl:     ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Rule tables (filesystem-backed)

func (r *RedisStorage) LoadRules(ctx context.Context) (*rules.RuleSet, error) {
	rs, err := rules.LoadDir(r.dataDir, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", r.dataDir, err)
	}
	r.logger.Info("Rules loaded",
		"dir", r.dataDir,
		"events", rs.NumEvents(),
		"talents", rs.NumTalents(),
		"ages", rs.NumAges())
	return rs, nil
}
