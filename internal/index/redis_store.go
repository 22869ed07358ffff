package index

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/ringvideo/internal/config"
)

// DefaultPrefix namespaces index keys
const DefaultPrefix = "ringvideo:index:"

// RedisStore implements Store using Redis as backend
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed index store. A zero ttl keeps
// entries until they are deleted.
func NewRedisStore(client *redis.Client, logger *logrus.Logger, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client: client,
		logger: logger,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Dial connects to the Redis server named in cfg and checks it answers.
func Dial(ctx context.Context, cfg *config.CacheConfig, logger *logrus.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStore(client, logger, cfg.Prefix, cfg.TTL), nil
}

// Get retrieves an index by key
func (r *RedisStore) Get(ctx context.Context, key string) (*Index, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("index %s: %w", key, ErrMiss)
		}
		return nil, fmt.Errorf("failed to get index: %w", err)
	}

	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}

	return &ix, nil
}

// Put stores an index, replacing any previous one for the same capture
func (r *RedisStore) Put(ctx context.Context, ix *Index) error {
	if ix.Fingerprint == "" {
		return fmt.Errorf("index has no fingerprint")
	}
	if ix.CreatedAt.IsZero() {
		ix.CreatedAt = time.Now()
	}

	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := r.client.Set(ctx, r.prefix+ix.Key(), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store index: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"key":    ix.Key(),
		"frames": ix.Len(),
	}).Debug("Frame index stored")

	return nil
}

// Delete removes an index
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	deleted, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}

	if deleted == 0 {
		return fmt.Errorf("index %s: %w", key, ErrMiss)
	}

	r.logger.WithField("key", key).Debug("Frame index deleted")

	return nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
