package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for artifacts
	artifactKeyPrefix = "artifact:"
	// Default TTL for artifact keys
	defaultRedisTTL = 24 * time.Hour
)

// RedisRegistry stores artifacts in Redis so that several server instances
// can serve each other's download links. Keys expire after ttl.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// Compile-time check that RedisRegistry implements Registry.
var _ Registry = (*RedisRegistry)(nil)

// NewRedisRegistry creates a Redis-backed registry.
func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisRegistry{
		client: client,
		ttl:    ttl,
	}
}

// DialRedis parses a redis:// URL, connects and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Register implements Registry.
// SETNX guards against ever overwriting an existing identifier.
func (r *RedisRegistry) Register(ctx context.Context, content string) (string, error) {
	id := newID()
	ok, err := r.client.SetNX(ctx, r.key(id), content, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("store artifact: id collision on %s", id)
	}
	return id, nil
}

// Retrieve implements Registry.
func (r *RedisRegistry) Retrieve(ctx context.Context, id string) (string, error) {
	val, err := r.client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load artifact: %w", err)
	}
	return val, nil
}

// Close closes the underlying Redis client.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

func (r *RedisRegistry) key(id string) string {
	return artifactKeyPrefix + id
}
