package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces snapshot keys.
const DefaultRedisPrefix = "domindex:"

// RedisStore keeps snapshots as Redis string values.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a Redis-backed Store. An empty prefix selects
// DefaultRedisPrefix.
func NewRedisStore(client redis.Cmdable, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("snapshot: redis client is nil")
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Key returns the Redis key used for name.
func (s *RedisStore) Key(name string) string { return s.prefix + name }

// Save sets the snapshot without expiry.
func (s *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("snapshot: empty name")
	}
	return s.client.Set(ctx, s.Key(name), data, 0).Err()
}

// Load returns the stored snapshot.
func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// Delete removes the snapshot.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.Key(name)).Err()
}

// Ensure RedisStore satisfies the Store interface.
var _ Store = (*RedisStore)(nil)
