package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/moznion/go-optional"
	"github.com/redis/go-redis/v9"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// DefaultNamespace prefixes every Redis key.
const DefaultNamespace = "argo-signal:candles"

// RedisStore keeps candle tables as JSON in Redis with a TTL.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisStore wraps a Redis client. If namespace is empty, DefaultNamespace is used.
func NewRedisStore(rdb *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &RedisStore{rdb: rdb, namespace: namespace}
}

// Get returns None on a miss. A corrupted entry is deleted and reported as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (optional.Option[types.CandleTable], error) {
	fullKey := s.key(key)

	b, err := s.rdb.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return optional.None[types.CandleTable](), nil
	}

	if err != nil {
		return optional.None[types.CandleTable](), errors.Wrapf(errors.ErrCodeCacheFailed, err, "failed to read cache key %s", fullKey)
	}

	var table types.CandleTable
	if err := json.Unmarshal(b, &table); err != nil {
		_ = s.rdb.Del(ctx, fullKey).Err()

		return optional.None[types.CandleTable](), nil
	}

	return optional.Some(table), nil
}

func (s *RedisStore) Set(ctx context.Context, key string, table types.CandleTable, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	b, err := json.Marshal(table)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "failed to encode candle table", err)
	}

	if err := s.rdb.Set(ctx, s.key(key), b, ttl).Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeCacheFailed, err, "failed to write cache key %s", s.key(key))
	}

	return nil
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}
