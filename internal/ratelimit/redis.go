package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

type RedisStore struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func (s *RedisStore) Incr(ctx context.Context, key string, d time.Duration) (int, time.Time, error) {
	k := redisKeyPrefix + key

	count, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("incr: %w", err)
	}

	if count == 1 {
		if err := s.rdb.PExpire(ctx, k, d).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("pexpire: %w", err)
		}
		return int(count), s.now().Add(d), nil
	}

	ttl, err := s.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("pttl: %w", err)
	}
	// A key without a TTL means the expire after the first INCR never landed.
	if ttl < 0 {
		if err := s.rdb.PExpire(ctx, k, d).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("pexpire: %w", err)
		}
		ttl = d
	}
	return int(count), s.now().Add(ttl), nil
}
