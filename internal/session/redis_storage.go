package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the token in Redis under <prefix>token, for hosts that
// share one login across machines.
type RedisStorage struct {
	rdb *redis.Client
	key string
}

func NewRedisStorage(rdb *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{rdb: rdb, key: prefix + TokenKey}
}

func (r *RedisStorage) Key() string {
	return r.key
}

func (r *RedisStorage) Load(ctx context.Context) (string, error) {
	token, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return token, nil
}

func (r *RedisStorage) Save(ctx context.Context, token string) error {
	if err := r.rdb.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}
