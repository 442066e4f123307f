package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// putJSON / getJSON Redis 里统一存 JSON
func putJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

func getJSON[T any](ctx context.Context, rdb *redis.Client, key string) (*T, error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// takeJSON 读取并删除（一次性数据，例如 WebAuthn challenge）
func takeJSON[T any](ctx context.Context, rdb *redis.Client, key string) (*T, error) {
	b, err := rdb.GetDel(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
