package cache

import (
	"context"
	"errors"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/redis/go-redis/v9"
)

var _ core.ExistenceCache = (*Redis)(nil)

// Redis keeps existence flags as "1"/"0" strings with a native expiry.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and pings it before returning.
func NewRedis(ctx context.Context, addr, password string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(clientOptions(addr, password))

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisFromClient(client, ttl), nil
}

// clientOptions keeps network timeouts short. A slow cache must degrade to
// a store lookup, not stall the request.
func clientOptions(addr, password string) *redis.Options {
	return &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
		MaxRetries:   -1,
	}
}

func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl == 0 {
		ttl = core.DefaultExistenceTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (bool, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == "1", true, nil
}

func (r *Redis) Set(ctx context.Context, key string, exists bool, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	v := "0"
	if exists {
		v = "1"
	}
	return r.client.Set(ctx, key, v, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
