package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores the pair as a hash at "<prefix>:<profile>" so several client
// processes on different hosts can share one login.  An optional TTL is
// applied on Set; it bounds how long an abandoned pair lingers and is not an
// expiry check.
type Redis struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, prefix, profile string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "lms:session"
	}
	if profile == "" {
		profile = "default"
	}
	return &Redis{rdb: rdb, key: prefix + ":" + profile, ttl: ttl}
}

func (r *Redis) Set(ctx context.Context, accessToken, refreshToken string) error {
	if err := checkPair(accessToken, refreshToken); err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.key, AccessTokenKey, accessToken, RefreshTokenKey, refreshToken)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("tokenstore: redis set: %w", err)
	}
	return nil
}

func (r *Redis) SetAccessToken(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrEmptyToken
	}
	if err := r.rdb.HSet(ctx, r.key, AccessTokenKey, accessToken).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis set access: %w", err)
	}
	return nil
}

func (r *Redis) AccessToken(ctx context.Context) (string, error) {
	return r.get(ctx, AccessTokenKey)
}

func (r *Redis) RefreshToken(ctx context.Context) (string, error) {
	return r.get(ctx, RefreshTokenKey)
}

// Clear drops the whole hash; both values always go together.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis clear: %w", err)
	}
	return nil
}

func (r *Redis) get(ctx context.Context, field string) (string, error) {
	v, err := r.rdb.HGet(ctx, r.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: redis get %s: %w", field, err)
	}
	return v, nil
}
