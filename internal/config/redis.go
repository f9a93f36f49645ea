package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// address resolves REDIS_HOST/REDIS_PORT, falling back to REDIS_ADDR.
func (r Redis) address() string {
	if r.Host != "" && r.Port != "" {
		return r.Host + ":" + r.Port
	}
	return r.Addr
}

// NewRedisClient builds a client from r and pings it with a short timeout.
// On failure the client is closed and the error returned, so callers can
// decide whether Redis is optional for them.
func NewRedisClient(ctx context.Context, r Redis) (*redis.Client, error) {
	var tlsConf *tls.Config
	if r.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      r.address(),
		Password:  r.Password,
		DB:        r.DB,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", r.address(), err)
	}
	return client, nil
}
