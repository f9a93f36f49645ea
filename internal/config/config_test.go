package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("LMS_API_BASE_URL", "http://localhost:5000")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.BaseURL)
	assert.Equal(t, StoreBolt, cfg.TokenStore)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 1, cfg.MaxRedirects)
	assert.Equal(t, "lms:session", cfg.Redis.Prefix)
	assert.Equal(t, "3306", cfg.DB.Port)
}

func TestLoadClient_Overrides(t *testing.T) {
	t.Setenv("LMS_API_BASE_URL", "https://lms.example.com")
	t.Setenv("LMS_TOKEN_STORE", "Redis")
	t.Setenv("LMS_HTTP_TIMEOUT", "5s")
	t.Setenv("LMS_MAX_REDIRECTS", "-1")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.TokenStore)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, -1, cfg.MaxRedirects)
	assert.Equal(t, "cache:6380", cfg.Redis.address())
}

func TestLoadClient_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing base url", map[string]string{"LMS_API_BASE_URL": ""}, "LMS_API_BASE_URL is required"},
		{"unknown store", map[string]string{"LMS_TOKEN_STORE": "cookie"}, `LMS_TOKEN_STORE must be one of bolt, memory, redis, mysql; got "cookie"`},
		{"mysql without db", map[string]string{"LMS_TOKEN_STORE": "mysql"}, "DB_USER and DB_NAME are required for the mysql token store"},
		{"zero timeout", map[string]string{"LMS_HTTP_TIMEOUT": "0s"}, "LMS_HTTP_TIMEOUT must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LMS_API_BASE_URL", "http://localhost:5000")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadClient()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoadServer(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.TTL)
}

func TestLoadServer_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadServer()
	require.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoadServer_BcryptCostBounds(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("BCRYPT_COST", "2")
	_, err := LoadServer()
	require.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), Redis{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), Redis{Addr: addr})
	assert.Error(t, err)
}
