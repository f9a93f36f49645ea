// Package config loads runtime configuration from environment variables.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Token store backends accepted in LMS_TOKEN_STORE.
const (
	StoreBolt   = "bolt"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
)

// Client holds the settings of the lmsctl front-end and the client library.
type Client struct {
	BaseURL      string        `env:"LMS_API_BASE_URL"`
	TokenStore   string        `env:"LMS_TOKEN_STORE" default:"bolt"`
	TokenPath    string        `env:"LMS_TOKEN_PATH"`  // bolt file; defaults to ~/.lmsctl/session.db
	Profile      string        `env:"LMS_PROFILE" default:"default"`
	HTTPTimeout  time.Duration `env:"LMS_HTTP_TIMEOUT" default:"30s"`
	MaxRedirects int           `env:"LMS_MAX_REDIRECTS" default:"1"`
	SessionTTL   time.Duration `env:"LMS_SESSION_TTL"` // redis only; 0 keeps sessions until logout
	LogLevel     string        `env:"LOG_LEVEL" default:"info"`
	LogFormat    string        `env:"LOG_FORMAT" default:"text"`
	RabbitMQURL  string        `env:"RABBITMQ_URL"`
	AuditDir     string        `env:"LMS_AUDIT_DIR" default:"logs"`

	Redis Redis
	DB    DB
}

// Redis connection settings.  REDIS_ADDR is used when host and port are
// not both given.
type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Addr     string `env:"REDIS_ADDR" default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" default:"0"`
	TLS      bool   `env:"REDIS_TLS" default:"false"`
	Prefix   string `env:"REDIS_PREFIX" default:"lms:session"`
}

// DB is the MySQL connection used by the mysql token store.
type DB struct {
	User string `env:"DB_USER"`
	Pass string `env:"DB_PASS"`
	Host string `env:"DB_HOST" default:"127.0.0.1"`
	Port string `env:"DB_PORT" default:"3306"`
	Name string `env:"DB_NAME"`
}

// Server holds the settings of the development API server.
type Server struct {
	Env            string `env:"APP_ENV" default:"dev"`
	Port           string `env:"APP_PORT" default:"5000"`
	JWTSecret      string `env:"JWT_SECRET"`
	AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" default:"15"`
	RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" default:"7"`
	BcryptCost     int    `env:"BCRYPT_COST" default:"10"`
	LogLevel       string `env:"LOG_LEVEL" default:"info"`
	LogFormat      string `env:"LOG_FORMAT" default:"text"`
	Seed           bool   `env:"MOCKAPI_SEED" default:"true"`

	RateLimit RateLimit
	Redis     Redis
}

// RateLimit configures the login throttle.  It needs Redis; without a
// reachable Redis the throttle is off.
type RateLimit struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" default:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" default:"10"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" default:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" default:"6s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" default:"10m"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" default:"rl"`
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
}

// LoadClient reads the client configuration.
func LoadClient() (*Client, error) {
	loadDotenv()

	var cfg Client
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) validate() error {
	if c.BaseURL == "" {
		return errors.New("LMS_API_BASE_URL is required")
	}
	c.TokenStore = strings.ToLower(strings.TrimSpace(c.TokenStore))
	switch c.TokenStore {
	case StoreBolt, StoreMemory, StoreRedis:
	case StoreMySQL:
		if c.DB.User == "" || c.DB.Name == "" {
			return errors.New("DB_USER and DB_NAME are required for the mysql token store")
		}
	default:
		return fmt.Errorf("LMS_TOKEN_STORE must be one of bolt, memory, redis, mysql; got %q", c.TokenStore)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("LMS_HTTP_TIMEOUT must be positive")
	}
	return nil
}

// LoadServer reads the development server configuration.
func LoadServer() (*Server, error) {
	loadDotenv()

	var cfg Server
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Server) validate() error {
	if s.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if s.AccessTTLMin < 1 {
		return errors.New("ACCESS_TOKEN_TTL_MIN must be at least 1")
	}
	if s.RefreshTTLDays < 1 {
		return errors.New("REFRESH_TOKEN_TTL_DAYS must be at least 1")
	}
	if s.BcryptCost < 4 || s.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", s.BcryptCost)
	}

	rl := &s.RateLimit
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
	return nil
}
