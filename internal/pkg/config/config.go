// Package config loads the portal configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	APIBaseURL string `env:"API_BASE_URL, default=http://localhost:8080/unidet-api/public"`

	CookieSecret string `env:"COOKIE_SECRET"`
	CookieSecure bool   `env:"COOKIE_SECURE, default=false"`

	SessionBackend string        `env:"SESSION_BACKEND, default=memory"`
	RootAdminID    int64         `env:"ROOT_ADMIN_ID,   default=1"`
	SubmitLockTTL  time.Duration `env:"SUBMIT_LOCK_TTL, default=10s"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=unidet_portal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Production reports whether ENV is production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads an optional .env file, then the environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.Production() && len(c.CookieSecret) < 32 {
		return errors.New("config: COOKIE_SECRET must be at least 32 bytes in production")
	}
	if c.RootAdminID <= 0 {
		return errors.New("config: ROOT_ADMIN_ID must be positive")
	}
	return nil
}
