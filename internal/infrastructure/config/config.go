// Package config loads the mock backend configuration.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"MOCKAPI_PORT, default=8080"`
	Prefix   string `env:"MOCKAPI_PREFIX, default=/unidet-api/public"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret string        `env:"MOCKAPI_JWT_SECRET, default=mockapi-dev-secret"`
	TokenTTL  time.Duration `env:"MOCKAPI_TOKEN_TTL,  default=8h"`

	RootEmail    string `env:"MOCKAPI_ROOT_EMAIL,    default=admin@unidet.mx"`
	RootPassword string `env:"MOCKAPI_ROOT_PASSWORD, default=admin123"`
	RootName     string `env:"MOCKAPI_ROOT_NAME,     default=Administrador"`
}

// Load reads an optional .env file, then the environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load mock backend configuration: %w", err)
	}
	return &cfg, nil
}
