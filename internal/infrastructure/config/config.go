package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the immutable process configuration, built once at startup
// and passed explicitly to the components that need it.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	JWT   JWTConfig
}

type MongoConfig struct {
	URI             string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database        string `env:"MONGO_DB,         default=users_service"`
	UsersCollection string `env:"USERS_COLLECTION, default=users"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type JWTConfig struct {
	Secret        string  `env:"JWT_SECRET"`
	Issuer        string  `env:"JWT_ISSUER,         default=users-service"`
	Audience      string  `env:"JWT_AUDIENCE,       default=api-gateway"`
	ExpiryMinutes float64 `env:"JWT_EXPIRY_MINUTES, default=60"`
}

// Expiry converts the configured minutes (fractional values allowed)
// into a token lifetime.
func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes * float64(time.Minute))
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
