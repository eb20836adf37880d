package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth       AuthConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Dispatcher DispatcherConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`
	// RootEmails and RootPhones are the super-user allowlists.
	RootEmails []string `env:"ROOT_EMAILS"`
	RootPhones []string `env:"ROOT_PHONES"`
	// AuthorizedOrigins lists the web origins allowed to sign in. Empty allows any.
	AuthorizedOrigins []string `env:"AUTHORIZED_ORIGINS"`
	// MinPasswordLength applies to the built-in password provider.
	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH, default=6"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=quickorder"`
}

type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR, default=localhost:6379"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,   default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

type KafkaConfig struct {
	// Brokers may be empty, in which case order events are only logged.
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"QUICKORDER_KAFKA_TOPIC, default=quickorder.orders"`
}

type DispatcherConfig struct {
	Workers int `env:"EVENT_WORKERS, default=8"`
}

// IsDevelopment reports whether pretty logging and relaxed defaults apply.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadFrom is Load with an explicit lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
