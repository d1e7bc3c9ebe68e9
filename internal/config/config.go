package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from the environment with the STOREFRONT prefix,
// e.g. STOREFRONT_HTTP_PORT.
type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	Postgres PostgresConfig `envconfig:"POSTGRES"`
	Mongo    MongoConfig    `envconfig:"MONGO"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Kafka    KafkaConfig    `envconfig:"KAFKA"`
	Backend  BackendConfig  `envconfig:"BACKEND"`
}

type PostgresConfig struct {
	Host              string `envconfig:"HOST" default:"localhost"`
	Port              int    `envconfig:"PORT" default:"5432"`
	User              string `envconfig:"USER" default:"storefront"`
	Password          string `envconfig:"PASSWORD" default:"storefront"`
	DBName            string `envconfig:"DB" default:"storefront"`
	MigrationsDirPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`
}

type MongoConfig struct {
	URI      string `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"DATABASE" default:"storefront"`
}

type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD" default:""`
	DB       int    `envconfig:"DB" default:"0"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"BROKERS" default:"localhost:9092"`
}

// BackendConfig points at the hosted functions backend used for
// transactional email campaigns and subscriber imports.
type BackendConfig struct {
	BaseURL string `envconfig:"BASE_URL" default:""`
	APIKey  string `envconfig:"API_KEY" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("storefront", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
