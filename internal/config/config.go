package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from STORE_* environment variables.
type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	ResetCodeTTL time.Duration `envconfig:"RESET_CODE_TTL" default:"15m"`

	// CartLegacyOverwrite makes a repeated add replace the quantity
	// instead of failing.
	CartLegacyOverwrite bool `envconfig:"CART_LEGACY_OVERWRITE" default:"false"`

	// Empty PostgresHost selects the in-memory stores.
	PostgresHost     string `envconfig:"POSTGRES_HOST"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"store"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"store"`
	MigrationsDir    string `envconfig:"MIGRATIONS_DIR" default:"./migrations"`

	// Empty RedisAddr disables the item cache.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// Empty KafkaBrokers disables order event publishing.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"order-events"`

	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`

	SeedDemoData bool `envconfig:"SEED_DEMO_DATA" default:"true"`
}

type RateLimitConfig struct {
	MaxRequests     int           `envconfig:"MAX_REQUESTS" default:"5"`
	RefillPeriod    time.Duration `envconfig:"REFILL_PERIOD" default:"20m"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1h"`
	Enabled         bool          `envconfig:"ENABLED" default:"true"`
	AuthPathPrefix  string        `envconfig:"AUTH_PATH_PREFIX" default:"/store/auth"`
	ExcludedPaths   []string      `envconfig:"EXCLUDED_PATHS" default:"/register,/forgot-password"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("store", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
