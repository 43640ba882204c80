package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

type Config struct {
	Service    Service
	Store      Store
	Feed       Feed
	Mutation   Mutation
	Auth       Auth
	SQS        SQS
	ClickHouse ClickHouse
	Consumer   Consumer
}

type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
}

type Store struct {
	Driver      string `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"STORE_SQLITE_PATH" default:"socials.db"`
	PostgresDSN string `envconfig:"STORE_POSTGRES_DSN"`
	Collection  string `envconfig:"STORE_COLLECTION" default:"socials"`
}

type Feed struct {
	OrderKey       string `envconfig:"FEED_ORDER_KEY" default:"eventDate"`
	OrderDirection string `envconfig:"FEED_ORDER_DIRECTION" default:"asc"`
	BufferSize     int    `envconfig:"FEED_BUFFER_SIZE" default:"1024"`
}

type Mutation struct {
	MaxAttempts   int `envconfig:"MUTATION_MAX_ATTEMPTS" default:"5"`
	BackoffBaseMs int `envconfig:"MUTATION_BACKOFF_BASE_MS" default:"20"`
	BackoffMaxMs  int `envconfig:"MUTATION_BACKOFF_MAX_MS" default:"500"`
}

type Auth struct {
	JWTSecret   string `envconfig:"AUTH_JWT_SECRET" required:"true"`
	CacheSize   int    `envconfig:"AUTH_CACHE_SIZE" default:"1024"`
	CacheTTLSec int    `envconfig:"AUTH_CACHE_TTL_SEC" default:"300"`
}

type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL"`
	Region   string `envconfig:"SQS_REGION" default:"eu-central-1"`
}

type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port            string `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database        string `envconfig:"CLICKHOUSE_DB" default:"socials"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type Consumer struct {
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"500"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot express as tags
func (c *Config) Validate() error {
	// required only checks presence, an empty value still loads
	if strings.TrimSpace(c.Service.Environment) == "" {
		return fmt.Errorf("SERVICE_ENVIRONMENT must not be empty")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("AUTH_JWT_SECRET must not be empty")
	}

	switch c.Store.Driver {
	case "sqlite":
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("STORE_POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported store driver: %s (supported: sqlite, postgres)", c.Store.Driver)
	}

	if c.Feed.OrderKey != domain.OrderKeyEventDate {
		return fmt.Errorf("unsupported order key: %s (supported: %s)", c.Feed.OrderKey, domain.OrderKeyEventDate)
	}
	if _, err := domain.ParseDirection(c.Feed.OrderDirection); err != nil {
		return err
	}
	if c.Feed.BufferSize < 1 {
		return fmt.Errorf("FEED_BUFFER_SIZE must be positive, got %d", c.Feed.BufferSize)
	}

	if c.Mutation.MaxAttempts < 1 {
		return fmt.Errorf("MUTATION_MAX_ATTEMPTS must be positive, got %d", c.Mutation.MaxAttempts)
	}
	if c.Mutation.BackoffBaseMs < 0 || c.Mutation.BackoffMaxMs < c.Mutation.BackoffBaseMs {
		return fmt.Errorf("invalid mutation backoff: base %dms, max %dms", c.Mutation.BackoffBaseMs, c.Mutation.BackoffMaxMs)
	}

	if c.Consumer.BatchSizeMax < 1 {
		return fmt.Errorf("CONSUMER_BATCH_SIZE_MAX must be positive, got %d", c.Consumer.BatchSizeMax)
	}
	if c.Consumer.BatchTimeoutSec < 1 {
		return fmt.Errorf("CONSUMER_BATCH_TIMEOUT_SEC must be positive, got %d", c.Consumer.BatchTimeoutSec)
	}

	return nil
}

// BackoffBase returns the first retry delay of the mutation coordinator
func (m Mutation) BackoffBase() time.Duration {
	return time.Duration(m.BackoffBaseMs) * time.Millisecond
}

// BackoffMax returns the retry delay ceiling of the mutation coordinator
func (m Mutation) BackoffMax() time.Duration {
	return time.Duration(m.BackoffMaxMs) * time.Millisecond
}

// CacheTTL returns how long a verified token stays cached
func (a Auth) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLSec) * time.Second
}
