package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers understood by persistence.Open.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Password hashing modes for the account directory.
const (
	PasswordHashingBcrypt = "bcrypt"
	PasswordHashingPlain  = "plain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	SQLite       SQLiteConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"ticketapp"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"127.0.0.1"`
	Port                  string `env:"APP_PORT" envDefault:"8080"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Driver   string `env:"STORAGE_DRIVER" envDefault:"file"`
	FilePath string `env:"STORAGE_FILE_PATH" envDefault:"data/ticketapp.json"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX"`
}

// SQLiteConfig holds the local database file settings.
type SQLiteConfig struct {
	Path          string `env:"SQLITE_PATH" envDefault:"data/ticketapp.db"`
	RunMigrations bool   `env:"SQLITE_RUN_MIGRATIONS" envDefault:"true"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Output string `env:"LOG_OUTPUT" envDefault:"stdout"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string `env:"AUTH_JWT_SECRET" envDefault:"dev-secret"`
	AccessTokenTTLMinutes int    `env:"AUTH_ACCESS_TOKEN_TTL_MINUTES" envDefault:"60"`
	BcryptCost            int    `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	VerifyPassword        bool   `env:"AUTH_VERIFY_PASSWORD" envDefault:"true"`
	PasswordHashing       string `env:"AUTH_PASSWORD_HASHING" envDefault:"bcrypt"`
}

// NotificationConfig holds toast and outbound notification settings.
type NotificationConfig struct {
	ToastDuration  time.Duration `env:"NOTIFY_TOAST_DURATION" envDefault:"3s"`
	WebhookURL     string        `env:"NOTIFY_WEBHOOK_URL"`
	WebhookTimeout time.Duration `env:"NOTIFY_WEBHOOK_TIMEOUT" envDefault:"5s"`
	AMQPURL        string        `env:"NOTIFY_AMQP_URL"`
	AMQPQueue      string        `env:"NOTIFY_AMQP_QUEUE" envDefault:"ticketapp.events"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the service cannot act on.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Auth.PasswordHashing = strings.ToLower(strings.TrimSpace(c.Auth.PasswordHashing))

	switch c.Storage.Driver {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres, StorageSQLite:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Auth.PasswordHashing {
	case PasswordHashingBcrypt, PasswordHashingPlain:
	default:
		return fmt.Errorf("invalid AUTH_PASSWORD_HASHING %q", c.Auth.PasswordHashing)
	}
	if c.Storage.Driver == StoragePostgres && c.Postgres.DSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres storage driver")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}
