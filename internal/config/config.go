package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP       `yaml:"http"`
	Postgres   `yaml:"postgres"`
	Mongo      `yaml:"mongo"`
	Redis      `yaml:"redis"`
	Catalog    `yaml:"catalog"`
	Kafka      `yaml:"kafka"`
	Paystack   `yaml:"paystack"`
	Auth       `yaml:"auth"`
	Prometheus `yaml:"prometheus"`
}

type HTTP struct {
	Port               string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	RequestTimeout     time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size" env:"HTTP_MAX_BODY" env-default:"1048576"`
}

type Postgres struct {
	Host              string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port              int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User              string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password          string        `yaml:"password" env:"DB_PASSWORD" env-default:"postgres"`
	DBName            string        `yaml:"db_name" env:"DB_NAME" env-default:"storefront"`
	OrdersMigrations  string        `yaml:"orders_migrations" env:"ORDERS_MIGRATIONS_PATH" env-default:"./internal/orders/repository/migrations"`
	UsersMigrations   string        `yaml:"users_migrations" env:"USERS_MIGRATIONS_PATH" env-default:"./internal/auth/repository/migrations"`
	RetryConnAttempts uint          `yaml:"retry_conn_attempts" env:"DB_RETRY_ATTEMPTS" env-default:"5"`
	RetryConnDelay    time.Duration `yaml:"retry_conn_delay" env:"DB_RETRY_DELAY" env-default:"1s"`
	RetryConnMaxDelay time.Duration `yaml:"retry_conn_max_delay" env:"DB_RETRY_MAX_DELAY" env-default:"5s"`
}

type Mongo struct {
	URI    string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	DBName string `yaml:"db_name" env:"MONGO_DB_NAME" env-default:"storefront"`
}

type Redis struct {
	Addr       string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
}

type Catalog struct {
	DBPath     string `yaml:"db_path" env:"CATALOG_DB_PATH" env-default:"./catalog.db"`
	Migrations string `yaml:"migrations" env:"CATALOG_MIGRATIONS_PATH" env-default:"./internal/catalog/repository/migrations"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_ORDERS_TOPIC" env-default:"orders-outbox"`
}

type Paystack struct {
	SecretKey string        `yaml:"secret_key" env:"PAYSTACK_SECRET_KEY"`
	BaseURL   string        `yaml:"base_url" env:"PAYSTACK_BASE_URL" env-default:"https://api.paystack.co"`
	Currency  string        `yaml:"currency" env:"PAYSTACK_CURRENCY" env-default:"NGN"`
	Timeout   time.Duration `yaml:"timeout" env:"PAYSTACK_TIMEOUT" env-default:"20s"`
}

type Auth struct {
	AdminEmails []string `yaml:"admin_emails" env:"ADMIN_EMAILS" env-separator:","`
}

type Prometheus struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR" env-default:":9090"`
}

// Load reads the YAML file named by CONFIG_PATH when it is set and overlays the
// environment. Without CONFIG_PATH only the environment and defaults are used.
func Load() (*Config, error) {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Validate returns the settings that are missing. None of them is fatal:
// callers disable the dependent feature and log a warning.
func (c *Config) Validate() []*apperr.ConfigError {
	var errs []*apperr.ConfigError
	if c.Paystack.SecretKey == "" {
		errs = append(errs, &apperr.ConfigError{Key: "PAYSTACK_SECRET_KEY", Message: "not set, checkout and verification are disabled"})
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, &apperr.ConfigError{Key: "KAFKA_BROKERS", Message: "not set, order events are not published"})
	}
	return errs
}

// CheckoutEnabled reports whether the payment provider secret is present.
func (c *Config) CheckoutEnabled() bool {
	return c.Paystack.SecretKey != ""
}

func (c *Config) IsAdmin(email string) bool {
	for _, e := range c.Auth.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
