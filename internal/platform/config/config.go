package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Supported RULE_STORE backends.
const (
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreFile     = "file"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	AdminPort string `env:"ADMIN_PORT" default:"9090"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	RuleStore        string `env:"RULE_STORE" default:"postgres"`
	DatabaseURL      string `env:"DATABASE_URL"`
	DynamoDBTable    string `env:"DYNAMODB_TABLE"`
	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"`
	RulesFile        string `env:"RULES_FILE"`

	RedisURL        string        `env:"REDIS_URL"`
	CacheTTL        time.Duration `env:"CACHE_TTL" default:"60s"`
	MemoryCacheTTL  time.Duration `env:"MEMORY_CACHE_TTL" default:"5s"`
	MemoryCacheSize int           `env:"MEMORY_CACHE_SIZE" default:"10000"`

	StoreTimeout time.Duration `env:"STORE_TIMEOUT" default:"2s"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" default:"20"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.RuleStore {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when RULE_STORE=postgres")
		}
		if cfg.AppEnv == "production" {
			if err := requireSecureSSLMode(cfg.DatabaseURL); err != nil {
				return err
			}
		}
	case StoreDynamoDB:
		if cfg.DynamoDBTable == "" {
			return errors.New("DYNAMODB_TABLE is required when RULE_STORE=dynamodb")
		}
	case StoreFile:
		if cfg.RulesFile == "" {
			return errors.New("RULES_FILE is required when RULE_STORE=file")
		}
	default:
		return fmt.Errorf("RULE_STORE must be one of postgres, dynamodb, file; got %q", cfg.RuleStore)
	}

	if cfg.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", cfg.StoreTimeout)
	}
	if cfg.RedisURL != "" && cfg.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when REDIS_URL is set, got %s", cfg.CacheTTL)
	}
	if cfg.MemoryCacheSize < 0 {
		return fmt.Errorf("MEMORY_CACHE_SIZE must not be negative, got %d", cfg.MemoryCacheSize)
	}
	if cfg.MemoryCacheTTL < 0 {
		return fmt.Errorf("MEMORY_CACHE_TTL must not be negative, got %s", cfg.MemoryCacheTTL)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_BURST must be at least 1 when RATE_LIMIT_RPS is set")
	}
	if cfg.Port == cfg.AdminPort {
		return fmt.Errorf("PORT and ADMIN_PORT must differ, both are %s", cfg.Port)
	}

	return nil
}

func requireSecureSSLMode(databaseURL string) error {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	mode := strings.ToLower(u.Query().Get("sslmode"))
	if mode == "disable" || mode == "allow" {
		return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
	}
	return nil
}

// CacheEnabled reports whether the Redis read-through cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// MemoryCacheEnabled reports whether the in-process cache layer is configured.
func (c *Config) MemoryCacheEnabled() bool {
	return c.MemoryCacheSize > 0 && c.MemoryCacheTTL > 0
}
