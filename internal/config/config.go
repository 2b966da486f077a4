package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stats    StatsConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// StatsConfig tunes the write coordinator and the stats read cache.
type StatsConfig struct {
	// LockTimeout bounds how long a writer waits on a parent row lock
	// before the transaction aborts.
	LockTimeout time.Duration
	// MaxRetries is how many times a lock-wait timeout is retried before
	// it is surfaced as a conflict.
	MaxRetries int
	// RetryBackoff is the base delay between lock retries.
	RetryBackoff time.Duration
	// CacheTTL is the redis TTL for cached book stats.
	CacheTTL time.Duration
}

type WorkerConfig struct {
	Concurrency       int
	ReconcileSchedule string // cron spec for the stats reconcile sweep
}

// SpamDenylist is the comment denylist. A matching comment is stored with
// status=spam instead of being rejected.
func SpamDenylist() []string {
	raw := getEnv("COMMENT_SPAM_DENYLIST", "casino,viagra,free money,click here")
	parts := strings.Split(raw, ",")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(strings.ToLower(p)); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "BookLib API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "booklib"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Stats: StatsConfig{
			LockTimeout:  getEnvDuration("STATS_LOCK_TIMEOUT", 3*time.Second),
			MaxRetries:   getEnvInt("STATS_LOCK_RETRIES", 3),
			RetryBackoff: getEnvDuration("STATS_RETRY_BACKOFF", 50*time.Millisecond),
			CacheTTL:     getEnvDuration("STATS_CACHE_TTL", 30*time.Second),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvInt("WORKER_CONCURRENCY", 10),
			ReconcileSchedule: getEnv("STATS_RECONCILE_SCHEDULE", "0 3 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks config consistency before startup.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}
	if c.Stats.MaxRetries < 0 {
		return fmt.Errorf("STATS_LOCK_RETRIES must not be negative")
	}
	if c.Stats.LockTimeout <= 0 {
		return fmt.Errorf("STATS_LOCK_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
