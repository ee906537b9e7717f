// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string `env:"PORT" envDefault:"8080"`
	LogMode    string `env:"LOG_MODE" envDefault:"development"`

	// Database: sqlite (default), postgres or mysql. URL is used for
	// postgres/mysql, Path for sqlite.
	DatabaseType   string `env:"DB_TYPE" envDefault:"sqlite"`
	DatabaseURL    string `env:"DB_URL"`
	DatabasePath   string `env:"DB_PATH" envDefault:"./geoclash.db"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`

	// Session cache. An empty RedisAddr falls back to the in-process cache.
	RedisAddr  string        `env:"REDIS_ADDR"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// SessionSecret signs and verifies session tokens.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// Scheduler tuning.
	Cooldown time.Duration `env:"SCHEDULER_COOLDOWN" envDefault:"5m"`
	PackSize int           `env:"SCHEDULER_PACK_SIZE" envDefault:"10"`
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.PackSize <= 0 {
		return nil, fmt.Errorf("SCHEDULER_PACK_SIZE must be positive, got %d", cfg.PackSize)
	}
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("SCHEDULER_COOLDOWN must not be negative, got %s", cfg.Cooldown)
	}

	return cfg, nil
}
