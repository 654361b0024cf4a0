// Package config loads server settings from the environment, an optional
// .env.local file and an optional generator YAML file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/veritasos/ordem-backend/internal/db"
)

type Config struct {
	Port           string   `env:"PORT" envDefault:"5050"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBSchema    string `env:"DB_SCHEMA" envDefault:"ordem"`

	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	SeedDefaultMaster bool          `env:"SEED_DEFAULT_MASTER" envDefault:"false"`

	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"GEMINI_MODEL"`
	GeminiBaseURL    string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeneratorConfig  string        `env:"GENERATOR_CONFIG"`
	GeneratorTimeout time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"30s"`
	RatePerMinute    int           `env:"GENERATOR_RATE_PER_MINUTE" envDefault:"10"`

	// GeneratorModels comes from the GENERATOR_CONFIG file, not the environment.
	GeneratorModels []string `env:"-"`
}

// GeneratorFile is the YAML layout of GENERATOR_CONFIG.
type GeneratorFile struct {
	Models  []string `yaml:"models"`
	Timeout string   `yaml:"timeout"`
}

// Load reads .env.local when present, then the environment, then the
// generator file named by GENERATOR_CONFIG.
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[config] could not read .env.local: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case db.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres driver")
		}
	case db.DriverSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "ordem.db"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.GeneratorConfig != "" {
		if err := cfg.applyGeneratorFile(cfg.GeneratorConfig); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (c *Config) applyGeneratorFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read generator config: %w", err)
	}

	var f GeneratorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse generator config %s: %w", path, err)
	}

	c.GeneratorModels = f.Models
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("generator config timeout: %w", err)
		}
		c.GeneratorTimeout = d
	}
	return nil
}

// DBOptions maps the config onto db.Open options.
func (c *Config) DBOptions() db.Options {
	return db.Options{
		Driver: c.DBDriver,
		DSN:    c.DatabaseURL,
		Schema: c.DBSchema,
	}
}
