package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/romindigital/ikirezi-bookstore-sub002/pkg/config"
	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/database"
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CATALOG_HTTP_PORT" envDefault:"8020"`

	// Redis (recent searches, preferences)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Recent-search log retention
	RecentSearchTTL time.Duration `env:"RECENT_SEARCH_TTL" envDefault:"720h"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// AnalyticsEnabled toggles search.performed event publishing.
	AnalyticsEnabled bool `env:"ANALYTICS_ENABLED" envDefault:"true"`

	// PopularSearches is the curated fallback list for the suggestion panel.
	PopularSearches []string `env:"POPULAR_SEARCHES" envDefault:"bestsellers,new releases,award winners" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.RedisPort < 1 || c.RedisPort > 65535 {
		return fmt.Errorf("invalid Redis port: %d", c.RedisPort)
	}
	if c.RecentSearchTTL <= 0 {
		return fmt.Errorf("recent search TTL must be positive: %s", c.RecentSearchTTL)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("at least one Kafka broker is required")
	}
	return nil
}
