package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Catalog drivers
const (
	CatalogMemory = "memory"
	CatalogSQLite = "sqlite"
)

// Order stores
const (
	OrderStoreNone  = "none"
	OrderStoreRedis = "redis"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Rooms    RoomsConfig
	Catalog  CatalogConfig
	Orders   OrdersConfig
	Events   EventsConfig
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Port            string `env:"PORT" envDefault:"8080"`
	Host            string `env:"HOST" envDefault:"0.0.0.0"`
	ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"15"`
	WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"`
}

type AuthConfig struct {
	APIKeys []string `env:"API_KEYS" envDefault:"apitest" envSeparator:","` // Valid API keys for authentication
}

type RoomsConfig struct {
	Count          int    `env:"ROOM_COUNT" envDefault:"7"`
	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"$"`
}

type CatalogConfig struct {
	Driver string `env:"CATALOG_DRIVER" envDefault:"memory"`
	DSN    string `env:"CATALOG_DSN" envDefault:"file:catalog.db"`
}

type OrdersConfig struct {
	Store           string `env:"ORDER_STORE" envDefault:"none"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix  string `env:"REDIS_KEY_PREFIX" envDefault:"roomorders:"`
	CommitQueueSize int    `env:"COMMIT_QUEUE_SIZE" envDefault:"256"`
}

type EventsConfig struct {
	// Empty disables event publishing
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopicPrefix string   `env:"KAFKA_TOPIC_PREFIX" envDefault:"roomorders."`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}
	for _, key := range c.Auth.APIKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("API keys must not be blank")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.Rooms.Count < 1 {
		return fmt.Errorf("ROOM_COUNT must be at least 1, got %d", c.Rooms.Count)
	}

	switch c.Catalog.Driver {
	case CatalogMemory:
	case CatalogSQLite:
		if c.Catalog.DSN == "" {
			return fmt.Errorf("CATALOG_DSN is required for the sqlite catalog")
		}
	default:
		return fmt.Errorf("invalid catalog driver: %s (must be memory or sqlite)", c.Catalog.Driver)
	}

	switch c.Orders.Store {
	case OrderStoreNone:
	case OrderStoreRedis:
		if c.Orders.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis order store")
		}
		if c.Orders.CommitQueueSize < 1 {
			return fmt.Errorf("COMMIT_QUEUE_SIZE must be at least 1, got %d", c.Orders.CommitQueueSize)
		}
	default:
		return fmt.Errorf("invalid order store: %s (must be none or redis)", c.Orders.Store)
	}

	return nil
}

// EventsEnabled reports whether Kafka brokers are configured
func (c *Config) EventsEnabled() bool {
	return len(c.Events.KafkaBrokers) > 0
}
