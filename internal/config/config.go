package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Events  EventsConfig  `mapstructure:"events"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`             // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort        int           `mapstructure:"http_port"`        // HTTP server port
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // Grace period for in-flight requests on shutdown
}

// StoreConfig represents the upstream series store configuration
type StoreConfig struct {
	BaseURL              string        `mapstructure:"base_url"`               // Base URL of the series store API
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`        // Per-request timeout for upstream calls
	MaxConcurrentFetches int           `mapstructure:"max_concurrent_fetches"` // Bound on parallel per-realization fetches
}

// CacheConfig represents the redis series cache configuration
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`      // Redis URL (e.g., redis://localhost:6379)
	Password  string        `mapstructure:"password"` // Optional authentication
	DB        int           `mapstructure:"db"`       // Redis database number (default: 0)
	TTL       time.Duration `mapstructure:"ttl"`      // Entry lifetime
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// EventsConfig represents the ensemble-update event subscription
type EventsConfig struct {
	Type    string   `mapstructure:"type"`    // Backend: none (default), nats, kafka, memory
	URL     string   `mapstructure:"url"`     // NATS server URL
	Brokers []string `mapstructure:"brokers"` // Kafka broker addresses
	GroupID string   `mapstructure:"group_id"`
	Subject string   `mapstructure:"subject"` // Subject/topic carrying ensemble.updated events
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json or console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr or a file path
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 1 and 65535, got %d", c.Server.HTTPPort)
	}
	if c.Store.BaseURL == "" {
		return fmt.Errorf("store.base_url is required")
	}
	if c.Store.MaxConcurrentFetches <= 0 {
		return fmt.Errorf("store.max_concurrent_fetches must be positive, got %d", c.Store.MaxConcurrentFetches)
	}
	if c.Cache.Enabled && c.Cache.URL == "" {
		return fmt.Errorf("cache.url is required when the cache is enabled")
	}
	switch c.Events.Type {
	case "", "none", "nats", "kafka", "memory":
	default:
		return fmt.Errorf("events.type must be one of: none, nats, kafka, memory; got %q", c.Events.Type)
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("auth.api_keys must not be empty when auth is enabled")
	}
	return nil
}
