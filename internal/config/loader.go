package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/webviz")
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("WEBVIZ")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 5000)
	v.SetDefault("server.shutdown_timeout", "10s")

	// Series store defaults
	v.SetDefault("store.base_url", "http://localhost:8080")
	v.SetDefault("store.request_timeout", "30s")
	v.SetDefault("store.max_concurrent_fetches", 16)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.url", "redis://localhost:6379")
	v.SetDefault("cache.ttl", "15m")
	v.SetDefault("cache.key_prefix", "webviz")

	// Events defaults
	v.SetDefault("events.type", "none")
	v.SetDefault("events.url", "nats://localhost:4222")
	v.SetDefault("events.subject", "ensemble.updated")
	v.SetDefault("events.group_id", "webviz-api")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        5000,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			BaseURL:              "http://localhost:8080",
			RequestTimeout:       30 * time.Second,
			MaxConcurrentFetches: 16,
		},
		Cache: CacheConfig{
			URL:       "redis://localhost:6379",
			TTL:       15 * time.Minute,
			KeyPrefix: "webviz",
		},
		Events: EventsConfig{
			Type:    "none",
			URL:     "nats://localhost:4222",
			Subject: "ensemble.updated",
			GroupID: "webviz-api",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
