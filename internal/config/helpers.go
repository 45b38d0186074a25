package config

import "fmt"

// ServerAddress returns the HTTP listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// CacheKey builds a namespaced cache key from parts
func (c *CacheConfig) CacheKey(parts ...interface{}) string {
	key := c.KeyPrefix
	if key == "" {
		key = "webviz"
	}
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}
