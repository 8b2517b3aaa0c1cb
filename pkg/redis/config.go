package redis

import (
	"fmt"
	"time"
)

// Config holds settings for the repository read cache
type Config struct {
	Enabled    bool          `json:"enabled" yaml:"enabled" envconfig:"CACHE_ENABLED" default:"false"`
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl" envconfig:"CACHE_DEFAULT_TTL" default:"5m"`
	KeyPrefix  string        `json:"key_prefix" yaml:"key_prefix" envconfig:"CACHE_KEY_PREFIX" default:"crud4go"`

	// Redis Connection
	Host     string `json:"host" yaml:"host" envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `json:"port" yaml:"port" envconfig:"REDIS_PORT" default:"6379"`
	Password string `json:"password" yaml:"password" envconfig:"REDIS_PASSWORD"`
	Database int    `json:"database" yaml:"database" envconfig:"REDIS_DATABASE" default:"0"`

	// Connection Pool
	PoolSize     int           `json:"pool_size" yaml:"pool_size" envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `json:"min_idle_conns" yaml:"min_idle_conns" envconfig:"REDIS_MIN_IDLE_CONNS" default:"3"`
	MaxConnAge   time.Duration `json:"max_conn_age" yaml:"max_conn_age" envconfig:"REDIS_MAX_CONN_AGE" default:"1h"`
	PoolTimeout  time.Duration `json:"pool_timeout" yaml:"pool_timeout" envconfig:"REDIS_POOL_TIMEOUT" default:"4s"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout" envconfig:"REDIS_IDLE_TIMEOUT" default:"5m"`

	// Performance
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout" envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`

	// Clustering (for Redis Cluster)
	Cluster ClusterConfig `json:"cluster" yaml:"cluster"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ClusterConfig for Redis Cluster setup
type ClusterConfig struct {
	Enabled   bool     `json:"enabled" yaml:"enabled" envconfig:"REDIS_CLUSTER_ENABLED" default:"false"`
	Addresses []string `json:"addresses" yaml:"addresses" envconfig:"REDIS_CLUSTER_ADDRESSES"`
	Username  string   `json:"username" yaml:"username" envconfig:"REDIS_CLUSTER_USERNAME"`
	Password  string   `json:"password" yaml:"password" envconfig:"REDIS_CLUSTER_PASSWORD"`
}

// LoggingConfig controls which cache events are logged
type LoggingConfig struct {
	LogCacheMisses   bool `json:"log_cache_misses" yaml:"log_cache_misses" envconfig:"CACHE_LOG_MISSES" default:"false"`
	LogInvalidations bool `json:"log_invalidations" yaml:"log_invalidations" envconfig:"CACHE_LOG_INVALIDATIONS" default:"true"`
}

// DefaultConfig returns a Redis configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		DefaultTTL:   5 * time.Minute,
		KeyPrefix:    "crud4go",
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxConnAge:   time.Hour,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  5 * time.Minute,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
		Logging: LoggingConfig{
			LogInvalidations: true,
		},
	}
}

// Validate checks if the Redis configuration is valid
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil // Skip validation if cache is disabled
	}

	if c.IsClusterMode() {
		if c.PoolSize < 1 {
			return fmt.Errorf("pool_size must be at least 1")
		}
	} else {
		if c.Host == "" {
			return fmt.Errorf("redis host is required when cache is enabled")
		}
		if c.Port <= 0 {
			return fmt.Errorf("redis port must be positive")
		}
	}
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("default_ttl must be positive when cache is enabled")
	}
	if c.KeyPrefix == "" {
		return fmt.Errorf("key_prefix is required when cache is enabled")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be at least 1")
	}

	return nil
}

// GetAddr returns the Redis connection address
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsClusterMode returns true if Redis cluster is enabled
func (c *Config) IsClusterMode() bool {
	return c.Cluster.Enabled && len(c.Cluster.Addresses) > 0
}
