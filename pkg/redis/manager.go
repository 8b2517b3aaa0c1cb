package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ammar0144/crud4go/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	cacheKeySeparator     = ":"
	cacheDependencyPrefix = "deps"
	scanBatchSize         = 100
)

// Manager manages Redis connections and cache operations
type Manager struct {
	config  *Config
	client  redis.UniversalClient
	metrics *Metrics
	logger  logger.Logger
}

// Option customizes a Manager
type Option func(*Manager)

// WithLogger sets the logger used for invalidation and miss events
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		m.logger = log.Component("cache")
	}
}

// NewManager creates a new Redis cache manager
func NewManager(config *Config, opts ...Option) (*Manager, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}

	manager := newManager(config, opts...)
	if config.Enabled {
		manager.client = newClient(config)
	}

	return manager, nil
}

// NewManagerWithClient wraps an existing client. The connection fields of config are ignored.
func NewManagerWithClient(client redis.UniversalClient, config *Config, opts ...Option) (*Manager, error) {
	if client == nil {
		return nil, ErrClientNotInitialized
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.DefaultTTL <= 0 {
		return nil, fmt.Errorf("invalid redis config: default_ttl must be positive")
	}

	manager := newManager(config, opts...)
	manager.client = client
	return manager, nil
}

func newManager(config *Config, opts ...Option) *Manager {
	m := &Manager{
		config:  config,
		metrics: NewMetrics(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func newClient(config *Config) redis.UniversalClient {
	if config.IsClusterMode() {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           config.Cluster.Addresses,
			Username:        config.Cluster.Username,
			Password:        config.Cluster.Password,
			PoolSize:        config.PoolSize,
			MinIdleConns:    config.MinIdleConns,
			ConnMaxLifetime: config.MaxConnAge,
			PoolTimeout:     config.PoolTimeout,
			ConnMaxIdleTime: config.IdleTimeout,
			ReadTimeout:     config.ReadTimeout,
			WriteTimeout:    config.WriteTimeout,
			DialTimeout:     config.DialTimeout,
		})
	}

	return redis.NewClient(&redis.Options{
		Addr:            config.GetAddr(),
		Password:        config.Password,
		DB:              config.Database,
		PoolSize:        config.PoolSize,
		MinIdleConns:    config.MinIdleConns,
		ConnMaxLifetime: config.MaxConnAge,
		PoolTimeout:     config.PoolTimeout,
		ConnMaxIdleTime: config.IdleTimeout,
		ReadTimeout:     config.ReadTimeout,
		WriteTimeout:    config.WriteTimeout,
		DialTimeout:     config.DialTimeout,
	})
}

// Config returns the manager's configuration
func (m *Manager) Config() *Config {
	return m.config
}

// Metrics returns the live counters of this manager
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// Enabled reports whether cache operations will reach Redis
func (m *Manager) Enabled() bool {
	return m.config.Enabled && m.client != nil
}

// Key joins parts under the configured prefix
func (m *Manager) Key(parts ...string) string {
	return strings.Join(append([]string{m.config.KeyPrefix}, parts...), cacheKeySeparator)
}

// Close closes the Redis connection
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// Ping tests the Redis connection.
// A disabled cache is not an error.
func (m *Manager) Ping(ctx context.Context) error {
	if !m.config.Enabled {
		return nil
	}
	if m.client == nil {
		return ErrClientNotInitialized
	}

	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return nil
}

func (m *Manager) checkClient() error {
	if !m.config.Enabled {
		return ErrCacheDisabled
	}
	if m.client == nil {
		return ErrClientNotInitialized
	}
	return nil
}

// Get retrieves a value from cache
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	if err := m.checkClient(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := m.client.Get(ctx, key)
	m.metrics.RecordGet(time.Since(start))

	if errors.Is(result.Err(), redis.Nil) {
		m.metrics.RecordCacheMiss()
		if m.config.Logging.LogCacheMisses {
			m.logger.Debug().Str("key", key).Msg("cache miss")
		}
		return nil, ErrKeyNotFound
	}

	if result.Err() != nil {
		m.metrics.RecordCacheError()
		return nil, fmt.Errorf("redis get error: %w", result.Err())
	}

	m.metrics.RecordCacheHit()
	return []byte(result.Val()), nil
}

// Set stores a value in cache with the default TTL
func (m *Manager) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, m.config.DefaultTTL)
}

// SetWithTTL stores a value in cache with custom TTL
func (m *Manager) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := m.checkClient(); err != nil {
		return err
	}

	start := time.Now()
	err := m.client.Set(ctx, key, value, ttl).Err()
	m.metrics.RecordSet(time.Since(start))
	if err != nil {
		m.metrics.RecordCacheError()
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// GetValue decodes a msgpack value stored under key into target
func (m *Manager) GetValue(ctx context.Context, key string, target interface{}) error {
	data, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := msgpack.Unmarshal(data, target); err != nil {
		m.metrics.RecordCacheError()
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	return nil
}

// SetValue msgpack-encodes value and stores it with the default TTL
func (m *Manager) SetValue(ctx context.Context, key string, value interface{}) error {
	if err := m.checkClient(); err != nil {
		return err
	}

	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	return m.Set(ctx, key, data)
}

// Delete removes a key from cache
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.DeleteKeys(ctx, []string{key})
}

// DeleteKeys removes multiple keys from cache.
// Keys are deleted one command each in a single pipeline, which a cluster
// client splits per slot; a multi-key DEL would fail with CROSSSLOT.
func (m *Manager) DeleteKeys(ctx context.Context, keys []string) error {
	if err := m.checkClient(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	start := time.Now()
	_, err := m.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, key)
		}
		return nil
	})
	m.metrics.RecordDelete(time.Since(start))

	return err
}

// Exists checks if a key exists in cache
func (m *Manager) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.checkClient(); err != nil {
		return false, err
	}

	n, err := m.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// InvalidatePattern removes keys matching a pattern using SCAN instead of KEYS.
// SCAN does not block the server while it walks the keyspace. In cluster mode
// every master is scanned.
func (m *Manager) InvalidatePattern(ctx context.Context, pattern string) error {
	if err := m.checkClient(); err != nil {
		return err
	}

	keys, err := m.scanKeys(ctx, pattern)
	if err != nil {
		return err
	}
	if err := m.DeleteKeys(ctx, keys); err != nil {
		return fmt.Errorf("failed to delete keys matching %s: %w", pattern, err)
	}

	m.metrics.RecordInvalidation(len(keys))
	if m.config.Logging.LogInvalidations {
		m.logger.Debug().Str("pattern", pattern).Int("keys", len(keys)).Msg("cache invalidated")
	}

	return nil
}

func (m *Manager) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	cluster, ok := m.client.(*redis.ClusterClient)
	if !ok {
		return scanNode(ctx, m.client, pattern)
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		found, err := scanNode(ctx, node, pattern)
		if err != nil {
			return err
		}
		mu.Lock()
		keys = append(keys, found...)
		mu.Unlock()
		return nil
	})
	return keys, err
}

func scanNode(ctx context.Context, client redis.Cmdable, pattern string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)

	for {
		batch, next, err := client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys with pattern %s: %w", pattern, err)
		}
		keys = append(keys, batch...)

		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// dependencyKey names the set of cached keys that read table
func (m *Manager) dependencyKey(table string) string {
	return m.Key(cacheDependencyPrefix, table)
}

// SetValueWithDependencies stores value like SetValue and registers key as
// dependent on each of tables, so InvalidateDependents on any of them drops it.
func (m *Manager) SetValueWithDependencies(ctx context.Context, key string, value interface{}, tables []string) error {
	if len(tables) == 0 {
		return m.SetValue(ctx, key, value)
	}
	if err := m.checkClient(); err != nil {
		return err
	}

	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	start := time.Now()
	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, m.config.DefaultTTL)
		for _, table := range tables {
			depKey := m.dependencyKey(table)
			pipe.SAdd(ctx, depKey, key)
			pipe.Expire(ctx, depKey, m.config.DefaultTTL*2)
		}
		return nil
	})
	m.metrics.RecordSet(time.Since(start))
	if err != nil {
		m.metrics.RecordCacheError()
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// InvalidateDependents removes every key registered as dependent on table
func (m *Manager) InvalidateDependents(ctx context.Context, table string) error {
	if err := m.checkClient(); err != nil {
		return err
	}

	depKey := m.dependencyKey(table)
	keys, err := m.client.SMembers(ctx, depKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get dependents of %s: %w", table, err)
	}

	if err := m.DeleteKeys(ctx, append(keys, depKey)); err != nil {
		return fmt.Errorf("failed to delete dependents of %s: %w", table, err)
	}

	m.metrics.RecordInvalidation(len(keys))
	if m.config.Logging.LogInvalidations {
		m.logger.Debug().Str("table", table).Int("keys", len(keys)).Msg("dependent cache invalidated")
	}

	return nil
}
