// Package crud4go provides criteria-driven CRUD repositories over GORM
// with an optional Redis read cache.
package crud4go

import (
	"github.com/ammar0144/crud4go/pkg/db"
	"github.com/ammar0144/crud4go/pkg/filter"
	"github.com/ammar0144/crud4go/pkg/paging"
	"github.com/ammar0144/crud4go/pkg/redis"
	"github.com/ammar0144/crud4go/pkg/repository"
)

// Config represents database configuration
type Config = db.Config

// RedisConfig represents Redis configuration
type RedisConfig = redis.Config

// Model is the contract every persisted entity satisfies
type Model[I comparable] = repository.Model[I]

// Criteria is a typed selection over one entity
type Criteria[I comparable] = repository.Criteria[I]

// Descriptor declares the table, columns, fields and hooks of one entity
type Descriptor[M Model[I], C Criteria[I], I comparable, U any] = repository.Descriptor[M, C, I, U]

// Repository provides the generic repository interface
type Repository[M Model[I], C Criteria[I], I comparable, U any] interface {
	repository.Repository[M, C, I, U]
}

// Filter kinds usable as criteria attributes
type (
	Filter[T comparable]      = filter.Filter[T]
	StringFilter              = filter.StringFilter
	RangeFilter[T comparable] = filter.RangeFilter[T]
	IDFilter[I comparable]    = filter.IDFilter[I]
)

// Sort and page requests
type (
	Sort        = paging.Sort
	Pageable    = paging.Pageable
	Page[T any] = paging.Page[T]
)

// NewManager creates a new database manager
func NewManager(config *Config) (*db.Manager, error) {
	return db.NewManager(config)
}

// NewRedisManager creates a new Redis manager
func NewRedisManager(config *RedisConfig) (*redis.Manager, error) {
	return redis.NewManager(config)
}

// NewRepository creates a repository for the entity desc describes.
// If redisManager is nil, operates in database-only mode.
func NewRepository[M Model[I], C Criteria[I], I comparable, U any](
	dbManager *db.Manager,
	redisManager *redis.Manager,
	desc Descriptor[M, C, I, U],
	opts ...repository.Option,
) (Repository[M, C, I, U], error) {
	r, err := repository.NewGenericRepository(dbManager, redisManager, desc, opts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}
