package repository

import (
	"context"
	"fmt"

	"github.com/ammar0144/crud4go/pkg/redis"
	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Cached read operations, used as the operation segment of a cache key
const (
	opFind     = "find"
	opFindOne  = "find_one"
	opFindPage = "find_page"
	opCount    = "count"
)

// cacheKey derives a key from the statement q renders, the read-shape
// argument (sort or page) and the acting user. Hashing the rendered statement
// covers predicates contributed by Joins and ExtendQuery as well as fields.
// It returns "" when caching is off or the inputs cannot be encoded.
func (r *GenericRepository[M, C, I, U]) cacheKey(op string, q *Query, shape any, user U) string {
	if r.inTx || r.redis == nil || !r.redis.Enabled() {
		return ""
	}

	dry := q.Ordered().Session(&gorm.Session{
		DryRun: true,
		Logger: r.db.Logger.LogMode(gormlogger.Silent),
	}).Find(&[]M{})
	if dry.Error != nil {
		r.logger.Debug().Err(dry.Error).Str("operation", op).Msg("read not cacheable")
		return ""
	}

	data, err := msgpack.Marshal([]any{dry.Statement.SQL.String(), dry.Statement.Vars, shape, user})
	if err != nil {
		r.logger.Debug().Err(err).Str("operation", op).Msg("read not cacheable")
		return ""
	}

	// Create hash for consistent, short keys using xxhash (fast non-cryptographic hash)
	return r.redis.Key(r.desc.Table, op, fmt.Sprintf("%016x", xxhash.Sum64(data)))
}

// fromCache decodes the value under key into target. Any failure is a miss.
func (r *GenericRepository[M, C, I, U]) fromCache(ctx context.Context, key string, target any) bool {
	if key == "" {
		return false
	}

	if err := r.redis.GetValue(ctx, key, target); err != nil {
		if !redis.IsKeyNotFound(err) {
			log := r.logger.WithContext(ctx)
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	return true
}

// toCache stores value under key; failures are logged and ignored
func (r *GenericRepository[M, C, I, U]) toCache(ctx context.Context, key string, value any) {
	if key == "" {
		return
	}

	if err := r.redis.SetValueWithDependencies(ctx, key, value, r.desc.DependsOn); err != nil {
		log := r.logger.WithContext(ctx)
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate drops every cached read of this entity, and every cached read of
// other entities that declared this table in DependsOn, after a write
func (r *GenericRepository[M, C, I, U]) invalidate(ctx context.Context) {
	if err := r.InvalidateCache(ctx); err != nil {
		log := r.logger.WithContext(ctx)
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

// InvalidateCache removes every cached read of this entity and of the
// entities depending on its table
func (r *GenericRepository[M, C, I, U]) InvalidateCache(ctx context.Context) error {
	if r.redis == nil || !r.redis.Enabled() {
		return nil
	}
	if err := r.redis.InvalidatePattern(ctx, r.redis.Key(r.desc.Table, "*")); err != nil {
		return err
	}
	return r.redis.InvalidateDependents(ctx, r.desc.Table)
}
