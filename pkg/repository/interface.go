package repository

import (
	"context"

	"github.com/ammar0144/crud4go/pkg/paging"
)

// Repository defines the criteria-driven CRUD contract for one entity.
// Every operation takes the acting user last and passes it, uninterpreted, to the entity hooks.
type Repository[M Model[I], C Criteria[I], I comparable, U any] interface {
	NewModel() M
	NewCriteria() C

	// Queries (Read Operations - Cache-First)
	Get(ctx context.Context, id I, user U) (M, bool, error)
	GetByIDs(ctx context.Context, ids []I, user U) ([]M, error)
	GetAll(ctx context.Context, user U) ([]M, error)
	Find(ctx context.Context, criteria C, sort paging.Sort, user U) ([]M, error)
	FindOne(ctx context.Context, criteria C, user U) (M, bool, error)
	FindPage(ctx context.Context, criteria C, pageable paging.Pageable, user U) (*paging.Page[M], error)
	FindIDs(ctx context.Context, criteria C, user U) ([]I, error)
	Count(ctx context.Context, criteria C, user U) (int64, error)
	Exists(ctx context.Context, criteria C, user U) (bool, error)
	NotExists(ctx context.Context, criteria C, user U) (bool, error)

	// Commands (Write Operations - Cache Invalidation)
	Save(ctx context.Context, model M, user U) (M, error)
	SaveAll(ctx context.Context, models []M, user U) ([]M, error)
	Update(ctx context.Context, model M, user U) (M, error)
	Patch(ctx context.Context, id I, fields map[string]any, user U) (M, error)
	Delete(ctx context.Context, id I, user U) (int64, error)
	DeleteByIDs(ctx context.Context, ids []I, user U) (int64, error)
	DeleteWhere(ctx context.Context, criteria C, user U) (int64, error)
	DirectDelete(ctx context.Context, ids []I, user U) (int64, error)

	// Cache Management
	InvalidateCache(ctx context.Context) error
}
