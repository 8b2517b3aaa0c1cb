package repository

import (
	"context"
	"fmt"

	"github.com/ammar0144/crud4go/pkg/db"
	"github.com/ammar0144/crud4go/pkg/logger"
	"github.com/ammar0144/crud4go/pkg/paging"
	"github.com/ammar0144/crud4go/pkg/redis"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenericRepository runs criteria-driven CRUD against one entity table.
// It holds no mutable state after construction and is safe for concurrent use.
type GenericRepository[M Model[I], C Criteria[I], I comparable, U any] struct {
	db        *gorm.DB
	dbManager *db.Manager
	redis     *redis.Manager
	logger    logger.Logger
	desc      Descriptor[M, C, I, U]

	sortFields    map[string]paging.OrderField
	fallbackOrder []paging.OrderField

	// inTx disables cached reads; uncommitted rows must not be cached
	inTx bool
}

// Option customizes a GenericRepository
type Option func(*options)

type options struct {
	logger logger.Logger
}

// WithLogger sets the logger used for tolerated anomalies and cache failures
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// NewGenericRepository builds a repository for the entity desc describes.
// redisManager may be nil to disable the read cache.
func NewGenericRepository[M Model[I], C Criteria[I], I comparable, U any](
	dbManager *db.Manager,
	redisManager *redis.Manager,
	desc Descriptor[M, C, I, U],
	opts ...Option,
) (*GenericRepository[M, C, I, U], error) {
	if dbManager == nil || dbManager.DB() == nil {
		return nil, configurationf("database manager is required")
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}

	o := options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger.Component("repository")
	log.Logger = log.With().Str("table", desc.Table).Logger()

	r := &GenericRepository[M, C, I, U]{
		db:        dbManager.DB(),
		dbManager: dbManager,
		redis:     redisManager,
		logger:    log,
		desc:      desc,
	}
	if err := r.buildSortFields(); err != nil {
		return nil, err
	}

	return r, nil
}

// MustNewGenericRepository is NewGenericRepository for package-level wiring; it panics on error
func MustNewGenericRepository[M Model[I], C Criteria[I], I comparable, U any](
	dbManager *db.Manager,
	redisManager *redis.Manager,
	desc Descriptor[M, C, I, U],
	opts ...Option,
) *GenericRepository[M, C, I, U] {
	r, err := NewGenericRepository(dbManager, redisManager, desc, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// WithTx returns a copy whose statements run on tx.
// Reads through the copy bypass the cache. Writes invalidate it before tx
// commits, so a concurrent read may cache pre-commit rows in between; callers
// managing tx themselves should call InvalidateCache after commit, or use
// Transaction, which does.
func (r *GenericRepository[M, C, I, U]) WithTx(tx *gorm.DB) *GenericRepository[M, C, I, U] {
	clone := *r
	clone.db = tx
	clone.inTx = true
	return &clone
}

// Transaction runs fn with a copy bound to a new transaction and invalidates
// the cache once the transaction has committed
func (r *GenericRepository[M, C, I, U]) Transaction(ctx context.Context, fn func(repo *GenericRepository[M, C, I, U]) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx)
	return nil
}

// withQueryTimeout wraps a context with the configured query timeout
func (r *GenericRepository[M, C, I, U]) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout := r.dbManager.QueryTimeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}

// NewModel returns a fresh zero-valued model
func (r *GenericRepository[M, C, I, U]) NewModel() M {
	return r.desc.NewModel()
}

// NewCriteria returns a fresh criteria that matches every row
func (r *GenericRepository[M, C, I, U]) NewCriteria() C {
	return r.desc.NewCriteria()
}

// Assemble compiles criteria and sort into a reusable Query bound to ctx
func (r *GenericRepository[M, C, I, U]) Assemble(ctx context.Context, criteria C, sort paging.Sort, user U) (*Query, error) {
	if isNil(criteria) {
		return nil, preconditionf("criteria cannot be nil")
	}
	return r.assemble(r.db.WithContext(ctx), criteria, sort, user), nil
}

func (r *GenericRepository[M, C, I, U]) byIDs(ids ...I) C {
	c := r.desc.NewCriteria()
	c.IDFilter().SetIn(ids)
	return c
}

func (r *GenericRepository[M, C, I, U]) byID(id I) C {
	c := r.desc.NewCriteria()
	c.IDFilter().SetEquals(id)
	return c
}

func isZero[I comparable](id I) bool {
	var zero I
	return id == zero
}

// ============================================================================
// READ OPERATIONS - Cache-First Implementation
// ============================================================================

// Get finds the model with id. A missing row is reported as false, not as an error.
func (r *GenericRepository[M, C, I, U]) Get(ctx context.Context, id I, user U) (M, bool, error) {
	if isZero(id) {
		var zero M
		return zero, false, preconditionf("id cannot be empty")
	}
	return r.FindOne(ctx, r.byID(id), user)
}

// GetByIDs finds the models whose identifiers are in ids, ordered by identifier
func (r *GenericRepository[M, C, I, U]) GetByIDs(ctx context.Context, ids []I, user U) ([]M, error) {
	return r.Find(ctx, r.byIDs(ids...), nil, user)
}

// GetAll returns every row of the entity, subject to the query extension
func (r *GenericRepository[M, C, I, U]) GetAll(ctx context.Context, user U) ([]M, error) {
	return r.Find(ctx, r.desc.NewCriteria(), nil, user)
}

// Find returns every model matching criteria in the resolved order of sort
func (r *GenericRepository[M, C, I, U]) Find(ctx context.Context, criteria C, sort paging.Sort, user U) ([]M, error) {
	if isNil(criteria) {
		return nil, preconditionf("criteria cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	q := r.assemble(r.db.WithContext(ctx), criteria, sort, user)

	cacheKey := r.cacheKey(opFind, q, sort, user)
	var cached []M
	if r.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var rows []M
	if err := q.Ordered().Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if rows == nil {
		rows = []M{}
	}

	r.toCache(ctx, cacheKey, rows)
	return rows, nil
}

// FindOne returns the single model matching criteria.
// More than one match is ErrNotUnique.
func (r *GenericRepository[M, C, I, U]) FindOne(ctx context.Context, criteria C, user U) (M, bool, error) {
	var zero M
	if isNil(criteria) {
		return zero, false, preconditionf("criteria cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	q := r.assemble(r.db.WithContext(ctx), criteria, nil, user)

	cacheKey := r.cacheKey(opFindOne, q, nil, user)
	var cached []M
	if r.fromCache(ctx, cacheKey, &cached) && len(cached) == 1 {
		return cached[0], true, nil
	}

	var rows []M
	if err := q.Ordered().Limit(2).Find(&rows).Error; err != nil {
		return zero, false, fmt.Errorf("database error: %w", err)
	}

	switch len(rows) {
	case 0:
		return zero, false, nil
	case 1:
		r.toCache(ctx, cacheKey, rows)
		return rows[0], true, nil
	default:
		return zero, false, ErrNotUnique
	}
}

// FindPage returns one page of the models matching criteria.
//
// The count and the content run against the same assembled predicates. When
// the count is zero no content query is issued. An unpaged request skips the
// count and reports the fetched length as the total.
func (r *GenericRepository[M, C, I, U]) FindPage(ctx context.Context, criteria C, pageable paging.Pageable, user U) (*paging.Page[M], error) {
	if isNil(criteria) {
		return nil, preconditionf("criteria cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	q := r.assemble(r.db.WithContext(ctx), criteria, pageable.Sort, user)

	cacheKey := r.cacheKey(opFindPage, q, pageable, user)
	var cached paging.Page[M]
	if r.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var rows []M
	if pageable.Unpaged {
		if err := q.Ordered().Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		page := paging.NewPage(rows, pageable, int64(len(rows)))
		r.toCache(ctx, cacheKey, page)
		return page, nil
	}

	var total int64
	if err := q.Filtered().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if total > 0 {
		if err := q.Ordered().Offset(pageable.Offset()).Limit(pageable.Limit()).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	page := paging.NewPage(rows, pageable, total)
	r.toCache(ctx, cacheKey, page)
	return page, nil
}

// FindIDs returns the identifiers of the models matching criteria, ordered by identifier
func (r *GenericRepository[M, C, I, U]) FindIDs(ctx context.Context, criteria C, user U) ([]I, error) {
	if isNil(criteria) {
		return nil, preconditionf("criteria cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	return r.findIDs(r.db.WithContext(ctx), criteria, user)
}

func (r *GenericRepository[M, C, I, U]) findIDs(tx *gorm.DB, criteria C, user U) ([]I, error) {
	q := r.assemble(tx, criteria, nil, user)

	ids := []I{}
	column := r.desc.Table + "." + r.desc.IDColumn
	if err := q.Filtered().Clauses(clause.OrderBy{Columns: q.Order()}).Pluck(column, &ids).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return ids, nil
}

// Count returns the number of models matching criteria
func (r *GenericRepository[M, C, I, U]) Count(ctx context.Context, criteria C, user U) (int64, error) {
	if isNil(criteria) {
		return 0, preconditionf("criteria cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	q := r.assemble(r.db.WithContext(ctx), criteria, nil, user)

	cacheKey := r.cacheKey(opCount, q, nil, user)
	var cached int64
	if r.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var total int64
	if err := q.Filtered().Count(&total).Error; err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}

	r.toCache(ctx, cacheKey, total)
	return total, nil
}

// Exists reports whether any model matches criteria
func (r *GenericRepository[M, C, I, U]) Exists(ctx context.Context, criteria C, user U) (bool, error) {
	n, err := r.Count(ctx, criteria, user)
	return n > 0, err
}

// NotExists reports whether no model matches criteria
func (r *GenericRepository[M, C, I, U]) NotExists(ctx context.Context, criteria C, user U) (bool, error) {
	n, err := r.Count(ctx, criteria, user)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// ============================================================================
// WRITE OPERATIONS - Cache Invalidation Implementation
// ============================================================================

// Save inserts model and returns it with its identifier assigned
func (r *GenericRepository[M, C, I, U]) Save(ctx context.Context, model M, user U) (M, error) {
	if isNil(model) {
		var zero M
		return zero, preconditionf("model cannot be nil")
	}

	saved, err := r.SaveAll(ctx, []M{model}, user)
	if err != nil {
		var zero M
		return zero, err
	}
	return saved[0], nil
}

// SaveAll inserts models in one batched statement, in input order.
//
// An empty batch is returned unchanged without touching the store. A reported
// row count different from the batch size is logged, not returned: some
// drivers under-report batched inserts.
func (r *GenericRepository[M, C, I, U]) SaveAll(ctx context.Context, models []M, user U) ([]M, error) {
	if len(models) == 0 {
		return models, nil
	}

	rows := make([]map[string]any, 0, len(models))
	for i, model := range models {
		if isNil(model) {
			return nil, preconditionf("model %d cannot be nil", i)
		}

		row := r.fillClause(Clause{}, model, user)
		if err := r.desc.SetIdentifier(ctx, model, user); err != nil {
			return nil, fmt.Errorf("assign identifier: %w", err)
		}
		if isZero(model.GetID()) {
			return nil, invariantf("model %d has no identifier after assignment", i)
		}
		row[r.desc.IDColumn] = model.GetID()

		rows = append(rows, map[string]any(row))
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Table(r.desc.Table).Create(rows)
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	if result.RowsAffected != int64(len(models)) {
		log := r.logger.WithContext(ctx)
		log.Warn().
			Int("expected", len(models)).
			Int64("affected", result.RowsAffected).
			Msg("batch insert affected an unexpected number of rows")
	}

	r.invalidate(ctx)
	return models, nil
}

// Update overwrites the row of model with its mapped columns.
// Exactly one row must be affected.
func (r *GenericRepository[M, C, I, U]) Update(ctx context.Context, model M, user U) (M, error) {
	var zero M
	if isNil(model) {
		return zero, preconditionf("model cannot be nil")
	}
	if isZero(model.GetID()) {
		return zero, preconditionf("model id cannot be empty")
	}

	set := r.fillClause(Clause{}, model, user)
	delete(set, r.desc.IDColumn)
	if len(set) == 0 {
		return zero, preconditionf("no column to update")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	if err := r.updateOne(ctx, model.GetID(), set); err != nil {
		return zero, err
	}

	r.invalidate(ctx)
	return model, nil
}

// Patch sets only the declared columns whose field names appear in fields and
// returns the row re-read by id. Exactly one row must be affected.
func (r *GenericRepository[M, C, I, U]) Patch(ctx context.Context, id I, fields map[string]any, user U) (M, error) {
	var zero M
	if isZero(id) {
		return zero, preconditionf("id cannot be empty")
	}

	set := Clause{}
	for _, column := range r.desc.Columns {
		if value, ok := fields[column.Field]; ok {
			set[column.Name] = value
		}
	}
	if len(set) == 0 {
		return zero, preconditionf("no declared column in patch")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	if err := r.updateOne(ctx, id, set); err != nil {
		return zero, err
	}
	r.invalidate(ctx)

	model, ok, err := r.FindOne(ctx, r.byID(id), user)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, invariantf("%s %v patched but not readable", r.desc.Table, id)
	}
	return model, nil
}

func (r *GenericRepository[M, C, I, U]) updateOne(ctx context.Context, id I, set Clause) error {
	result := r.db.WithContext(ctx).
		Table(r.desc.Table).
		Where(clause.Eq{Column: r.idColumn(), Value: id}).
		Updates(map[string]any(set))
	if result.Error != nil {
		return fmt.Errorf("database error: %w", result.Error)
	}

	if result.RowsAffected != 1 {
		return invariantf("expected to update one %s row, %d updated", r.desc.Table, result.RowsAffected)
	}
	return nil
}

// Delete removes the model with id and returns the number of rows removed
func (r *GenericRepository[M, C, I, U]) Delete(ctx context.Context, id I, user U) (int64, error) {
	if isZero(id) {
		return 0, preconditionf("id cannot be empty")
	}
	return r.DeleteWhere(ctx, r.byIDs(id), user)
}

// DeleteByIDs removes the models whose identifiers are in ids.
// An empty list removes nothing.
func (r *GenericRepository[M, C, I, U]) DeleteByIDs(ctx context.Context, ids []I, user U) (int64, error) {
	return r.DeleteWhere(ctx, r.byIDs(ids...), user)
}

// DeleteWhere resolves criteria to identifiers and removes those rows.
// Nothing matching is not an error.
func (r *GenericRepository[M, C, I, U]) DeleteWhere(ctx context.Context, criteria C, user U) (int64, error) {
	if isNil(criteria) {
		return 0, preconditionf("criteria cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	ids, err := r.findIDs(r.db.WithContext(ctx), criteria, user)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	return r.deleteIDs(ctx, ids)
}

// DirectDelete removes rows by identifier without resolving criteria.
// ids must not be empty.
func (r *GenericRepository[M, C, I, U]) DirectDelete(ctx context.Context, ids []I, user U) (int64, error) {
	if len(ids) == 0 {
		return 0, preconditionf("ids cannot be empty")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	return r.deleteIDs(ctx, ids)
}

func (r *GenericRepository[M, C, I, U]) deleteIDs(ctx context.Context, ids []I) (int64, error) {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	result := r.db.WithContext(ctx).Exec("DELETE FROM ? WHERE ?",
		clause.Table{Name: r.desc.Table},
		clause.IN{Column: clause.Column{Name: r.desc.IDColumn}, Values: values},
	)
	if result.Error != nil {
		return 0, fmt.Errorf("database error: %w", result.Error)
	}

	r.invalidate(ctx)
	return result.RowsAffected, nil
}

// fillClause applies the entity mapping, then the write extension
func (r *GenericRepository[M, C, I, U]) fillClause(c Clause, model M, user U) Clause {
	r.desc.ToClause(c, model, user)
	if r.desc.ExtendClause != nil {
		r.desc.ExtendClause(c, model, user)
	}
	return c
}
