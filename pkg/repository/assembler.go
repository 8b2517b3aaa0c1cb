package repository

import (
	"github.com/ammar0144/crud4go/pkg/filter"
	"github.com/ammar0144/crud4go/pkg/paging"
	"github.com/ammar0144/crud4go/pkg/predicate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query is an assembled read: the filtered relation and its resolved order.
// The filtered relation is a reusable session; every call derives a fresh statement.
type Query struct {
	table string
	where *gorm.DB
	order []clause.OrderByColumn
}

// Filtered returns the relation with joins and predicates applied, without projection or order
func (q *Query) Filtered() *gorm.DB {
	return q.where
}

// Ordered projects the entity table's columns in the resolved order
func (q *Query) Ordered() *gorm.DB {
	tx := q.where.Clauses(clause.Select{
		Columns: []clause.Column{{Table: q.table, Name: "*", Raw: true}},
	})
	if len(q.order) > 0 {
		tx = tx.Clauses(clause.OrderBy{Columns: q.order})
	}
	return tx
}

// Order returns the resolved ordering columns
func (q *Query) Order() []clause.OrderByColumn {
	return q.order
}

// assemble builds the read for criteria:
// table, joins, field predicates, identifier predicate, query extension, order.
func (r *GenericRepository[M, C, I, U]) assemble(tx *gorm.DB, criteria C, sort paging.Sort, user U) *Query {
	tx = tx.Table(r.desc.Table)

	if r.desc.Joins != nil {
		tx = r.desc.Joins(tx, user)
	}

	for _, f := range r.desc.Fields {
		if f.Filter == nil {
			continue
		}
		c := f.Filter(criteria)
		if filter.IsEmpty(c) {
			continue
		}
		tx = tx.Where(predicate.Compile(c, r.fieldColumn(f)))
	}

	if id := criteria.IDFilter(); !id.IsEmpty() {
		tx = tx.Where(predicate.Compile(id, r.idColumn()))
	}

	if r.desc.ExtendQuery != nil {
		tx = r.desc.ExtendQuery(tx, criteria, user)
	}

	return &Query{
		table: r.desc.Table,
		where: tx.Session(&gorm.Session{}),
		order: paging.Resolve(sort, r.sortFields, r.fallbackOrder...),
	}
}

func (r *GenericRepository[M, C, I, U]) idColumn() clause.Column {
	return predicate.Column(r.desc.Table, r.desc.IDColumn)
}

func (r *GenericRepository[M, C, I, U]) fieldColumn(f Field[C]) clause.Column {
	table := f.Table
	if table == "" {
		table = r.desc.Table
	}
	return predicate.Column(table, f.Column)
}

// buildSortFields indexes the sortable fields by name and resolves the default order
func (r *GenericRepository[M, C, I, U]) buildSortFields() error {
	id := paging.OrderField{Column: r.idColumn(), Direction: paging.Asc}

	r.sortFields = map[string]paging.OrderField{defaultIDColumn: id}
	for _, f := range r.desc.Fields {
		if f.Sortable {
			r.sortFields[f.Name] = paging.OrderField{Column: r.fieldColumn(f), Direction: paging.Asc}
		}
	}

	r.fallbackOrder = nil
	for _, o := range r.desc.DefaultSort {
		field, ok := r.sortFields[o.Property]
		if !ok {
			return configurationf("%s: default sort property %q is not sortable", r.desc.Table, o.Property)
		}
		field.Direction = o.Direction
		r.fallbackOrder = append(r.fallbackOrder, field)
	}
	if len(r.fallbackOrder) == 0 {
		r.fallbackOrder = []paging.OrderField{id}
	}

	return nil
}
