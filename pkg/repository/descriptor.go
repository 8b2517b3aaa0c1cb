package repository

import (
	"context"
	"reflect"

	"github.com/ammar0144/crud4go/pkg/filter"
	"github.com/ammar0144/crud4go/pkg/paging"
	"gorm.io/gorm"
)

const defaultIDColumn = "id"

// Clause collects column assignments for one INSERT row or UPDATE statement
type Clause map[string]any

// Set assigns value to column
func (c Clause) Set(column string, value any) Clause {
	c[column] = value
	return c
}

// Has reports whether column is assigned
func (c Clause) Has(column string) bool {
	_, ok := c[column]
	return ok
}

// Column maps a model field name to its backing column
type Column struct {
	Field string
	Name  string
}

// Field binds one criteria attribute to the column it constrains
type Field[C any] struct {
	// Name is the property callers use in sort terms
	Name string
	// Table qualifies Column; empty means the entity table
	Table  string
	Column string
	// Filter returns the constraint for this field; nil makes the field sort-only
	Filter func(criteria C) filter.Constraint
	// Sortable exposes the field to sort terms
	Sortable bool
}

// Descriptor declares everything the engine needs to know about one entity.
//
// Joins, ExtendQuery and ExtendClause are optional; a nil hook is a no-op.
type Descriptor[M Model[I], C Criteria[I], I comparable, U any] struct {
	Table    string
	IDColumn string

	// Columns are the writable columns a Patch may touch
	Columns []Column
	Fields  []Field[C]

	// DependsOn names other tables whose writes change this entity's reads,
	// such as tables reached through Joins or ExtendQuery. Cached reads are
	// dropped when a repository over one of them writes.
	DependsOn []string

	// DefaultSort applies when a read requests no usable order.
	// Empty means ascending by identifier.
	DefaultSort paging.Sort

	NewModel    func() M
	NewCriteria func() C

	// ToClause maps a model to its column assignments
	ToClause func(clause Clause, model M, user U)
	// SetIdentifier must leave the model with a non-zero identifier before insert
	SetIdentifier func(ctx context.Context, model M, user U) error

	Joins        func(tx *gorm.DB, user U) *gorm.DB
	ExtendQuery  func(tx *gorm.DB, criteria C, user U) *gorm.DB
	ExtendClause func(clause Clause, model M, user U)
}

func (d *Descriptor[M, C, I, U]) validate() error {
	if d.Table == "" {
		return configurationf("table is required")
	}
	if d.IDColumn == "" {
		d.IDColumn = defaultIDColumn
	}
	if d.NewModel == nil {
		return configurationf("%s: NewModel is required", d.Table)
	}
	if d.NewCriteria == nil {
		return configurationf("%s: NewCriteria is required", d.Table)
	}
	if d.ToClause == nil {
		return configurationf("%s: ToClause is required", d.Table)
	}
	if d.SetIdentifier == nil {
		return configurationf("%s: SetIdentifier is required", d.Table)
	}

	if isNil(d.NewModel()) {
		return configurationf("%s: NewModel returned nil", d.Table)
	}
	if isNil(d.NewCriteria()) {
		return configurationf("%s: NewCriteria returned nil", d.Table)
	}

	names := map[string]struct{}{}
	for _, f := range d.Fields {
		if f.Name == "" || f.Column == "" {
			return configurationf("%s: field needs a name and a column", d.Table)
		}
		if _, dup := names[f.Name]; dup {
			return configurationf("%s: duplicate field %q", d.Table, f.Name)
		}
		names[f.Name] = struct{}{}
	}

	for _, table := range d.DependsOn {
		if table == "" || table == d.Table {
			return configurationf("%s: dependency must name another table", d.Table)
		}
	}

	columns := map[string]struct{}{}
	for _, c := range d.Columns {
		if c.Field == "" || c.Name == "" {
			return configurationf("%s: column needs a field name and a column name", d.Table)
		}
		if _, dup := columns[c.Field]; dup {
			return configurationf("%s: duplicate column %q", d.Table, c.Field)
		}
		columns[c.Field] = struct{}{}
	}

	return nil
}

// isNil treats typed nil pointers, maps and interfaces as nil
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
