// Package paging resolves abstract sort and page requests into concrete
// ordering columns and offset/limit pairs.
package paging

import (
	"gorm.io/gorm/clause"
)

// DefaultSize is used when a page request carries no size
const DefaultSize = 20

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Order is one sort term requested by a caller
type Order struct {
	Property  string    `json:"property" msgpack:"p"`
	Direction Direction `json:"direction" msgpack:"d"`
}

// Sort is an ordered list of sort terms. An empty Sort is unsorted.
type Sort []Order

// By builds a Sort from terms
func By(orders ...Order) Sort {
	return Sort(orders)
}

// Ascending sorts property in ascending order
func Ascending(property string) Order {
	return Order{Property: property, Direction: Asc}
}

// Descending sorts property in descending order
func Descending(property string) Order {
	return Order{Property: property, Direction: Desc}
}

// IsUnsorted reports whether no term was requested
func (s Sort) IsUnsorted() bool {
	return len(s) == 0
}

// Pageable describes which slice of a result set to fetch
type Pageable struct {
	Page    int  `json:"page" msgpack:"pg"`
	Size    int  `json:"size" msgpack:"sz"`
	Sort    Sort `json:"sort,omitempty" msgpack:"st,omitempty"`
	Unpaged bool `json:"unpaged,omitempty" msgpack:"up,omitempty"`
}

// Of requests zero-based page with size rows
func Of(page, size int, orders ...Order) Pageable {
	return Pageable{Page: page, Size: size, Sort: By(orders...)}
}

// Unpaged requests the complete result set, still ordered by orders
func Unpaged(orders ...Order) Pageable {
	return Pageable{Sort: By(orders...), Unpaged: true}
}

// PageSize returns the effective size, falling back to DefaultSize
func (p Pageable) PageSize() int {
	if p.Size <= 0 {
		return DefaultSize
	}
	return p.Size
}

// PageNumber returns the effective zero-based page number
func (p Pageable) PageNumber() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page
}

// Offset returns the number of rows to skip
func (p Pageable) Offset() int {
	return p.PageNumber() * p.PageSize()
}

// Limit returns the number of rows to fetch
func (p Pageable) Limit() int {
	return p.PageSize()
}

// OrderField pairs a column with the direction used when it is the default order
type OrderField struct {
	Column    clause.Column
	Direction Direction
}

// By returns the ordering column for the given direction
func (f OrderField) By(direction Direction) clause.OrderByColumn {
	return clause.OrderByColumn{Column: f.Column, Desc: direction == Desc}
}

// Default returns the ordering column in the field's default direction
func (f OrderField) Default() clause.OrderByColumn {
	return f.By(f.Direction)
}

// Resolve translates sort into ordering columns.
//
// Terms whose property is not in fields are dropped silently. When sort is
// unsorted, or nothing survives the lookup, the fallback order applies.
func Resolve(sort Sort, fields map[string]OrderField, fallback ...OrderField) []clause.OrderByColumn {
	columns := make([]clause.OrderByColumn, 0, len(sort))
	for _, o := range sort {
		field, ok := fields[o.Property]
		if !ok {
			continue
		}
		columns = append(columns, field.By(o.Direction))
	}

	if len(columns) > 0 {
		return columns
	}

	for _, f := range fallback {
		columns = append(columns, f.Default())
	}
	return columns
}
