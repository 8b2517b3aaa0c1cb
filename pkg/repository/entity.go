package repository

import (
	"github.com/ammar0144/crud4go/pkg/filter"
)

// Model is the contract every persisted entity satisfies.
// Implementations are normally pointers to structs embedding Base.
type Model[I comparable] interface {
	GetID() I
	SetID(id I)
}

// Base carries the identifier of a model
type Base[I comparable] struct {
	ID I `json:"id" msgpack:"id" gorm:"column:id;primaryKey"`
}

func (b *Base[I]) GetID() I {
	return b.ID
}

func (b *Base[I]) SetID(id I) {
	b.ID = id
}

// Equal compares models by identifier alone.
// A model whose identifier is the zero value only equals itself.
func Equal[I comparable](a, b Model[I]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	var zero I
	if a.GetID() == zero || b.GetID() == zero {
		return a == b
	}
	return a.GetID() == b.GetID()
}

// Criteria is a typed selection over one entity.
// The identifier filter is always present and may be empty.
type Criteria[I comparable] interface {
	IDFilter() *filter.IDFilter[I]
}

// BaseCriteria carries the identifier filter of a criteria type
type BaseCriteria[I comparable] struct {
	ID filter.IDFilter[I] `json:"id" msgpack:"id"`
}

func (c *BaseCriteria[I]) IDFilter() *filter.IDFilter[I] {
	return &c.ID
}
