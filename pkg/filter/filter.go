package filter

// Filter constrains one field of type T.
//
// Any subset of the attributes may be set at once; the compiled predicate is
// the AND of every set attribute. A nil attribute is unset. A non-nil empty In
// slice is set and matches nothing, while an empty NotIn excludes nothing.
type Filter[T comparable] struct {
	Equals    *T    `json:"equals,omitempty" msgpack:"eq,omitempty"`
	NotEquals *T    `json:"notEquals,omitempty" msgpack:"ne,omitempty"`
	In        []T   `json:"in" msgpack:"in"`
	NotIn     []T   `json:"notIn,omitempty" msgpack:"nin,omitempty"`
	Specified *bool `json:"specified,omitempty" msgpack:"sp,omitempty"`
}

// IDFilter is the Filter applied to an entity's identifier column
type IDFilter[I comparable] = Filter[I]

// Equals returns a filter matching exactly v
func Equals[T comparable](v T) *Filter[T] {
	return new(Filter[T]).SetEquals(v)
}

// Of returns a filter matching any of values
func Of[T comparable](values ...T) *Filter[T] {
	return new(Filter[T]).SetIn(values)
}

// IDs returns an identifier filter matching any of ids
func IDs[I comparable](ids ...I) *IDFilter[I] {
	return Of(ids...)
}

func (f *Filter[T]) SetEquals(v T) *Filter[T] {
	f.Equals = &v
	return f
}

func (f *Filter[T]) SetNotEquals(v T) *Filter[T] {
	f.NotEquals = &v
	return f
}

// SetIn sets the membership set. A nil slice is stored as an empty set so the
// filter still matches nothing.
func (f *Filter[T]) SetIn(values []T) *Filter[T] {
	if values == nil {
		values = []T{}
	}
	f.In = values
	return f
}

func (f *Filter[T]) SetNotIn(values []T) *Filter[T] {
	f.NotIn = values
	return f
}

// SetSpecified requires the field to be non-null (true) or null (false)
func (f *Filter[T]) SetSpecified(specified bool) *Filter[T] {
	f.Specified = &specified
	return f
}

// Conditions implements Constraint
func (f *Filter[T]) Conditions() []Condition {
	if f == nil {
		return nil
	}

	var conds []Condition
	if f.Equals != nil {
		conds = append(conds, Condition{Operator: Equal, Value: *f.Equals})
	}
	if f.In != nil {
		conds = append(conds, Condition{Operator: In, Value: toAnySlice(f.In)})
	}
	if f.NotEquals != nil {
		conds = append(conds, Condition{Operator: NotEqual, Value: *f.NotEquals})
	}
	if len(f.NotIn) > 0 {
		conds = append(conds, Condition{Operator: NotIn, Value: toAnySlice(f.NotIn)})
	}
	if f.Specified != nil {
		if *f.Specified {
			conds = append(conds, Condition{Operator: IsNotNull})
		} else {
			conds = append(conds, Condition{Operator: IsNull})
		}
	}
	return conds
}

// IsEmpty reports whether no attribute is set
func (f *Filter[T]) IsEmpty() bool {
	return len(f.Conditions()) == 0
}
