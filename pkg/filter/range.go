package filter

// RangeFilter adds bound comparisons to Filter[T].
//
// T only needs to be comparable in Go; ordering is evaluated by the store,
// which lets time.Time ranges use the same filter. Bounds are ANDed with the
// base attributes even when Equals or In is also set.
type RangeFilter[T comparable] struct {
	Filter[T]
	GreaterThan        *T `json:"greaterThan,omitempty" msgpack:"gt,omitempty"`
	GreaterThanOrEqual *T `json:"greaterThanOrEqual,omitempty" msgpack:"gte,omitempty"`
	LessThan           *T `json:"lessThan,omitempty" msgpack:"lt,omitempty"`
	LessThanOrEqual    *T `json:"lessThanOrEqual,omitempty" msgpack:"lte,omitempty"`
}

// Between returns a filter matching the closed interval [from, to]
func Between[T comparable](from, to T) *RangeFilter[T] {
	return new(RangeFilter[T]).SetGreaterThanOrEqual(from).SetLessThanOrEqual(to)
}

func (f *RangeFilter[T]) SetGreaterThan(v T) *RangeFilter[T] {
	f.GreaterThan = &v
	return f
}

func (f *RangeFilter[T]) SetGreaterThanOrEqual(v T) *RangeFilter[T] {
	f.GreaterThanOrEqual = &v
	return f
}

func (f *RangeFilter[T]) SetLessThan(v T) *RangeFilter[T] {
	f.LessThan = &v
	return f
}

func (f *RangeFilter[T]) SetLessThanOrEqual(v T) *RangeFilter[T] {
	f.LessThanOrEqual = &v
	return f
}

// Conditions implements Constraint
func (f *RangeFilter[T]) Conditions() []Condition {
	if f == nil {
		return nil
	}

	conds := f.Filter.Conditions()
	if f.GreaterThan != nil {
		conds = append(conds, Condition{Operator: GreaterThan, Value: *f.GreaterThan})
	}
	if f.GreaterThanOrEqual != nil {
		conds = append(conds, Condition{Operator: GreaterThanOrEqual, Value: *f.GreaterThanOrEqual})
	}
	if f.LessThan != nil {
		conds = append(conds, Condition{Operator: LessThan, Value: *f.LessThan})
	}
	if f.LessThanOrEqual != nil {
		conds = append(conds, Condition{Operator: LessThanOrEqual, Value: *f.LessThanOrEqual})
	}
	return conds
}

func (f *RangeFilter[T]) IsEmpty() bool {
	return len(f.Conditions()) == 0
}
