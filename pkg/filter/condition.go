// Package filter provides typed, per-field constraint values that a repository
// compiles into query predicates.
//
// Every filter reports its constraints as an ordered list of Conditions. The
// list is always in the same canonical order (equals, in, notEquals, notIn,
// specified, then the string or range extras) so compiled predicates are
// stable and easy to assert on.
package filter

// Operator identifies a single sub-condition of a filter
type Operator string

const (
	Equal              Operator = "="
	NotEqual           Operator = "!="
	In                 Operator = "IN"
	NotIn              Operator = "NOT IN"
	IsNull             Operator = "IS NULL"
	IsNotNull          Operator = "IS NOT NULL"
	GreaterThan        Operator = ">"
	GreaterThanOrEqual Operator = ">="
	LessThan           Operator = "<"
	LessThanOrEqual    Operator = "<="
	Contains           Operator = "CONTAINS"
	DoesNotContain     Operator = "NOT CONTAINS"
	StartsWith         Operator = "STARTS WITH"
	EndsWith           Operator = "ENDS WITH"
)

// Condition is one sub-condition of a filter.
// For In and NotIn the Value is a []any holding the set members.
// For IsNull and IsNotNull the Value is nil.
type Condition struct {
	Operator Operator
	Value    any
}

// Constraint is implemented by every filter kind
type Constraint interface {
	Conditions() []Condition
}

// IsEmpty reports whether c carries no condition at all.
// A nil Constraint is empty.
func IsEmpty(c Constraint) bool {
	if c == nil {
		return true
	}
	return len(c.Conditions()) == 0
}

func toAnySlice[T any](values []T) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
