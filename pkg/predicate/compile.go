// Package predicate compiles filter constraints into GORM clause expressions
// usable inside a WHERE clause.
package predicate

import (
	"strings"

	"github.com/ammar0144/crud4go/pkg/filter"
	"gorm.io/gorm/clause"
)

// True is the always-true predicate produced for an empty constraint
var True clause.Expression = clause.Expr{SQL: "1 = 1"}

// Column returns a column reference qualified by table.
// An empty table leaves the column unqualified.
func Column(table, name string) clause.Column {
	return clause.Column{Table: table, Name: name}
}

// Compile turns every condition of c into a predicate on column and ANDs them
// together in the order the constraint reports them. An empty or nil
// constraint compiles to True.
func Compile(c filter.Constraint, column clause.Column) clause.Expression {
	if c == nil {
		return True
	}

	conds := c.Conditions()
	if len(conds) == 0 {
		return True
	}

	exprs := make([]clause.Expression, 0, len(conds))
	for _, cond := range conds {
		exprs = append(exprs, Condition(cond, column))
	}
	return And(exprs...)
}

// Condition compiles a single filter condition against column
func Condition(cond filter.Condition, column clause.Column) clause.Expression {
	switch cond.Operator {
	case filter.Equal:
		return clause.Eq{Column: column, Value: cond.Value}
	case filter.NotEqual:
		return clause.Neq{Column: column, Value: cond.Value}
	case filter.In:
		return clause.IN{Column: column, Values: values(cond.Value)}
	case filter.NotIn:
		vals := values(cond.Value)
		if len(vals) == 0 {
			return True
		}
		return clause.Not(clause.IN{Column: column, Values: vals})
	case filter.IsNull:
		return clause.Eq{Column: column, Value: nil}
	case filter.IsNotNull:
		return clause.Neq{Column: column, Value: nil}
	case filter.GreaterThan:
		return clause.Gt{Column: column, Value: cond.Value}
	case filter.GreaterThanOrEqual:
		return clause.Gte{Column: column, Value: cond.Value}
	case filter.LessThan:
		return clause.Lt{Column: column, Value: cond.Value}
	case filter.LessThanOrEqual:
		return clause.Lte{Column: column, Value: cond.Value}
	case filter.Contains:
		return like(column, "%"+escapeLike(cond.Value)+"%", false)
	case filter.DoesNotContain:
		return like(column, "%"+escapeLike(cond.Value)+"%", true)
	case filter.StartsWith:
		return like(column, escapeLike(cond.Value)+"%", false)
	case filter.EndsWith:
		return like(column, "%"+escapeLike(cond.Value), false)
	default:
		return True
	}
}

// And combines exprs with AND, skipping nil entries.
// It returns True when nothing remains and the expression itself when only one does.
func And(exprs ...clause.Expression) clause.Expression {
	kept := make([]clause.Expression, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			kept = append(kept, e)
		}
	}

	switch len(kept) {
	case 0:
		return True
	case 1:
		return kept[0]
	default:
		return clause.And(kept...)
	}
}

// likeEscape is the LIKE escape character. A backslash would need different
// quoting in MySQL and SQLite string literals.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// like matches lower-cased column values against a lower-cased pattern
func like(column clause.Column, pattern string, negate bool) clause.Expression {
	sql := "LOWER(?) LIKE ? ESCAPE '" + likeEscape + "'"
	if negate {
		sql = "LOWER(?) NOT LIKE ? ESCAPE '" + likeEscape + "'"
	}
	return clause.Expr{SQL: sql, Vars: []any{column, strings.ToLower(pattern)}}
}

// escapeLike makes wildcard characters in a filter value match literally
func escapeLike(v any) string {
	return likeEscaper.Replace(text(v))
}

func values(v any) []any {
	if vals, ok := v.([]any); ok {
		return vals
	}
	if v == nil {
		return []any{}
	}
	return []any{v}
}

func text(v any) string {
	s, _ := v.(string)
	return s
}
