package query

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// operators every basic and column where accepts, across all shipped
// dialects. Validation happens at construction so a typo'd operator never
// reaches the compiled statement.
var operators = map[string]struct{}{
	"=": {}, "<": {}, ">": {}, "<=": {}, ">=": {}, "<>": {}, "!=": {}, "<=>": {},
	"like": {}, "like binary": {}, "not like": {}, "ilike": {}, "not ilike": {},
	"&": {}, "|": {}, "^": {}, "<<": {}, ">>": {},
	"rlike": {}, "not rlike": {}, "regexp": {}, "not regexp": {},
	"~": {}, "~*": {}, "!~": {}, "!~*": {}, "~~*": {}, "!~~*": {},
	"similar to": {}, "not similar to": {},
}

func validOperator(operator string) bool {
	_, ok := operators[strings.ToLower(operator)]
	return ok
}

// Where adds a basic predicate joined with "and". A nil value turns the
// predicate into an is-null check ("=" operator) or an is-not-null check
// (any other operator). A func(*Builder) or *Builder value compares the
// column against a sub-select.
func (b *Builder) Where(column any, operator string, value any) *Builder {
	return b.where(column, operator, value, boolAnd)
}

// OrWhere adds a basic predicate joined with "or".
func (b *Builder) OrWhere(column any, operator string, value any) *Builder {
	return b.where(column, operator, value, boolOr)
}

func (b *Builder) where(column any, operator string, value any, boolean string) *Builder {
	if !validOperator(operator) {
		b.recordErr(fmt.Errorf("%w: operator %q", ErrInvalidArgument, operator))
		return b
	}
	switch v := value.(type) {
	case nil:
		return b.whereNull(column, boolean, strings.ToLower(operator) != "=")
	case func(*Builder):
		sub := b.forSubQuery()
		v(sub)
		return b.whereSub(column, operator, sub, boolean)
	case *Builder:
		return b.whereSub(column, operator, v, boolean)
	}
	b.wheres = append(b.wheres, Where{
		Kind:     WhereBasic,
		Column:   column,
		Operator: operator,
		Value:    value,
		Boolean:  boolean,
	})
	if !IsExpression(value) {
		b.AddBinding(BindingWhere, value)
	}
	return b
}

// WhereFunc groups the predicates added by fn into a parenthesized nested
// tree joined with "and".
func (b *Builder) WhereFunc(fn func(*Builder)) *Builder {
	return b.whereNested(fn, boolAnd)
}

// OrWhereFunc groups the predicates added by fn, joined with "or".
func (b *Builder) OrWhereFunc(fn func(*Builder)) *Builder {
	return b.whereNested(fn, boolOr)
}

func (b *Builder) whereNested(fn func(*Builder), boolean string) *Builder {
	nested := b.forNestedWhere()
	fn(nested)
	return b.addNestedWhere(nested, boolean)
}

// addNestedWhere attaches an already built builder as a nested group. A
// builder without predicates vanishes rather than compiling to "()".
func (b *Builder) addNestedWhere(nested *Builder, boolean string) *Builder {
	if len(nested.wheres) == 0 {
		return b
	}
	b.wheres = append(b.wheres, Where{Kind: WhereNested, Query: nested, Boolean: boolean})
	b.errs = append(b.errs, nested.errs...)
	return b.AddBinding(BindingWhere, nested.bindings[BindingWhere]...)
}

func (b *Builder) whereSub(column any, operator string, sub *Builder, boolean string) *Builder {
	b.wheres = append(b.wheres, Where{
		Kind:     WhereSub,
		Column:   column,
		Operator: operator,
		Query:    sub,
		Boolean:  boolean,
	})
	b.errs = append(b.errs, sub.errs...)
	return b.AddBinding(BindingWhere, sub.Bindings()...)
}

// WhereRaw adds a verbatim predicate with its bindings, joined with "and".
func (b *Builder) WhereRaw(sql string, bindings ...any) *Builder {
	return b.whereRaw(sql, bindings, boolAnd)
}

// OrWhereRaw adds a verbatim predicate joined with "or".
func (b *Builder) OrWhereRaw(sql string, bindings ...any) *Builder {
	return b.whereRaw(sql, bindings, boolOr)
}

func (b *Builder) whereRaw(sql string, bindings []any, boolean string) *Builder {
	b.wheres = append(b.wheres, Where{Kind: WhereRaw, SQL: sql, Boolean: boolean})
	return b.AddBinding(BindingWhere, bindings...)
}

// WhereIn constrains the column to the given set. An empty set compiles to
// the always-false predicate "0 = 1".
func (b *Builder) WhereIn(column any, values ...any) *Builder {
	return b.whereIn(column, values, boolAnd, false)
}

// OrWhereIn is WhereIn joined with "or".
func (b *Builder) OrWhereIn(column any, values ...any) *Builder {
	return b.whereIn(column, values, boolOr, false)
}

// WhereNotIn excludes the given set. An empty set compiles to the
// always-true predicate "1 = 1".
func (b *Builder) WhereNotIn(column any, values ...any) *Builder {
	return b.whereIn(column, values, boolAnd, true)
}

// OrWhereNotIn is WhereNotIn joined with "or".
func (b *Builder) OrWhereNotIn(column any, values ...any) *Builder {
	return b.whereIn(column, values, boolOr, true)
}

func (b *Builder) whereIn(column any, values []any, boolean string, not bool) *Builder {
	kind := WhereIn
	if not {
		kind = WhereNotIn
	}
	b.wheres = append(b.wheres, Where{
		Kind:    kind,
		Column:  column,
		Values:  values,
		Boolean: boolean,
	})
	return b.AddBinding(BindingWhere, values...)
}

// WhereIntegerInRaw constrains the column to a list of integers that are
// inlined into the SQL text instead of bound. Only use it for values the
// caller already validated; it exists for the huge-list case where one
// placeholder per element is too expensive.
func (b *Builder) WhereIntegerInRaw(column any, values []int) *Builder {
	return b.whereIntegerInRaw(column, values, false)
}

// WhereIntegerNotInRaw is the negated form of WhereIntegerInRaw.
func (b *Builder) WhereIntegerNotInRaw(column any, values []int) *Builder {
	return b.whereIntegerInRaw(column, values, true)
}

func (b *Builder) whereIntegerInRaw(column any, values []int, not bool) *Builder {
	kind := WhereInRaw
	if not {
		kind = WhereNotInRaw
	}
	b.wheres = append(b.wheres, Where{
		Kind:    kind,
		Column:  column,
		IntList: values,
		Boolean: boolAnd,
	})
	return b
}

// WhereNull adds an is-null predicate per column.
func (b *Builder) WhereNull(columns ...any) *Builder {
	for _, column := range columns {
		b.whereNull(column, boolAnd, false)
	}
	return b
}

// OrWhereNull adds an is-null predicate joined with "or".
func (b *Builder) OrWhereNull(column any) *Builder {
	return b.whereNull(column, boolOr, false)
}

// WhereNotNull adds an is-not-null predicate per column.
func (b *Builder) WhereNotNull(columns ...any) *Builder {
	for _, column := range columns {
		b.whereNull(column, boolAnd, true)
	}
	return b
}

// OrWhereNotNull adds an is-not-null predicate joined with "or".
func (b *Builder) OrWhereNotNull(column any) *Builder {
	return b.whereNull(column, boolOr, true)
}

func (b *Builder) whereNull(column any, boolean string, not bool) *Builder {
	kind := WhereNull
	if not {
		kind = WhereNotNull
	}
	b.wheres = append(b.wheres, Where{Kind: kind, Column: column, Boolean: boolean})
	return b
}

// WhereBetween constrains the column to the inclusive min..max range.
func (b *Builder) WhereBetween(column any, min, max any) *Builder {
	return b.whereBetween(column, min, max, boolAnd, false)
}

// OrWhereBetween is WhereBetween joined with "or".
func (b *Builder) OrWhereBetween(column any, min, max any) *Builder {
	return b.whereBetween(column, min, max, boolOr, false)
}

// WhereNotBetween excludes the inclusive min..max range.
func (b *Builder) WhereNotBetween(column any, min, max any) *Builder {
	return b.whereBetween(column, min, max, boolAnd, true)
}

// OrWhereNotBetween is WhereNotBetween joined with "or".
func (b *Builder) OrWhereNotBetween(column any, min, max any) *Builder {
	return b.whereBetween(column, min, max, boolOr, true)
}

func (b *Builder) whereBetween(column any, min, max any, boolean string, not bool) *Builder {
	b.wheres = append(b.wheres, Where{
		Kind:    WhereBetween,
		Column:  column,
		Values:  []any{min, max},
		Not:     not,
		Boolean: boolean,
	})
	return b.AddBinding(BindingWhere, min, max)
}

// WhereColumn compares two columns; nothing is bound.
func (b *Builder) WhereColumn(first any, operator string, second any) *Builder {
	return b.whereColumn(first, operator, second, boolAnd)
}

// OrWhereColumn is WhereColumn joined with "or".
func (b *Builder) OrWhereColumn(first any, operator string, second any) *Builder {
	return b.whereColumn(first, operator, second, boolOr)
}

func (b *Builder) whereColumn(first any, operator string, second any, boolean string) *Builder {
	if !validOperator(operator) {
		b.recordErr(fmt.Errorf("%w: operator %q", ErrInvalidArgument, operator))
		return b
	}
	b.wheres = append(b.wheres, Where{
		Kind:     WhereColumn,
		First:    first,
		Operator: operator,
		Second:   second,
		Boolean:  boolean,
	})
	return b
}

// WhereDate compares the date part of a column. time.Time values are
// formatted to the part's canonical shape before binding.
func (b *Builder) WhereDate(column any, operator string, value any) *Builder {
	return b.whereDateBased(DatePartDate, column, operator, value, boolAnd)
}

// WhereTime compares the time-of-day part of a column.
func (b *Builder) WhereTime(column any, operator string, value any) *Builder {
	return b.whereDateBased(DatePartTime, column, operator, value, boolAnd)
}

// WhereDay compares the day-of-month part of a column.
func (b *Builder) WhereDay(column any, operator string, value any) *Builder {
	return b.whereDateBased(DatePartDay, column, operator, value, boolAnd)
}

// WhereMonth compares the month part of a column.
func (b *Builder) WhereMonth(column any, operator string, value any) *Builder {
	return b.whereDateBased(DatePartMonth, column, operator, value, boolAnd)
}

// WhereYear compares the year part of a column.
func (b *Builder) WhereYear(column any, operator string, value any) *Builder {
	return b.whereDateBased(DatePartYear, column, operator, value, boolAnd)
}

// OrWhereDate is WhereDate joined with "or".
func (b *Builder) OrWhereDate(column any, operator string, value any) *Builder {
	return b.whereDateBased(DatePartDate, column, operator, value, boolOr)
}

// OrWhereYear is WhereYear joined with "or".
func (b *Builder) OrWhereYear(column any, operator string, value any) *Builder {
	return b.whereDateBased(DatePartYear, column, operator, value, boolOr)
}

func (b *Builder) whereDateBased(part string, column any, operator string, value any, boolean string) *Builder {
	if !validOperator(operator) {
		b.recordErr(fmt.Errorf("%w: operator %q", ErrInvalidArgument, operator))
		return b
	}
	value = normalizeDateValue(part, value)
	b.wheres = append(b.wheres, Where{
		Kind:     WhereDateBased,
		Part:     part,
		Column:   column,
		Operator: operator,
		Value:    value,
		Boolean:  boolean,
	})
	if !IsExpression(value) {
		b.AddBinding(BindingWhere, value)
	}
	return b
}

// normalizeDateValue shapes the bound value so that string-returning date
// functions (strftime and friends) compare equal: dates as 2006-01-02,
// times as 15:04:05, day and month zero-padded to two digits.
func normalizeDateValue(part string, value any) any {
	if t, ok := value.(time.Time); ok {
		switch part {
		case DatePartDate:
			return t.Format("2006-01-02")
		case DatePartTime:
			return t.Format("15:04:05")
		case DatePartDay:
			return t.Format("02")
		case DatePartMonth:
			return t.Format("01")
		case DatePartYear:
			return t.Format("2006")
		}
	}
	if n, ok := value.(int); ok {
		switch part {
		case DatePartDay, DatePartMonth:
			return fmt.Sprintf("%02d", n)
		}
	}
	return value
}

// WhereSub compares the column against the sub-select built by fn.
func (b *Builder) WhereSub(column any, operator string, fn func(*Builder)) *Builder {
	if !validOperator(operator) {
		b.recordErr(fmt.Errorf("%w: operator %q", ErrInvalidArgument, operator))
		return b
	}
	sub := b.forSubQuery()
	fn(sub)
	return b.whereSub(column, operator, sub, boolAnd)
}

// WhereExists adds an exists predicate over the sub-select built by fn.
func (b *Builder) WhereExists(fn func(*Builder)) *Builder {
	return b.whereExists(fn, boolAnd, false)
}

// OrWhereExists is WhereExists joined with "or".
func (b *Builder) OrWhereExists(fn func(*Builder)) *Builder {
	return b.whereExists(fn, boolOr, false)
}

// WhereNotExists adds a not-exists predicate over the sub-select.
func (b *Builder) WhereNotExists(fn func(*Builder)) *Builder {
	return b.whereExists(fn, boolAnd, true)
}

// OrWhereNotExists is WhereNotExists joined with "or".
func (b *Builder) OrWhereNotExists(fn func(*Builder)) *Builder {
	return b.whereExists(fn, boolOr, true)
}

func (b *Builder) whereExists(fn func(*Builder), boolean string, not bool) *Builder {
	kind := WhereExists
	if not {
		kind = WhereNotExists
	}
	sub := b.forSubQuery()
	fn(sub)
	b.wheres = append(b.wheres, Where{Kind: kind, Query: sub, Boolean: boolean})
	b.errs = append(b.errs, sub.errs...)
	return b.AddBinding(BindingWhere, sub.Bindings()...)
}

// WhereRowValues compares a tuple of columns against a tuple of values.
func (b *Builder) WhereRowValues(columns []string, operator string, values []any) *Builder {
	if !validOperator(operator) {
		b.recordErr(fmt.Errorf("%w: operator %q", ErrInvalidArgument, operator))
		return b
	}
	if len(columns) != len(values) {
		b.recordErr(fmt.Errorf("%w: row values need as many values as columns", ErrInvalidArgument))
		return b
	}
	b.wheres = append(b.wheres, Where{
		Kind:     WhereRowValues,
		Columns:  columns,
		Operator: operator,
		Values:   values,
		Boolean:  boolAnd,
	})
	return b.AddBinding(BindingWhere, values...)
}

// WhereJSONContains asserts that a JSON column (optionally with a "->" path)
// contains the given value. The value is JSON-encoded and bound.
func (b *Builder) WhereJSONContains(column string, value any) *Builder {
	return b.whereJSONContains(column, value, boolAnd, false)
}

// OrWhereJSONContains is WhereJSONContains joined with "or".
func (b *Builder) OrWhereJSONContains(column string, value any) *Builder {
	return b.whereJSONContains(column, value, boolOr, false)
}

// WhereJSONDoesntContain is the negated form of WhereJSONContains.
func (b *Builder) WhereJSONDoesntContain(column string, value any) *Builder {
	return b.whereJSONContains(column, value, boolAnd, true)
}

func (b *Builder) whereJSONContains(column string, value any, boolean string, not bool) *Builder {
	b.wheres = append(b.wheres, Where{
		Kind:    WhereJSONContains,
		Column:  column,
		Value:   value,
		Not:     not,
		Boolean: boolean,
	})
	if !IsExpression(value) {
		encoded, err := json.Marshal(value)
		if err != nil {
			b.recordErr(fmt.Errorf("encode json contains value for %s: %w", column, err))
			return b
		}
		b.AddBinding(BindingWhere, string(encoded))
	}
	return b
}

// WhereJSONLength compares the length of a JSON array column (optionally
// with a "->" path).
func (b *Builder) WhereJSONLength(column string, operator string, value any) *Builder {
	if !validOperator(operator) {
		b.recordErr(fmt.Errorf("%w: operator %q", ErrInvalidArgument, operator))
		return b
	}
	b.wheres = append(b.wheres, Where{
		Kind:     WhereJSONLength,
		Column:   column,
		Operator: operator,
		Value:    value,
		Boolean:  boolAnd,
	})
	if !IsExpression(value) {
		b.AddBinding(BindingWhere, value)
	}
	return b
}
