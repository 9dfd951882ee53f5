// Package query models a SQL statement as a mutable clause tree. A Builder
// accumulates clauses and their bindings through a fluent API; a Grammar
// compiles the tree into dialect specific SQL text whose placeholders line
// up with the flattened bindings.
//
// Builders are not safe for concurrent mutation; clone before sharing.
package query

import (
	"errors"
	"fmt"
)

// Builder holds the clause tree of a single statement.
type Builder struct {
	grammar Grammar

	columns     []any
	distinct    bool
	from        any
	joins       []*JoinClause
	wheres      []Where
	groups      []any
	havings     []Having
	orders      []Order
	limit       *int
	offset      *int
	unions      []Union
	unionOrders []Order
	unionLimit  *int
	unionOffset *int
	aggregate   *Aggregate
	lock        *Lock
	bindings    map[BindingGroup][]any
	errs        []error
}

// New returns an empty builder bound to grammar.
func New(grammar Grammar) *Builder {
	return &Builder{
		grammar:  grammar,
		bindings: newBindingMap(),
	}
}

// NewQuery returns a fresh builder sharing this builder's grammar.
func (b *Builder) NewQuery() *Builder {
	return New(b.grammar)
}

// Grammar returns the grammar the builder compiles with.
func (b *Builder) Grammar() Grammar {
	return b.grammar
}

func (b *Builder) forNestedWhere() *Builder {
	nested := b.NewQuery()
	nested.from = b.from
	return nested
}

func (b *Builder) forSubQuery() *Builder {
	return b.NewQuery()
}

func (b *Builder) recordErr(err error) {
	b.errs = append(b.errs, err)
}

// Err reports every construction error recorded so far. Fluent calls never
// fail in place; malformed input is collected here and also returned by
// ToSQL.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// ToSQL compiles the builder as a select statement. The builder is not
// mutated; compiling twice yields identical text.
func (b *Builder) ToSQL() (string, error) {
	if err := b.Err(); err != nil {
		return "", err
	}
	return b.grammar.CompileSelect(b)
}

// Select replaces the projected columns and clears any bindings a previous
// raw select registered. Accepts strings and Expressions.
func (b *Builder) Select(columns ...any) *Builder {
	b.columns = nil
	b.bindings[BindingSelect] = nil
	b.columns = append(b.columns, columns...)
	return b
}

// AddSelect appends projected columns, keeping the existing ones.
func (b *Builder) AddSelect(columns ...any) *Builder {
	b.columns = append(b.columns, columns...)
	return b
}

// SelectRaw appends a raw projection with its bindings.
func (b *Builder) SelectRaw(sql string, bindings ...any) *Builder {
	b.AddSelect(Raw(sql))
	return b.AddBinding(BindingSelect, bindings...)
}

// SelectSub compiles the sub-select immediately and projects it under the
// given alias.
func (b *Builder) SelectSub(query func(*Builder), as string) *Builder {
	sub := b.forSubQuery()
	query(sub)
	sql, err := sub.ToSQL()
	if err != nil {
		b.recordErr(err)
		return b
	}
	return b.SelectRaw("("+sql+") as "+b.grammar.Wrap(as), sub.Bindings()...)
}

// Distinct makes the select return distinct rows.
func (b *Builder) Distinct() *Builder {
	b.distinct = true
	return b
}

// From sets the target table. Accepts a string (optionally "table as alias")
// or an Expression.
func (b *Builder) From(table any) *Builder {
	b.from = table
	return b
}

// Table is shorthand for From with a plain table name.
func (b *Builder) Table(table string) *Builder {
	return b.From(table)
}

// FromRaw sets a raw from fragment with its bindings.
func (b *Builder) FromRaw(sql string, bindings ...any) *Builder {
	b.from = Raw(sql)
	return b.AddBinding(BindingFrom, bindings...)
}

// FromSub selects from a compiled sub-select under the given alias.
func (b *Builder) FromSub(query func(*Builder), as string) *Builder {
	sub := b.forSubQuery()
	query(sub)
	sql, err := sub.ToSQL()
	if err != nil {
		b.recordErr(err)
		return b
	}
	b.from = Raw("(" + sql + ") as " + b.grammar.WrapTable(as))
	return b.AddBinding(BindingFrom, sub.Bindings()...)
}

// GroupBy appends grouping columns.
func (b *Builder) GroupBy(groups ...any) *Builder {
	b.groups = append(b.groups, groups...)
	return b
}

// GroupByRaw appends a raw grouping fragment with its bindings.
func (b *Builder) GroupByRaw(sql string, bindings ...any) *Builder {
	b.groups = append(b.groups, Raw(sql))
	return b.AddBinding(BindingGroupBy, bindings...)
}

// Having adds a basic having predicate joined with "and".
func (b *Builder) Having(column any, operator string, value any) *Builder {
	return b.having(column, operator, value, boolAnd)
}

// OrHaving adds a basic having predicate joined with "or".
func (b *Builder) OrHaving(column any, operator string, value any) *Builder {
	return b.having(column, operator, value, boolOr)
}

func (b *Builder) having(column any, operator string, value any, boolean string) *Builder {
	if !validOperator(operator) {
		b.recordErr(fmt.Errorf("%w: operator %q", ErrInvalidArgument, operator))
		return b
	}
	b.havings = append(b.havings, Having{
		Kind:     HavingBasic,
		Column:   column,
		Operator: operator,
		Value:    value,
		Boolean:  boolean,
	})
	if !IsExpression(value) {
		b.AddBinding(BindingHaving, value)
	}
	return b
}

// HavingRaw adds a raw having fragment joined with "and".
func (b *Builder) HavingRaw(sql string, bindings ...any) *Builder {
	return b.havingRaw(sql, bindings, boolAnd)
}

// OrHavingRaw adds a raw having fragment joined with "or".
func (b *Builder) OrHavingRaw(sql string, bindings ...any) *Builder {
	return b.havingRaw(sql, bindings, boolOr)
}

func (b *Builder) havingRaw(sql string, bindings []any, boolean string) *Builder {
	b.havings = append(b.havings, Having{Kind: HavingRaw, SQL: sql, Boolean: boolean})
	return b.AddBinding(BindingHaving, bindings...)
}

// HavingBetween constrains an aggregate to the inclusive min..max range.
func (b *Builder) HavingBetween(column any, min, max any) *Builder {
	return b.havingBetween(column, min, max, false)
}

// HavingNotBetween is the negated form of HavingBetween.
func (b *Builder) HavingNotBetween(column any, min, max any) *Builder {
	return b.havingBetween(column, min, max, true)
}

func (b *Builder) havingBetween(column any, min, max any, not bool) *Builder {
	b.havings = append(b.havings, Having{
		Kind:    HavingBetween,
		Column:  column,
		Values:  []any{min, max},
		Not:     not,
		Boolean: boolAnd,
	})
	return b.AddBinding(BindingHaving, min, max)
}

// OrderBy appends an ascending ordering term. After a union it orders the
// combined result instead of the last select.
func (b *Builder) OrderBy(column any) *Builder {
	return b.orderBy(column, "asc")
}

// OrderByDesc appends a descending ordering term.
func (b *Builder) OrderByDesc(column any) *Builder {
	return b.orderBy(column, "desc")
}

func (b *Builder) orderBy(column any, direction string) *Builder {
	order := Order{Column: column, Direction: direction}
	if len(b.unions) > 0 {
		b.unionOrders = append(b.unionOrders, order)
	} else {
		b.orders = append(b.orders, order)
	}
	return b
}

// OrderByRaw appends a raw ordering fragment with its bindings.
func (b *Builder) OrderByRaw(sql string, bindings ...any) *Builder {
	group := BindingOrder
	if len(b.unions) > 0 {
		b.unionOrders = append(b.unionOrders, Order{SQL: sql})
		group = BindingUnionOrder
	} else {
		b.orders = append(b.orders, Order{SQL: sql})
	}
	return b.AddBinding(group, bindings...)
}

// InRandomOrder orders rows randomly using the dialect's random function.
func (b *Builder) InRandomOrder(seed ...string) *Builder {
	s := ""
	if len(seed) > 0 {
		s = seed[0]
	}
	return b.OrderByRaw(b.grammar.CompileRandom(s))
}

// Latest orders by the given column (created_at by default) descending.
func (b *Builder) Latest(column ...string) *Builder {
	return b.OrderByDesc(timestampColumn(column))
}

// Oldest orders by the given column (created_at by default) ascending.
func (b *Builder) Oldest(column ...string) *Builder {
	return b.OrderBy(timestampColumn(column))
}

func timestampColumn(column []string) string {
	if len(column) > 0 {
		return column[0]
	}
	return "created_at"
}

// Limit caps the number of returned rows. Negative values clear the cap.
// After a union it applies to the combined result.
func (b *Builder) Limit(n int) *Builder {
	target := &b.limit
	if len(b.unions) > 0 {
		target = &b.unionLimit
	}
	if n < 0 {
		*target = nil
		return b
	}
	v := n
	*target = &v
	return b
}

// Offset skips the given number of rows; negative values are clamped to
// zero. After a union it applies to the combined result.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		n = 0
	}
	v := n
	if len(b.unions) > 0 {
		b.unionOffset = &v
	} else {
		b.offset = &v
	}
	return b
}

// Take is an alias for Limit.
func (b *Builder) Take(n int) *Builder {
	return b.Limit(n)
}

// Skip is an alias for Offset.
func (b *Builder) Skip(n int) *Builder {
	return b.Offset(n)
}

// ForPage windows the result to the given 1-based page.
func (b *Builder) ForPage(page, perPage int) *Builder {
	return b.Skip((page - 1) * perPage).Take(perPage)
}

// Union appends another select combined with "union".
func (b *Builder) Union(other *Builder) *Builder {
	return b.union(other, false)
}

// UnionAll appends another select combined with "union all".
func (b *Builder) UnionAll(other *Builder) *Builder {
	return b.union(other, true)
}

func (b *Builder) union(other *Builder, all bool) *Builder {
	b.unions = append(b.unions, Union{Query: other, All: all})
	b.errs = append(b.errs, other.errs...)
	return b.AddBinding(BindingUnion, other.Bindings()...)
}

// SharedLock asks for the dialect's shared row lock.
func (b *Builder) SharedLock() *Builder {
	b.lock = &Lock{ForUpdate: false}
	return b
}

// LockForUpdate asks for the dialect's exclusive row lock.
func (b *Builder) LockForUpdate() *Builder {
	b.lock = &Lock{ForUpdate: true}
	return b
}

// LockRaw appends a verbatim lock fragment.
func (b *Builder) LockRaw(sql string) *Builder {
	b.lock = &Lock{SQL: sql}
	return b
}

// Aggregate projects an aggregate function over the given columns ("*" when
// none are given) instead of the column list.
func (b *Builder) Aggregate(function string, columns ...any) *Builder {
	if len(columns) == 0 {
		columns = []any{"*"}
	}
	b.aggregate = &Aggregate{Function: function, Columns: columns}
	return b
}

// ClearAggregate removes a previously set aggregate projection.
func (b *Builder) ClearAggregate() *Builder {
	b.aggregate = nil
	return b
}

// Clone deep-copies the clause tree, bindings included. Compile a clone when
// several goroutines need the same base query.
func (b *Builder) Clone() *Builder {
	c := &Builder{
		grammar:  b.grammar,
		distinct: b.distinct,
		from:     b.from,
	}
	c.columns = append([]any(nil), b.columns...)
	if b.joins != nil {
		c.joins = make([]*JoinClause, len(b.joins))
		for i, j := range b.joins {
			c.joins[i] = j.clone()
		}
	}
	c.wheres = cloneWheres(b.wheres)
	c.groups = append([]any(nil), b.groups...)
	c.havings = cloneHavings(b.havings)
	c.orders = append([]Order(nil), b.orders...)
	c.limit = cloneIntPtr(b.limit)
	c.offset = cloneIntPtr(b.offset)
	if b.unions != nil {
		c.unions = make([]Union, len(b.unions))
		for i, u := range b.unions {
			c.unions[i] = Union{Query: u.Query.Clone(), All: u.All}
		}
	}
	c.unionOrders = append([]Order(nil), b.unionOrders...)
	c.unionLimit = cloneIntPtr(b.unionLimit)
	c.unionOffset = cloneIntPtr(b.unionOffset)
	if b.aggregate != nil {
		agg := Aggregate{
			Function: b.aggregate.Function,
			Columns:  append([]any(nil), b.aggregate.Columns...),
		}
		c.aggregate = &agg
	}
	if b.lock != nil {
		lock := *b.lock
		c.lock = &lock
	}
	c.bindings = newBindingMap()
	for group, values := range b.bindings {
		c.bindings[group] = append([]any(nil), values...)
	}
	c.errs = append([]error(nil), b.errs...)
	return c
}

func cloneWheres(wheres []Where) []Where {
	if wheres == nil {
		return nil
	}
	out := append([]Where(nil), wheres...)
	for i := range out {
		if out[i].Query != nil {
			out[i].Query = out[i].Query.Clone()
		}
		out[i].Values = append([]any(nil), out[i].Values...)
		out[i].IntList = append([]int(nil), out[i].IntList...)
		out[i].Columns = append([]string(nil), out[i].Columns...)
	}
	return out
}

func cloneHavings(havings []Having) []Having {
	if havings == nil {
		return nil
	}
	out := append([]Having(nil), havings...)
	for i := range out {
		out[i].Values = append([]any(nil), out[i].Values...)
	}
	return out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Read accessors used by grammars. Compilation never writes through these;
// the returned slices and pointers must be treated as read-only views.

func (b *Builder) GetColumns() []any         { return b.columns }
func (b *Builder) IsDistinct() bool          { return b.distinct }
func (b *Builder) GetFrom() any              { return b.from }
func (b *Builder) GetJoins() []*JoinClause   { return b.joins }
func (b *Builder) GetWheres() []Where        { return b.wheres }
func (b *Builder) GetGroups() []any          { return b.groups }
func (b *Builder) GetHavings() []Having      { return b.havings }
func (b *Builder) GetOrders() []Order        { return b.orders }
func (b *Builder) GetLimit() *int            { return b.limit }
func (b *Builder) GetOffset() *int           { return b.offset }
func (b *Builder) GetUnions() []Union        { return b.unions }
func (b *Builder) GetUnionOrders() []Order   { return b.unionOrders }
func (b *Builder) GetUnionLimit() *int       { return b.unionLimit }
func (b *Builder) GetUnionOffset() *int      { return b.unionOffset }
func (b *Builder) GetAggregate() *Aggregate  { return b.aggregate }
func (b *Builder) GetLock() *Lock            { return b.lock }
