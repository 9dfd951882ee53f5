package query

// Join types understood by the grammars.
const (
	InnerJoin = "inner"
	LeftJoin  = "left"
	RightJoin = "right"
	CrossJoin = "cross"
)

// JoinClause is a builder rooted at a join's "on" tree. It shares the parent
// builder's grammar but owns its clause tree; the parent flattens the
// clause's bindings into its join group when the join is attached. Every
// Where* method is available on a join, and joins added to a JoinClause
// render as parenthesized nested joins.
type JoinClause struct {
	*Builder
	JoinType string
	Table    any
}

func newJoinClause(parent *Builder, joinType string, table any) *JoinClause {
	clause := &JoinClause{
		Builder:  New(parent.grammar),
		JoinType: joinType,
		Table:    table,
	}
	clause.from = table
	return clause
}

// On adds a column comparison to the join, joined with "and".
func (j *JoinClause) On(first any, operator string, second any) *JoinClause {
	j.WhereColumn(first, operator, second)
	return j
}

// OrOn adds a column comparison joined with "or".
func (j *JoinClause) OrOn(first any, operator string, second any) *JoinClause {
	j.OrWhereColumn(first, operator, second)
	return j
}

// OnFunc groups conditions built by fn into a parenthesized tree.
func (j *JoinClause) OnFunc(fn func(*JoinClause)) *JoinClause {
	return j.onNested(fn, boolAnd)
}

// OrOnFunc is OnFunc joined with "or".
func (j *JoinClause) OrOnFunc(fn func(*JoinClause)) *JoinClause {
	return j.onNested(fn, boolOr)
}

func (j *JoinClause) onNested(fn func(*JoinClause), boolean string) *JoinClause {
	nested := newJoinClause(j.Builder, j.JoinType, j.Table)
	fn(nested)
	j.addNestedWhere(nested.Builder, boolean)
	return j
}

func (j *JoinClause) clone() *JoinClause {
	return &JoinClause{
		Builder:  j.Builder.Clone(),
		JoinType: j.JoinType,
		Table:    j.Table,
	}
}

// Join adds an inner join on a single column equality or comparison.
func (b *Builder) Join(table any, first any, operator string, second any) *Builder {
	return b.joinOn(InnerJoin, table, first, operator, second)
}

// LeftJoin adds a left join on a single column comparison.
func (b *Builder) LeftJoin(table any, first any, operator string, second any) *Builder {
	return b.joinOn(LeftJoin, table, first, operator, second)
}

// RightJoin adds a right join on a single column comparison.
func (b *Builder) RightJoin(table any, first any, operator string, second any) *Builder {
	return b.joinOn(RightJoin, table, first, operator, second)
}

func (b *Builder) joinOn(joinType string, table any, first any, operator string, second any) *Builder {
	clause := newJoinClause(b, joinType, table)
	clause.On(first, operator, second)
	return b.attachJoin(clause)
}

// JoinFunc adds an inner join whose "on" tree is built by fn. Conditions
// added with Where* carry their bindings into the parent's join group.
func (b *Builder) JoinFunc(table any, fn func(*JoinClause)) *Builder {
	return b.joinFunc(InnerJoin, table, fn)
}

// LeftJoinFunc adds a left join built by fn.
func (b *Builder) LeftJoinFunc(table any, fn func(*JoinClause)) *Builder {
	return b.joinFunc(LeftJoin, table, fn)
}

// RightJoinFunc adds a right join built by fn.
func (b *Builder) RightJoinFunc(table any, fn func(*JoinClause)) *Builder {
	return b.joinFunc(RightJoin, table, fn)
}

func (b *Builder) joinFunc(joinType string, table any, fn func(*JoinClause)) *Builder {
	clause := newJoinClause(b, joinType, table)
	fn(clause)
	return b.attachJoin(clause)
}

// CrossJoin adds a cross join; no "on" tree is compiled for it.
func (b *Builder) CrossJoin(table any) *Builder {
	return b.attachJoin(newJoinClause(b, CrossJoin, table))
}

func (b *Builder) attachJoin(clause *JoinClause) *Builder {
	b.joins = append(b.joins, clause)
	b.errs = append(b.errs, clause.errs...)
	return b.AddBinding(BindingJoin, clause.Bindings()...)
}

// JoinSub compiles the sub-select built by fn and inner-joins it under the
// given alias.
func (b *Builder) JoinSub(fn func(*Builder), as string, first any, operator string, second any) *Builder {
	return b.joinSub(InnerJoin, fn, as, first, operator, second)
}

// LeftJoinSub compiles the sub-select built by fn and left-joins it.
func (b *Builder) LeftJoinSub(fn func(*Builder), as string, first any, operator string, second any) *Builder {
	return b.joinSub(LeftJoin, fn, as, first, operator, second)
}

func (b *Builder) joinSub(joinType string, fn func(*Builder), as string, first any, operator string, second any) *Builder {
	sub := b.forSubQuery()
	fn(sub)
	sql, err := sub.ToSQL()
	if err != nil {
		b.recordErr(err)
		return b
	}
	b.AddBinding(BindingJoin, sub.Bindings()...)
	return b.joinOn(joinType, Raw("("+sql+") as "+b.grammar.WrapTable(as)), first, operator, second)
}
