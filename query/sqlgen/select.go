package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satishbabariya/querykit/query"
)

// selectComponents compile in this exact order; absent components vanish
// without leaving extra whitespace. Assigned in init because the component
// methods refer back to this table through CompileSelect.
var selectComponents []func(*Grammar, *query.Builder) (string, error)

func init() {
	selectComponents = []func(*Grammar, *query.Builder) (string, error){
		(*Grammar).compileAggregateComponent,
		(*Grammar).compileColumns,
		(*Grammar).compileFrom,
		(*Grammar).compileJoinsComponent,
		(*Grammar).compileWheresComponent,
		(*Grammar).compileGroups,
		(*Grammar).compileHavings,
		(*Grammar).compileOrdersComponent,
		(*Grammar).compileLimit,
		(*Grammar).compileOffset,
		(*Grammar).compileUnions,
		(*Grammar).compileLockComponent,
	}
}

// CompileSelect renders the builder as a select statement.
func (g *Grammar) CompileSelect(b *query.Builder) (string, error) {
	if len(b.GetUnions()) > 0 && b.GetAggregate() != nil {
		return g.compileUnionAggregate(b)
	}
	parts := make([]string, 0, len(selectComponents))
	for _, component := range selectComponents {
		sql, err := component(g, b)
		if err != nil {
			return "", err
		}
		if sql != "" {
			parts = append(parts, sql)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// CompileExists renders the builder wrapped in an exists projection.
func (g *Grammar) CompileExists(b *query.Builder) (string, error) {
	sql, err := g.CompileSelect(b)
	if err != nil {
		return "", err
	}
	return "select exists(" + sql + ") as " + g.Wrap("exists"), nil
}

// compileUnionAggregate aggregates over the whole union by nesting it as a
// derived table. The caller's builder keeps its aggregate; only a clone is
// stripped.
func (g *Grammar) compileUnionAggregate(b *query.Builder) (string, error) {
	aggregate, err := g.compileAggregate(b, b.GetAggregate())
	if err != nil {
		return "", err
	}
	inner, err := g.CompileSelect(b.Clone().ClearAggregate())
	if err != nil {
		return "", err
	}
	return aggregate + " from (" + inner + ") as " + g.WrapTable("temp_table"), nil
}

func (g *Grammar) compileAggregateComponent(b *query.Builder) (string, error) {
	aggregate := b.GetAggregate()
	if aggregate == nil {
		return "", nil
	}
	return g.compileAggregate(b, aggregate)
}

func (g *Grammar) compileAggregate(b *query.Builder, aggregate *query.Aggregate) (string, error) {
	column := g.Columnize(aggregate.Columns)
	if b.IsDistinct() && column != "*" {
		column = "distinct " + column
	}
	return "select " + aggregate.Function + "(" + column + ") as aggregate", nil
}

// compileColumns projects the column list. A nil column list reads as "*"
// without being written back to the builder.
func (g *Grammar) compileColumns(b *query.Builder) (string, error) {
	if b.GetAggregate() != nil {
		return "", nil
	}
	prefix := "select "
	if b.IsDistinct() {
		prefix = "select distinct "
	}
	columns := b.GetColumns()
	if columns == nil {
		columns = []any{"*"}
	}
	return prefix + g.Columnize(columns), nil
}

func (g *Grammar) compileFrom(b *query.Builder) (string, error) {
	if b.GetFrom() == nil {
		return "", nil
	}
	return "from " + g.WrapTable(b.GetFrom()), nil
}

func (g *Grammar) compileJoinsComponent(b *query.Builder) (string, error) {
	return g.compileJoins(b.GetJoins())
}

func (g *Grammar) compileJoins(joins []*query.JoinClause) (string, error) {
	if len(joins) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(joins))
	for _, join := range joins {
		table := g.WrapTable(join.Table)
		if nested := join.GetJoins(); len(nested) > 0 {
			inner, err := g.compileJoins(nested)
			if err != nil {
				return "", err
			}
			table = "(" + table + " " + inner + ")"
		}
		on, err := g.compileWheres(join.Builder, "on")
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimSpace(join.JoinType+" join "+table+" "+on))
	}
	return strings.Join(parts, " "), nil
}

func (g *Grammar) compileWheresComponent(b *query.Builder) (string, error) {
	return g.compileWheres(b, "where")
}

func (g *Grammar) compileGroups(b *query.Builder) (string, error) {
	groups := b.GetGroups()
	if len(groups) == 0 {
		return "", nil
	}
	return "group by " + g.Columnize(groups), nil
}

func (g *Grammar) compileOrdersComponent(b *query.Builder) (string, error) {
	return g.compileOrders(b.GetOrders()), nil
}

func (g *Grammar) compileOrders(orders []query.Order) string {
	if len(orders) == 0 {
		return ""
	}
	terms := make([]string, len(orders))
	for i, order := range orders {
		if order.SQL != "" {
			terms[i] = order.SQL
			continue
		}
		terms[i] = g.Wrap(order.Column) + " " + order.Direction
	}
	return "order by " + strings.Join(terms, ", ")
}

func (g *Grammar) compileLimit(b *query.Builder) (string, error) {
	if b.GetLimit() == nil {
		return "", nil
	}
	return "limit " + strconv.Itoa(*b.GetLimit()), nil
}

func (g *Grammar) compileOffset(b *query.Builder) (string, error) {
	if b.GetOffset() == nil {
		return "", nil
	}
	return "offset " + strconv.Itoa(*b.GetOffset()), nil
}

// compileUnions appends each union and the ordering, limit and offset that
// apply to the combined result.
func (g *Grammar) compileUnions(b *query.Builder) (string, error) {
	unions := b.GetUnions()
	if len(unions) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(unions)+3)
	for _, union := range unions {
		inner, err := g.CompileSelect(union.Query)
		if err != nil {
			return "", err
		}
		conjunction := "union "
		if union.All {
			conjunction = "union all "
		}
		parts = append(parts, conjunction+inner)
	}
	if orders := g.compileOrders(b.GetUnionOrders()); orders != "" {
		parts = append(parts, orders)
	}
	if limit := b.GetUnionLimit(); limit != nil {
		parts = append(parts, "limit "+strconv.Itoa(*limit))
	}
	if offset := b.GetUnionOffset(); offset != nil {
		parts = append(parts, "offset "+strconv.Itoa(*offset))
	}
	return strings.Join(parts, " "), nil
}

func (g *Grammar) compileLockComponent(b *query.Builder) (string, error) {
	lock := b.GetLock()
	if lock == nil {
		return "", nil
	}
	sql, err := g.dialect.CompileLock(*lock)
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.dialect.Name(), err)
	}
	return sql, nil
}
