package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satishbabariya/querykit/query"
)

type whereCompiler func(*Grammar, query.Where) (string, error)

// whereCompilers dispatches on the where variant tag. Dialect-sensitive
// variants delegate to the Dialect hooks from inside their compiler.
// Assigned in init because the nested and subquery compilers refer back to
// this table through compileWheres.
var whereCompilers map[query.WhereKind]whereCompiler

func init() {
	whereCompilers = map[query.WhereKind]whereCompiler{
		query.WhereRaw:          (*Grammar).whereRaw,
		query.WhereBasic:        (*Grammar).whereBasic,
		query.WhereIn:           (*Grammar).whereIn,
		query.WhereNotIn:        (*Grammar).whereNotIn,
		query.WhereInRaw:        (*Grammar).whereInRaw,
		query.WhereNotInRaw:     (*Grammar).whereNotInRaw,
		query.WhereNull:         (*Grammar).whereNull,
		query.WhereNotNull:      (*Grammar).whereNotNull,
		query.WhereBetween:      (*Grammar).whereBetween,
		query.WhereDateBased:    (*Grammar).whereDateBased,
		query.WhereColumn:       (*Grammar).whereColumn,
		query.WhereNested:       (*Grammar).whereNested,
		query.WhereSub:          (*Grammar).whereSub,
		query.WhereExists:       (*Grammar).whereExists,
		query.WhereNotExists:    (*Grammar).whereNotExists,
		query.WhereRowValues:    (*Grammar).whereRowValues,
		query.WhereJSONContains: (*Grammar).whereJSONContains,
		query.WhereJSONLength:   (*Grammar).whereJSONLength,
	}
}

// compileWheres renders the predicate tree. Each fragment carries its "and"
// or "or" conjunction; only the first one is stripped. The conjunction
// parameter prefixes the result: "where" for statements, "on" for join
// clauses, "" for the body of a nested group.
func (g *Grammar) compileWheres(b *query.Builder, conjunction string) (string, error) {
	wheres := b.GetWheres()
	if len(wheres) == 0 {
		return "", nil
	}
	fragments := make([]string, 0, len(wheres))
	for _, where := range wheres {
		compile, ok := whereCompilers[where.Kind]
		if !ok {
			return "", g.unsupported("where variant " + string(where.Kind))
		}
		sql, err := compile(g, where)
		if err != nil {
			return "", err
		}
		if sql == "" {
			continue
		}
		fragments = append(fragments, where.Boolean+" "+sql)
	}
	if len(fragments) == 0 {
		return "", nil
	}
	conjoined := removeLeadingBoolean(strings.Join(fragments, " "))
	if conjunction == "" {
		return conjoined, nil
	}
	return conjunction + " " + conjoined, nil
}

// removeLeadingBoolean strips the first, and only the first, leading
// conjunction keyword.
func removeLeadingBoolean(sql string) string {
	if rest, ok := strings.CutPrefix(sql, "and "); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(sql, "or "); ok {
		return rest
	}
	return sql
}

func (g *Grammar) whereRaw(where query.Where) (string, error) {
	return where.SQL, nil
}

func (g *Grammar) whereBasic(where query.Where) (string, error) {
	return g.Wrap(where.Column) + " " + where.Operator + " " + g.Parameter(where.Value), nil
}

// whereIn compiles an empty set to the always-false "0 = 1" so the
// statement stays valid SQL.
func (g *Grammar) whereIn(where query.Where) (string, error) {
	if len(where.Values) == 0 {
		return "0 = 1", nil
	}
	return g.Wrap(where.Column) + " in (" + g.Parameterize(where.Values) + ")", nil
}

// whereNotIn compiles an empty set to the always-true "1 = 1".
func (g *Grammar) whereNotIn(where query.Where) (string, error) {
	if len(where.Values) == 0 {
		return "1 = 1", nil
	}
	return g.Wrap(where.Column) + " not in (" + g.Parameterize(where.Values) + ")", nil
}

func (g *Grammar) whereInRaw(where query.Where) (string, error) {
	if len(where.IntList) == 0 {
		return "0 = 1", nil
	}
	return g.Wrap(where.Column) + " in (" + joinInts(where.IntList) + ")", nil
}

func (g *Grammar) whereNotInRaw(where query.Where) (string, error) {
	if len(where.IntList) == 0 {
		return "1 = 1", nil
	}
	return g.Wrap(where.Column) + " not in (" + joinInts(where.IntList) + ")", nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func (g *Grammar) whereNull(where query.Where) (string, error) {
	return g.Wrap(where.Column) + " is null", nil
}

func (g *Grammar) whereNotNull(where query.Where) (string, error) {
	return g.Wrap(where.Column) + " is not null", nil
}

// whereBetween reads the first and last value of the range; intermediate
// values are ignored.
func (g *Grammar) whereBetween(where query.Where) (string, error) {
	if len(where.Values) == 0 {
		return "", g.invalid("between needs a minimum and a maximum")
	}
	between := "between"
	if where.Not {
		between = "not between"
	}
	min := g.Parameter(where.Values[0])
	max := g.Parameter(where.Values[len(where.Values)-1])
	return g.Wrap(where.Column) + " " + between + " " + min + " and " + max, nil
}

func (g *Grammar) whereDateBased(where query.Where) (string, error) {
	sql, err := g.dialect.DateBasedWhere(g, where)
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.dialect.Name(), err)
	}
	return sql, nil
}

func (g *Grammar) whereColumn(where query.Where) (string, error) {
	return g.Wrap(where.First) + " " + where.Operator + " " + g.Wrap(where.Second), nil
}

// whereNested parenthesizes a sub-tree. A group whose predicates all
// vanished compiles to nothing instead of "()".
func (g *Grammar) whereNested(where query.Where) (string, error) {
	inner, err := g.compileWheres(where.Query, "")
	if err != nil {
		return "", err
	}
	if inner == "" {
		return "", nil
	}
	return "(" + inner + ")", nil
}

func (g *Grammar) whereSub(where query.Where) (string, error) {
	sub, err := g.CompileSelect(where.Query)
	if err != nil {
		return "", err
	}
	return g.Wrap(where.Column) + " " + where.Operator + " (" + sub + ")", nil
}

func (g *Grammar) whereExists(where query.Where) (string, error) {
	sub, err := g.CompileSelect(where.Query)
	if err != nil {
		return "", err
	}
	return "exists (" + sub + ")", nil
}

func (g *Grammar) whereNotExists(where query.Where) (string, error) {
	sub, err := g.CompileSelect(where.Query)
	if err != nil {
		return "", err
	}
	return "not exists (" + sub + ")", nil
}

func (g *Grammar) whereRowValues(where query.Where) (string, error) {
	if len(where.Columns) != len(where.Values) {
		return "", g.invalid("row values need as many values as columns")
	}
	return "(" + g.columnizeNames(where.Columns) + ") " + where.Operator + " (" + g.Parameterize(where.Values) + ")", nil
}

func (g *Grammar) whereJSONContains(where query.Where) (string, error) {
	column := toString(where.Column)
	sql, err := g.dialect.CompileJSONContains(g, column, g.Parameter(where.Value))
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.dialect.Name(), err)
	}
	if where.Not {
		return "not " + sql, nil
	}
	return sql, nil
}

func (g *Grammar) whereJSONLength(where query.Where) (string, error) {
	column := toString(where.Column)
	sql, err := g.dialect.CompileJSONLength(g, column, where.Operator, g.Parameter(where.Value))
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.dialect.Name(), err)
	}
	return sql, nil
}

// compileHavings renders the having tree with the same conjunction rules as
// wheres.
func (g *Grammar) compileHavings(b *query.Builder) (string, error) {
	havings := b.GetHavings()
	if len(havings) == 0 {
		return "", nil
	}
	fragments := make([]string, 0, len(havings))
	for _, having := range havings {
		sql, err := g.compileHaving(having)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, having.Boolean+" "+sql)
	}
	return "having " + removeLeadingBoolean(strings.Join(fragments, " ")), nil
}

func (g *Grammar) compileHaving(having query.Having) (string, error) {
	switch having.Kind {
	case query.HavingRaw:
		return having.SQL, nil
	case query.HavingBasic:
		return g.Wrap(having.Column) + " " + having.Operator + " " + g.Parameter(having.Value), nil
	case query.HavingBetween:
		if len(having.Values) < 2 {
			return "", g.invalid("having between needs a minimum and a maximum")
		}
		between := "between"
		if having.Not {
			between = "not between"
		}
		min := g.Parameter(having.Values[0])
		max := g.Parameter(having.Values[len(having.Values)-1])
		return g.Wrap(having.Column) + " " + between + " " + min + " and " + max, nil
	}
	return "", g.unsupported("having variant " + string(having.Kind))
}
