package sqlgen

import (
	"strings"

	"github.com/satishbabariya/querykit/query"
)

// NewPostgres builds a grammar for PostgreSQL. Compiled statements use "?"
// placeholders; rebind with RebindSQL before handing them to lib/pq.
func NewPostgres(opts ...Option) *Grammar {
	return New(postgresDialect{}, opts...)
}

type postgresDialect struct {
	baseDialect
}

func (postgresDialect) Name() string {
	return "postgres"
}

func (postgresDialect) QuoteValue(segment string) string {
	return doubleQuote(segment)
}

func (postgresDialect) CompileLock(lock query.Lock) (string, error) {
	if lock.SQL != "" {
		return lock.SQL, nil
	}
	if lock.ForUpdate {
		return "for update", nil
	}
	return "for share", nil
}

// DateBasedWhere casts for date and time parts and extracts the rest.
func (postgresDialect) DateBasedWhere(g *Grammar, where query.Where) (string, error) {
	column := g.Wrap(where.Column)
	value := g.Parameter(where.Value)
	switch where.Part {
	case query.DatePartDate, query.DatePartTime:
		return column + "::" + where.Part + " " + where.Operator + " " + value, nil
	default:
		return "extract(" + where.Part + " from " + column + ") " + where.Operator + " " + value, nil
	}
}

func (postgresDialect) WrapJSONSelector(g *Grammar, column string) string {
	parts := strings.Split(column, "->")
	selector := g.Wrap(parts[0])
	path := parts[1:]
	for i, segment := range path {
		arrow := "->"
		if i == len(path)-1 {
			arrow = "->>"
		}
		selector += arrow + "'" + strings.ReplaceAll(segment, "'", "''") + "'"
	}
	return selector
}

func (postgresDialect) CompileJSONContains(g *Grammar, column, value string) (string, error) {
	return "(" + pgJSONTarget(g, column) + ")::jsonb @> " + value, nil
}

func (postgresDialect) CompileJSONLength(g *Grammar, column, operator, value string) (string, error) {
	return "jsonb_array_length((" + pgJSONTarget(g, column) + ")::jsonb) " + operator + " " + value, nil
}

func (postgresDialect) CompileInsertOrIgnore(g *Grammar, b *query.Builder, values []map[string]any) (string, error) {
	insert, err := g.CompileInsert(b, values)
	if err != nil {
		return "", err
	}
	return insert + " on conflict do nothing", nil
}

func (postgresDialect) CompileUpsert(g *Grammar, b *query.Builder, values []map[string]any, uniqueBy, update []string) (string, error) {
	return compileOnConflictUpsert(g, b, values, uniqueBy, update)
}

func (postgresDialect) CompileTruncate(g *Grammar, b *query.Builder) ([]query.Statement, error) {
	return []query.Statement{
		{SQL: "truncate " + g.WrapTable(b.GetFrom()) + " restart identity cascade"},
	}, nil
}

// pgJSONTarget keeps every path hop in json form ("col"->'a'->'b') so the
// result can be cast to jsonb.
func pgJSONTarget(g *Grammar, column string) string {
	parts := strings.Split(column, "->")
	target := g.Wrap(parts[0])
	for _, segment := range parts[1:] {
		target += "->'" + strings.ReplaceAll(segment, "'", "''") + "'"
	}
	return target
}

// compileOnConflictUpsert renders the standard on-conflict upsert shared by
// the postgres and sqlite dialects.
func compileOnConflictUpsert(g *Grammar, b *query.Builder, values []map[string]any, uniqueBy, update []string) (string, error) {
	if len(uniqueBy) == 0 {
		return "", g.invalid("upsert needs the conflict columns")
	}
	insert, err := g.CompileInsert(b, values)
	if err != nil {
		return "", err
	}
	assignments := make([]string, len(update))
	for i, column := range update {
		assignments[i] = g.Wrap(column) + " = " + g.wrapValue("excluded") + "." + g.Wrap(column)
	}
	return insert + " on conflict (" + g.columnizeNames(uniqueBy) + ") do update set " +
		strings.Join(assignments, ", "), nil
}

func doubleQuote(segment string) string {
	return `"` + strings.ReplaceAll(segment, `"`, `""`) + `"`
}
