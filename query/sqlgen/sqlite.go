package sqlgen

import (
	"github.com/satishbabariya/querykit/query"
)

// NewSQLite builds a grammar for SQLite. Row locking and JSON containment
// have no SQLite form and fail with query.ErrUnsupportedFeature.
func NewSQLite(opts ...Option) *Grammar {
	return New(sqliteDialect{}, opts...)
}

type sqliteDialect struct {
	baseDialect
}

func (sqliteDialect) Name() string {
	return "sqlite"
}

func (sqliteDialect) QuoteValue(segment string) string {
	return doubleQuote(segment)
}

var sqliteDateFormats = map[string]string{
	query.DatePartDate:  "%Y-%m-%d",
	query.DatePartTime:  "%H:%M:%S",
	query.DatePartDay:   "%d",
	query.DatePartMonth: "%m",
	query.DatePartYear:  "%Y",
}

// DateBasedWhere compares through strftime; the cast keeps both sides text.
func (sqliteDialect) DateBasedWhere(g *Grammar, where query.Where) (string, error) {
	format := sqliteDateFormats[where.Part]
	return "strftime('" + format + "', " + g.Wrap(where.Column) + ") " +
		where.Operator + " cast(" + g.Parameter(where.Value) + " as text)", nil
}

func (sqliteDialect) CompileJSONLength(g *Grammar, column, operator, value string) (string, error) {
	field, path := jsonFieldAndPath(g, column)
	return "json_array_length(" + field + path + ") " + operator + " " + value, nil
}

func (sqliteDialect) CompileInsertOrIgnore(g *Grammar, b *query.Builder, values []map[string]any) (string, error) {
	return g.compileInsertInto(b, values, "insert or ignore into")
}

func (sqliteDialect) CompileUpsert(g *Grammar, b *query.Builder, values []map[string]any, uniqueBy, update []string) (string, error) {
	return compileOnConflictUpsert(g, b, values, uniqueBy, update)
}

// CompileTruncate emulates truncation: reset the autoincrement sequence,
// then delete the rows.
func (sqliteDialect) CompileTruncate(g *Grammar, b *query.Builder) ([]query.Statement, error) {
	return []query.Statement{
		{
			SQL:      "delete from sqlite_sequence where name = ?",
			Bindings: []any{g.TablePrefix() + toString(b.GetFrom())},
		},
		{SQL: "delete from " + g.WrapTable(b.GetFrom())},
	}, nil
}
