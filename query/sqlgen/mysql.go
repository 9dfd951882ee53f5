package sqlgen

import (
	"strings"

	"github.com/satishbabariya/querykit/query"
)

// NewMySQL builds a grammar for MySQL and MariaDB.
func NewMySQL(opts ...Option) *Grammar {
	return New(mysqlDialect{}, opts...)
}

type mysqlDialect struct {
	baseDialect
}

func (mysqlDialect) Name() string {
	return "mysql"
}

func (mysqlDialect) QuoteValue(segment string) string {
	return "`" + strings.ReplaceAll(segment, "`", "``") + "`"
}

func (mysqlDialect) Capabilities() Capabilities {
	return Capabilities{JoinedUpdates: true, JoinedDeletes: true}
}

func (mysqlDialect) CompileLock(lock query.Lock) (string, error) {
	if lock.SQL != "" {
		return lock.SQL, nil
	}
	if lock.ForUpdate {
		return "for update", nil
	}
	return "lock in share mode", nil
}

func (mysqlDialect) CompileRandom(seed string) string {
	return "rand(" + seed + ")"
}

func (mysqlDialect) WrapJSONSelector(g *Grammar, column string) string {
	field, path := jsonFieldAndPath(g, column)
	return "json_unquote(json_extract(" + field + path + "))"
}

func (mysqlDialect) CompileJSONContains(g *Grammar, column, value string) (string, error) {
	field, path := jsonFieldAndPath(g, column)
	return "json_contains(" + field + ", " + value + path + ")", nil
}

func (mysqlDialect) CompileJSONLength(g *Grammar, column, operator, value string) (string, error) {
	field, path := jsonFieldAndPath(g, column)
	return "json_length(" + field + path + ") " + operator + " " + value, nil
}

func (mysqlDialect) CompileInsertOrIgnore(g *Grammar, b *query.Builder, values []map[string]any) (string, error) {
	return g.compileInsertInto(b, values, "insert ignore into")
}

// CompileUpsert uses the on-duplicate-key form; MySQL infers the colliding
// key, so uniqueBy is not rendered.
func (mysqlDialect) CompileUpsert(g *Grammar, b *query.Builder, values []map[string]any, uniqueBy, update []string) (string, error) {
	insert, err := g.CompileInsert(b, values)
	if err != nil {
		return "", err
	}
	assignments := make([]string, len(update))
	for i, column := range update {
		assignments[i] = g.Wrap(column) + " = values(" + g.Wrap(column) + ")"
	}
	return insert + " on duplicate key update " + strings.Join(assignments, ", "), nil
}
