package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/querykit/query"
)

// Capabilities flags the statement forms a dialect can express. Anything
// flagged false makes the corresponding compilation fail with
// query.ErrUnsupportedFeature instead of emitting SQL the engine would
// reject or, worse, misread.
type Capabilities struct {
	JoinedUpdates bool
	JoinedDeletes bool
}

// Dialect supplies the pieces of the pipeline that differ between database
// engines. Implementations receive the grammar so they can reuse its
// wrapping and parameter primitives.
type Dialect interface {
	Name() string

	// QuoteValue quotes one identifier segment, doubling embedded quote
	// characters. It never sees "*".
	QuoteValue(segment string) string

	Capabilities() Capabilities

	CompileLock(lock query.Lock) (string, error)
	CompileRandom(seed string) string

	// DateBasedWhere renders a predicate over the date, time, day, month
	// or year part of a column.
	DateBasedWhere(g *Grammar, where query.Where) (string, error)

	// WrapJSONSelector renders a "column->path" reference as a value
	// extraction.
	WrapJSONSelector(g *Grammar, column string) string

	CompileJSONContains(g *Grammar, column, value string) (string, error)
	CompileJSONLength(g *Grammar, column, operator, value string) (string, error)

	CompileInsertOrIgnore(g *Grammar, b *query.Builder, values []map[string]any) (string, error)
	CompileUpsert(g *Grammar, b *query.Builder, values []map[string]any, uniqueBy, update []string) (string, error)
	CompileTruncate(g *Grammar, b *query.Builder) ([]query.Statement, error)
}

// baseDialect carries the behavior most engines share; concrete dialects
// embed it and override what diverges.
type baseDialect struct{}

func (baseDialect) Capabilities() Capabilities {
	return Capabilities{}
}

func (baseDialect) CompileLock(lock query.Lock) (string, error) {
	if lock.SQL != "" {
		return lock.SQL, nil
	}
	return "", fmt.Errorf("row locking: %w", query.ErrUnsupportedFeature)
}

func (baseDialect) CompileRandom(string) string {
	return "random()"
}

// DateBasedWhere applies the part as a SQL function: date(col) = ?.
func (baseDialect) DateBasedWhere(g *Grammar, where query.Where) (string, error) {
	return where.Part + "(" + g.Wrap(where.Column) + ") " + where.Operator + " " + g.Parameter(where.Value), nil
}

func (baseDialect) WrapJSONSelector(g *Grammar, column string) string {
	field, path := jsonFieldAndPath(g, column)
	return "json_extract(" + field + path + ")"
}

func (baseDialect) CompileJSONContains(g *Grammar, column, value string) (string, error) {
	return "", fmt.Errorf("json containment: %w", query.ErrUnsupportedFeature)
}

func (baseDialect) CompileJSONLength(g *Grammar, column, operator, value string) (string, error) {
	return "", fmt.Errorf("json length: %w", query.ErrUnsupportedFeature)
}

func (baseDialect) CompileInsertOrIgnore(g *Grammar, b *query.Builder, values []map[string]any) (string, error) {
	return "", fmt.Errorf("insert or ignore: %w", query.ErrUnsupportedFeature)
}

func (baseDialect) CompileUpsert(g *Grammar, b *query.Builder, values []map[string]any, uniqueBy, update []string) (string, error) {
	return "", fmt.Errorf("upsert: %w", query.ErrUnsupportedFeature)
}

func (baseDialect) CompileTruncate(g *Grammar, b *query.Builder) ([]query.Statement, error) {
	return []query.Statement{{SQL: "truncate table " + g.WrapTable(b.GetFrom())}}, nil
}

// jsonFieldAndPath splits "col->a->b" into the wrapped column and a
// ", '$.\"a\".\"b\"'" path argument (empty without a path).
func jsonFieldAndPath(g *Grammar, column string) (string, string) {
	parts := strings.SplitN(column, "->", 2)
	field := g.Wrap(parts[0])
	if len(parts) == 1 {
		return field, ""
	}
	return field, ", " + wrapJSONPath(parts[1])
}

func wrapJSONPath(path string) string {
	segments := strings.Split(path, "->")
	for i, segment := range segments {
		segments[i] = `"` + strings.ReplaceAll(segment, "'", "''") + `"`
	}
	return "'$." + strings.Join(segments, ".") + "'"
}
