// Package sqlgen compiles query builder state into SQL text for a concrete
// dialect. One Grammar implements the whole compilation pipeline; dialect
// divergence (identifier quoting, locks, JSON operators, upserts) lives
// behind the Dialect interface, so adding a dialect never duplicates the
// pipeline.
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/satishbabariya/querykit/query"
)

var aliasPattern = regexp.MustCompile(`(?i)\s+as\s+`)

// Grammar compiles builders for a single dialect. Compilation never mutates
// the builder, so a grammar can be shared freely across goroutines.
type Grammar struct {
	dialect     Dialect
	tablePrefix string
}

var _ query.Grammar = (*Grammar)(nil)

// Option configures a grammar.
type Option func(*Grammar)

// WithTablePrefix prepends prefix to every wrapped table name and table
// alias.
func WithTablePrefix(prefix string) Option {
	return func(g *Grammar) {
		g.tablePrefix = prefix
	}
}

// New builds a grammar around a dialect. Use the NewMySQL, NewPostgres and
// NewSQLite constructors for the shipped dialects.
func New(dialect Dialect, opts ...Option) *Grammar {
	g := &Grammar{dialect: dialect}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dialect returns the dialect the grammar compiles for.
func (g *Grammar) Dialect() Dialect {
	return g.dialect
}

// TablePrefix returns the configured table prefix.
func (g *Grammar) TablePrefix() string {
	return g.tablePrefix
}

// Wrap quotes a column reference: expressions pass through verbatim,
// "table.column" is wrapped per segment, "value as alias" wraps both sides
// and a "->" marks a JSON selector handled by the dialect.
func (g *Grammar) Wrap(value any) string {
	if expr, ok := value.(query.Expression); ok {
		return expr.Value()
	}
	s := toString(value)
	if loc := aliasPattern.FindStringIndex(s); loc != nil {
		return g.Wrap(s[:loc[0]]) + " as " + g.wrapValue(s[loc[1]:])
	}
	if strings.Contains(s, "->") {
		return g.dialect.WrapJSONSelector(g, s)
	}
	return g.wrapSegments(strings.Split(s, "."))
}

// WrapTable quotes a table reference, applying the table prefix. Aliases
// ("users as u") are prefixed on both sides.
func (g *Grammar) WrapTable(table any) string {
	if expr, ok := table.(query.Expression); ok {
		return expr.Value()
	}
	s := toString(table)
	if loc := aliasPattern.FindStringIndex(s); loc != nil {
		return g.WrapTable(s[:loc[0]]) + " as " + g.wrapValue(g.tablePrefix+s[loc[1]:])
	}
	return g.wrapSegments(strings.Split(g.tablePrefix+s, "."))
}

// wrapSegments quotes dot-separated segments; with several segments the
// first one names a table and picks up the prefix.
func (g *Grammar) wrapSegments(segments []string) string {
	wrapped := make([]string, len(segments))
	for i, segment := range segments {
		if i == 0 && len(segments) > 1 {
			wrapped[i] = g.WrapTable(segment)
		} else {
			wrapped[i] = g.wrapValue(segment)
		}
	}
	return strings.Join(wrapped, ".")
}

// wrapValue quotes a single identifier segment. "*" is never quoted.
func (g *Grammar) wrapValue(segment string) string {
	if segment == "*" {
		return segment
	}
	return g.dialect.QuoteValue(segment)
}

// Columnize wraps and comma-joins a column list.
func (g *Grammar) Columnize(columns []any) string {
	wrapped := make([]string, len(columns))
	for i, column := range columns {
		wrapped[i] = g.Wrap(column)
	}
	return strings.Join(wrapped, ", ")
}

func (g *Grammar) columnizeNames(columns []string) string {
	wrapped := make([]string, len(columns))
	for i, column := range columns {
		wrapped[i] = g.Wrap(column)
	}
	return strings.Join(wrapped, ", ")
}

// Parameter renders the placeholder for one value; expressions are inlined.
func (g *Grammar) Parameter(value any) string {
	if expr, ok := value.(query.Expression); ok {
		return expr.Value()
	}
	return "?"
}

// Parameterize renders a comma-joined placeholder list.
func (g *Grammar) Parameterize(values []any) string {
	params := make([]string, len(values))
	for i, value := range values {
		params[i] = g.Parameter(value)
	}
	return strings.Join(params, ", ")
}

// QuoteString renders a single-quoted SQL string literal. The value is
// trusted; this is meant for DDL contexts such as enum members and comments,
// never for runtime values, which belong in bindings.
func (g *Grammar) QuoteString(value string) string {
	return "'" + value + "'"
}

// CompileRandom renders the dialect's random ordering expression.
func (g *Grammar) CompileRandom(seed string) string {
	return g.dialect.CompileRandom(seed)
}

func (g *Grammar) unsupported(feature string) error {
	return fmt.Errorf("%s: %s: %w", g.dialect.Name(), feature, query.ErrUnsupportedFeature)
}

func (g *Grammar) invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", query.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
