package query

// Statement pairs one compiled SQL string with the bindings it needs.
// Truncation compiles to an ordered list of these on dialects that emulate
// it with several statements.
type Statement struct {
	SQL      string
	Bindings []any
}

// Grammar turns builder state into SQL text for one dialect. Compilation is
// a pure read of the builder: implementations must not mutate it, so the
// same builder can be compiled repeatedly with identical results.
//
// The wrapping and parameter primitives are part of the contract because
// schema builders and other collaborators reuse them outside of statement
// compilation.
type Grammar interface {
	CompileSelect(b *Builder) (string, error)
	CompileExists(b *Builder) (string, error)
	CompileInsert(b *Builder, values []map[string]any) (string, error)
	CompileInsertOrIgnore(b *Builder, values []map[string]any) (string, error)
	CompileInsertUsing(b *Builder, columns []string, sub *Builder) (string, error)
	CompileUpsert(b *Builder, values []map[string]any, uniqueBy []string, update []string) (string, error)
	CompileUpdate(b *Builder, values map[string]any) (string, error)
	CompileDelete(b *Builder) (string, error)
	CompileTruncate(b *Builder) ([]Statement, error)

	// CompileRandom renders the dialect's random-ordering function.
	CompileRandom(seed string) string

	Wrap(value any) string
	WrapTable(table any) string
	Columnize(columns []any) string
	Parameter(value any) string
	Parameterize(values []any) string
	QuoteString(value string) string

	TablePrefix() string
}
