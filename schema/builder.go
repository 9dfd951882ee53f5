package schema

import (
	"context"
	"fmt"

	"github.com/satishbabariya/querykit/query"
	"github.com/satishbabariya/querykit/query/sqlgen"
	"github.com/satishbabariya/querykit/runtime/client"
)

// Builder applies blueprints to a database. It compiles through the schema
// grammar matching the client's driver and reuses the client's table prefix.
type Builder struct {
	client  *client.Client
	grammar *Grammar
}

// NewBuilder binds a schema builder to the client.
func NewBuilder(c *client.Client) *Builder {
	var opts []sqlgen.Option
	if prefix := c.Grammar().TablePrefix(); prefix != "" {
		opts = append(opts, sqlgen.WithTablePrefix(prefix))
	}
	var grammar *Grammar
	switch c.Driver() {
	case "postgres":
		grammar = NewPostgres(opts...)
	case "mysql":
		grammar = NewMySQL(opts...)
	default:
		grammar = NewSQLite(opts...)
	}
	return &Builder{client: c, grammar: grammar}
}

// Grammar returns the schema grammar the builder compiles through.
func (b *Builder) Grammar() *Grammar {
	return b.grammar
}

// Create builds a new table from the blueprint the callback fills in.
func (b *Builder) Create(ctx context.Context, table string, build func(*Blueprint)) error {
	bp := NewBlueprint(table)
	bp.Create()
	build(bp)
	return b.run(ctx, bp)
}

// Table alters an existing table with the changes the callback records.
func (b *Builder) Table(ctx context.Context, table string, build func(*Blueprint)) error {
	bp := NewBlueprint(table)
	build(bp)
	return b.run(ctx, bp)
}

// Drop removes a table.
func (b *Builder) Drop(ctx context.Context, table string) error {
	return b.execute(ctx, b.grammar.CompileDrop(table, false))
}

// DropIfExists removes a table if it is present.
func (b *Builder) DropIfExists(ctx context.Context, table string) error {
	return b.execute(ctx, b.grammar.CompileDrop(table, true))
}

// Rename renames a table.
func (b *Builder) Rename(ctx context.Context, from, to string) error {
	return b.execute(ctx, b.grammar.CompileRenameTable(from, to))
}

// HasTable reports whether the table exists, checking the catalog through
// the query builder.
func (b *Builder) HasTable(ctx context.Context, table string) (bool, error) {
	name := b.client.Grammar().TablePrefix() + table
	switch b.client.Driver() {
	case "mysql":
		return b.client.Exists(ctx, b.client.NewQuery().
			FromRaw("information_schema.tables").
			Where("table_schema", "=", query.Raw("database()")).
			Where("table_type", "=", "BASE TABLE").
			Where("table_name", "=", name))
	case "postgres":
		return b.client.Exists(ctx, b.client.NewQuery().
			FromRaw("information_schema.tables").
			Where("table_schema", "=", "public").
			Where("table_type", "=", "BASE TABLE").
			Where("table_name", "=", name))
	default:
		return b.client.Exists(ctx, b.client.NewQuery().
			FromRaw("sqlite_master").
			Where("type", "=", "table").
			Where("name", "=", name))
	}
}

// Tables lists the user tables in the connected database, sorted by name.
func (b *Builder) Tables(ctx context.Context) ([]string, error) {
	var builder *query.Builder
	switch b.client.Driver() {
	case "mysql":
		builder = b.client.NewQuery().
			Select("table_name").
			FromRaw("information_schema.tables").
			Where("table_schema", "=", query.Raw("database()")).
			Where("table_type", "=", "BASE TABLE").
			OrderBy("table_name")
	case "postgres":
		builder = b.client.NewQuery().
			Select("table_name").
			FromRaw("information_schema.tables").
			Where("table_schema", "=", "public").
			Where("table_type", "=", "BASE TABLE").
			OrderBy("table_name")
	default:
		builder = b.client.NewQuery().
			Select("name").
			FromRaw("sqlite_master").
			Where("type", "=", "table").
			OrderBy("name")
	}

	rows, err := b.client.Select(ctx, builder)
	if err != nil {
		return nil, err
	}
	// Catalog drivers differ on column label casing, so read the row's only
	// value instead of a fixed key.
	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		for _, value := range row {
			if name, ok := value.(string); ok {
				tables = append(tables, name)
			}
		}
	}
	return tables, nil
}

// HasColumn reports whether the column exists on the table.
func (b *Builder) HasColumn(ctx context.Context, table, column string) (bool, error) {
	name := b.client.Grammar().TablePrefix() + table
	switch b.client.Driver() {
	case "mysql":
		return b.client.Exists(ctx, b.client.NewQuery().
			FromRaw("information_schema.columns").
			Where("table_schema", "=", query.Raw("database()")).
			Where("table_name", "=", name).
			Where("column_name", "=", column))
	case "postgres":
		return b.client.Exists(ctx, b.client.NewQuery().
			FromRaw("information_schema.columns").
			Where("table_schema", "=", "public").
			Where("table_name", "=", name).
			Where("column_name", "=", column))
	default:
		return b.client.Exists(ctx, b.client.NewQuery().
			FromRaw("pragma_table_info(?)", name).
			Where("name", "=", column))
	}
}

func (b *Builder) run(ctx context.Context, bp *Blueprint) error {
	statements, err := b.grammar.Compile(bp)
	if err != nil {
		return err
	}
	for _, statement := range statements {
		if err := b.execute(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) execute(ctx context.Context, statement string) error {
	if _, err := b.client.Exec(ctx, statement); err != nil {
		return fmt.Errorf("execute %q: %w", statement, err)
	}
	return nil
}
