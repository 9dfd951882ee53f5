package schema

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/querykit/query"
	"github.com/satishbabariya/querykit/query/sqlgen"
)

// Grammar compiles blueprints into DDL statements for one dialect. Like the
// query grammar it is a pure reader; compiling a blueprint twice yields the
// same statements.
type Grammar struct {
	wrap    *sqlgen.Grammar
	dialect dialect
}

// dialect holds the pieces of DDL compilation that differ between engines.
type dialect interface {
	name() string
	columnType(g *Grammar, c *ColumnDefinition) (string, error)
	columnModifiers(g *Grammar, c *ColumnDefinition) string
	defaultBool(value bool) string
	compileRenameTable(g *Grammar, from, to string) string
	compileIndex(g *Grammar, table string, cmd indexCommand) (string, error)
	compileDropIndex(g *Grammar, table string, cmd dropIndexCommand) string
	compileForeign(g *Grammar, table string, cmd foreignCommand) (string, error)
}

// NewMySQL builds a schema grammar for MySQL and MariaDB.
func NewMySQL(opts ...sqlgen.Option) *Grammar {
	return &Grammar{wrap: sqlgen.NewMySQL(opts...), dialect: mysqlDialect{}}
}

// NewPostgres builds a schema grammar for PostgreSQL.
func NewPostgres(opts ...sqlgen.Option) *Grammar {
	return &Grammar{wrap: sqlgen.NewPostgres(opts...), dialect: postgresDialect{}}
}

// NewSQLite builds a schema grammar for SQLite.
func NewSQLite(opts ...sqlgen.Option) *Grammar {
	return &Grammar{wrap: sqlgen.NewSQLite(opts...), dialect: sqliteDialect{}}
}

// Name returns the dialect name.
func (g *Grammar) Name() string {
	return g.dialect.name()
}

// Compile renders the blueprint's change set in order: the create-table or
// add-column statements first, then every index, foreign key and column
// command the way it was recorded.
func (g *Grammar) Compile(bp *Blueprint) ([]string, error) {
	var statements []string

	if bp.creating {
		create, err := g.compileCreate(bp)
		if err != nil {
			return nil, err
		}
		statements = append(statements, create)
	} else {
		adds, err := g.compileAdds(bp)
		if err != nil {
			return nil, err
		}
		statements = append(statements, adds...)
	}

	for _, cmd := range bp.commands {
		switch c := cmd.(type) {
		case createCommand:
			// already rendered
		case indexCommand:
			statement, err := g.dialect.compileIndex(g, bp.table, c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", g.dialect.name(), err)
			}
			statements = append(statements, statement)
		case dropIndexCommand:
			statements = append(statements, g.dialect.compileDropIndex(g, bp.table, c))
		case foreignCommand:
			statement, err := g.dialect.compileForeign(g, bp.table, c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", g.dialect.name(), err)
			}
			statements = append(statements, statement)
		case dropColumnCommand:
			for _, column := range c.columns {
				statements = append(statements,
					"alter table "+g.wrap.WrapTable(bp.table)+" drop column "+g.wrap.Wrap(column))
			}
		case renameColumnCommand:
			statements = append(statements,
				"alter table "+g.wrap.WrapTable(bp.table)+" rename column "+g.wrap.Wrap(c.from)+" to "+g.wrap.Wrap(c.to))
		default:
			return nil, fmt.Errorf("%s: unknown schema command %T: %w", g.dialect.name(), cmd, query.ErrInvalidArgument)
		}
	}
	return statements, nil
}

// CompileDrop renders a drop-table statement.
func (g *Grammar) CompileDrop(table string, ifExists bool) string {
	if ifExists {
		return "drop table if exists " + g.wrap.WrapTable(table)
	}
	return "drop table " + g.wrap.WrapTable(table)
}

// CompileRenameTable renders a table rename.
func (g *Grammar) CompileRenameTable(from, to string) string {
	return g.dialect.compileRenameTable(g, from, to)
}

func (g *Grammar) compileCreate(bp *Blueprint) (string, error) {
	if len(bp.columns) == 0 {
		return "", fmt.Errorf("%s: create table %q without columns: %w", g.dialect.name(), bp.table, query.ErrInvalidArgument)
	}
	definitions := make([]string, len(bp.columns))
	for i, column := range bp.columns {
		definition, err := g.columnDefinition(column)
		if err != nil {
			return "", err
		}
		definitions[i] = definition
	}
	return "create table " + g.wrap.WrapTable(bp.table) + " (" + strings.Join(definitions, ", ") + ")", nil
}

func (g *Grammar) compileAdds(bp *Blueprint) ([]string, error) {
	statements := make([]string, len(bp.columns))
	for i, column := range bp.columns {
		definition, err := g.columnDefinition(column)
		if err != nil {
			return nil, err
		}
		statements[i] = "alter table " + g.wrap.WrapTable(bp.table) + " add column " + definition
	}
	return statements, nil
}

func (g *Grammar) columnDefinition(c *ColumnDefinition) (string, error) {
	columnType, err := g.dialect.columnType(g, c)
	if err != nil {
		return "", fmt.Errorf("%s: column %q: %w", g.dialect.name(), c.name, err)
	}
	return g.wrap.Wrap(c.name) + " " + columnType + g.dialect.columnModifiers(g, c), nil
}

// columnize wraps and joins plain column names.
func (g *Grammar) columnize(columns []string) string {
	wrapped := make([]string, len(columns))
	for i, column := range columns {
		wrapped[i] = g.wrap.Wrap(column)
	}
	return strings.Join(wrapped, ", ")
}

// defaultValue renders a column default literal.
func (g *Grammar) defaultValue(value any) string {
	switch v := value.(type) {
	case query.Expression:
		return v.String()
	case string:
		return g.wrap.QuoteString(v)
	case bool:
		return g.dialect.defaultBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// quoteAllowed quotes enum members for a check or enum type clause.
func (g *Grammar) quoteAllowed(allowed []string) string {
	quoted := make([]string, len(allowed))
	for i, value := range allowed {
		quoted[i] = g.wrap.QuoteString(value)
	}
	return strings.Join(quoted, ", ")
}

func isIntegerType(t columnType) bool {
	switch t {
	case typeBigInteger, typeInteger, typeSmallInteger, typeTinyInteger:
		return true
	}
	return false
}

// baseDialect carries the shared modifier rendering; dialects embed it and
// override what diverges.
type baseDialect struct{}

func (baseDialect) defaultBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

func (baseDialect) compileRenameTable(g *Grammar, from, to string) string {
	return "alter table " + g.wrap.WrapTable(from) + " rename to " + g.wrap.WrapTable(to)
}

// sharedModifiers renders the modifier chain common to every dialect:
// nullability, default, explicit primary key and unique.
func sharedModifiers(g *Grammar, c *ColumnDefinition) string {
	var sb strings.Builder
	if !c.nullable {
		sb.WriteString(" not null")
	}
	if c.useCurrent && (c.columnType == typeTimestamp || c.columnType == typeDateTime) {
		sb.WriteString(" default current_timestamp")
	} else if c.hasDefault {
		sb.WriteString(" default " + g.defaultValue(c.defaultValue))
	}
	if c.primary && !c.autoIncrement {
		sb.WriteString(" primary key")
	}
	if c.unique {
		sb.WriteString(" unique")
	}
	return sb.String()
}

// foreignConstraint renders the dialect-independent foreign key clause.
func foreignConstraint(g *Grammar, table string, cmd foreignCommand) (string, error) {
	fk := cmd.definition
	if fk.on == "" || len(fk.references) == 0 {
		return "", fmt.Errorf("foreign key on %q needs References and On: %w", table, query.ErrInvalidArgument)
	}
	statement := "alter table " + g.wrap.WrapTable(table) +
		" add constraint " + g.wrap.Wrap(fk.name) +
		" foreign key (" + g.columnize(fk.columns) + ")" +
		" references " + g.wrap.WrapTable(fk.on) + " (" + g.columnize(fk.references) + ")"
	if fk.onDelete != "" {
		statement += " on delete " + fk.onDelete
	}
	if fk.onUpdate != "" {
		statement += " on update " + fk.onUpdate
	}
	return statement, nil
}
