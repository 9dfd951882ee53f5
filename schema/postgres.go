package schema

import (
	"fmt"

	"github.com/satishbabariya/querykit/query"
)

type postgresDialect struct {
	baseDialect
}

func (postgresDialect) name() string {
	return "postgres"
}

func (postgresDialect) defaultBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

// columnType maps blueprint types; auto-incrementing integers become the
// serial family and unsigned is ignored.
func (postgresDialect) columnType(g *Grammar, c *ColumnDefinition) (string, error) {
	switch c.columnType {
	case typeBigInteger:
		if c.autoIncrement {
			return "bigserial", nil
		}
		return "bigint", nil
	case typeInteger:
		if c.autoIncrement {
			return "serial", nil
		}
		return "integer", nil
	case typeSmallInteger, typeTinyInteger:
		if c.autoIncrement {
			return "smallserial", nil
		}
		return "smallint", nil
	case typeString:
		return fmt.Sprintf("varchar(%d)", c.length), nil
	case typeChar:
		return fmt.Sprintf("char(%d)", c.length), nil
	case typeText:
		return "text", nil
	case typeBoolean:
		return "boolean", nil
	case typeDecimal:
		return fmt.Sprintf("decimal(%d, %d)", c.total, c.places), nil
	case typeFloat:
		return "real", nil
	case typeDouble:
		return "double precision", nil
	case typeDate:
		return "date", nil
	case typeDateTime, typeTimestamp:
		return "timestamp", nil
	case typeTime:
		return "time", nil
	case typeJSON:
		return "json", nil
	case typeUUID:
		return "uuid", nil
	case typeEnum:
		return "varchar(255) check (" + g.wrap.Wrap(c.name) + " in (" + g.quoteAllowed(c.allowed) + "))", nil
	case typeBinary:
		return "bytea", nil
	}
	return "", fmt.Errorf("unknown column type %q: %w", c.columnType, query.ErrInvalidArgument)
}

func (postgresDialect) columnModifiers(g *Grammar, c *ColumnDefinition) string {
	modifiers := sharedModifiers(g, c)
	if c.autoIncrement && isIntegerType(c.columnType) {
		modifiers += " primary key"
	}
	return modifiers
}

func (postgresDialect) compileIndex(g *Grammar, table string, cmd indexCommand) (string, error) {
	switch cmd.kind {
	case indexPrimary:
		return "alter table " + g.wrap.WrapTable(table) + " add primary key (" + g.columnize(cmd.columns) + ")", nil
	case indexUnique:
		return "alter table " + g.wrap.WrapTable(table) + " add constraint " + g.wrap.Wrap(cmd.name) + " unique (" + g.columnize(cmd.columns) + ")", nil
	default:
		return "create index " + g.wrap.Wrap(cmd.name) + " on " + g.wrap.WrapTable(table) + " (" + g.columnize(cmd.columns) + ")", nil
	}
}

func (postgresDialect) compileDropIndex(g *Grammar, table string, cmd dropIndexCommand) string {
	return "drop index " + g.wrap.Wrap(cmd.name)
}

func (postgresDialect) compileForeign(g *Grammar, table string, cmd foreignCommand) (string, error) {
	return foreignConstraint(g, table, cmd)
}
