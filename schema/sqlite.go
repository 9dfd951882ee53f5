package schema

import (
	"fmt"

	"github.com/satishbabariya/querykit/query"
)

type sqliteDialect struct {
	baseDialect
}

func (sqliteDialect) name() string {
	return "sqlite"
}

// columnType maps blueprint types onto SQLite's loose affinities; every
// integer width collapses to integer and unsigned is ignored.
func (sqliteDialect) columnType(g *Grammar, c *ColumnDefinition) (string, error) {
	switch c.columnType {
	case typeBigInteger, typeInteger, typeSmallInteger, typeTinyInteger:
		return "integer", nil
	case typeString, typeChar:
		return "varchar", nil
	case typeText:
		return "text", nil
	case typeBoolean:
		return "tinyint(1)", nil
	case typeDecimal:
		return "numeric", nil
	case typeFloat:
		return "float", nil
	case typeDouble:
		return "double", nil
	case typeDate:
		return "date", nil
	case typeDateTime, typeTimestamp:
		return "datetime", nil
	case typeTime:
		return "time", nil
	case typeJSON:
		return "text", nil
	case typeUUID:
		return "varchar", nil
	case typeEnum:
		return "varchar check (" + g.wrap.Wrap(c.name) + " in (" + g.quoteAllowed(c.allowed) + "))", nil
	case typeBinary:
		return "blob", nil
	}
	return "", fmt.Errorf("unknown column type %q: %w", c.columnType, query.ErrInvalidArgument)
}

func (sqliteDialect) columnModifiers(g *Grammar, c *ColumnDefinition) string {
	modifiers := sharedModifiers(g, c)
	if c.autoIncrement && isIntegerType(c.columnType) {
		modifiers += " primary key autoincrement"
	}
	return modifiers
}

func (sqliteDialect) compileIndex(g *Grammar, table string, cmd indexCommand) (string, error) {
	switch cmd.kind {
	case indexPrimary:
		return "", fmt.Errorf("adding a primary key to an existing table: %w", query.ErrUnsupportedFeature)
	case indexUnique:
		return "create unique index " + g.wrap.Wrap(cmd.name) + " on " + g.wrap.WrapTable(table) + " (" + g.columnize(cmd.columns) + ")", nil
	default:
		return "create index " + g.wrap.Wrap(cmd.name) + " on " + g.wrap.WrapTable(table) + " (" + g.columnize(cmd.columns) + ")", nil
	}
}

func (sqliteDialect) compileDropIndex(g *Grammar, table string, cmd dropIndexCommand) string {
	return "drop index " + g.wrap.Wrap(cmd.name)
}

func (sqliteDialect) compileForeign(g *Grammar, table string, cmd foreignCommand) (string, error) {
	return "", fmt.Errorf("adding a foreign key to an existing table: %w", query.ErrUnsupportedFeature)
}
