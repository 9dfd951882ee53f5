package schema

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/querykit/query"
)

type mysqlDialect struct {
	baseDialect
}

func (mysqlDialect) name() string {
	return "mysql"
}

func (mysqlDialect) columnType(g *Grammar, c *ColumnDefinition) (string, error) {
	var columnType string
	switch c.columnType {
	case typeBigInteger:
		columnType = "bigint"
	case typeInteger:
		columnType = "int"
	case typeSmallInteger:
		columnType = "smallint"
	case typeTinyInteger:
		columnType = "tinyint"
	case typeString:
		columnType = fmt.Sprintf("varchar(%d)", c.length)
	case typeChar:
		columnType = fmt.Sprintf("char(%d)", c.length)
	case typeText:
		columnType = "text"
	case typeBoolean:
		columnType = "tinyint(1)"
	case typeDecimal:
		columnType = fmt.Sprintf("decimal(%d, %d)", c.total, c.places)
	case typeFloat:
		columnType = "float"
	case typeDouble:
		columnType = "double"
	case typeDate:
		columnType = "date"
	case typeDateTime:
		columnType = "datetime"
	case typeTime:
		columnType = "time"
	case typeTimestamp:
		columnType = "timestamp"
	case typeJSON:
		columnType = "json"
	case typeUUID:
		columnType = "char(36)"
	case typeEnum:
		columnType = "enum(" + g.quoteAllowed(c.allowed) + ")"
	case typeBinary:
		columnType = "blob"
	default:
		return "", fmt.Errorf("unknown column type %q: %w", c.columnType, query.ErrInvalidArgument)
	}
	if c.unsigned && isIntegerType(c.columnType) {
		columnType += " unsigned"
	}
	return columnType, nil
}

func (mysqlDialect) columnModifiers(g *Grammar, c *ColumnDefinition) string {
	var sb strings.Builder
	sb.WriteString(sharedModifiers(g, c))
	if c.autoIncrement && isIntegerType(c.columnType) {
		sb.WriteString(" auto_increment primary key")
	}
	if c.comment != "" {
		sb.WriteString(" comment " + g.wrap.QuoteString(c.comment))
	}
	if c.after != "" {
		sb.WriteString(" after " + g.wrap.Wrap(c.after))
	}
	return sb.String()
}

func (mysqlDialect) compileRenameTable(g *Grammar, from, to string) string {
	return "rename table " + g.wrap.WrapTable(from) + " to " + g.wrap.WrapTable(to)
}

func (mysqlDialect) compileIndex(g *Grammar, table string, cmd indexCommand) (string, error) {
	alter := "alter table " + g.wrap.WrapTable(table)
	switch cmd.kind {
	case indexPrimary:
		return alter + " add primary key (" + g.columnize(cmd.columns) + ")", nil
	case indexUnique:
		return alter + " add unique " + g.wrap.Wrap(cmd.name) + " (" + g.columnize(cmd.columns) + ")", nil
	default:
		return alter + " add index " + g.wrap.Wrap(cmd.name) + " (" + g.columnize(cmd.columns) + ")", nil
	}
}

func (mysqlDialect) compileDropIndex(g *Grammar, table string, cmd dropIndexCommand) string {
	return "alter table " + g.wrap.WrapTable(table) + " drop index " + g.wrap.Wrap(cmd.name)
}

func (mysqlDialect) compileForeign(g *Grammar, table string, cmd foreignCommand) (string, error) {
	return foreignConstraint(g, table, cmd)
}
