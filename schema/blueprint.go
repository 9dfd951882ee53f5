// Package schema builds and compiles DDL statements. A Blueprint collects
// column definitions and table commands through a fluent API; a Grammar
// turns the blueprint into dialect-specific statements. Blueprints never
// touch the database themselves; the Builder facade executes what the
// grammar compiles.
package schema

import "strings"

type columnType string

const (
	typeBigInteger   columnType = "bigInteger"
	typeBinary       columnType = "binary"
	typeBoolean      columnType = "boolean"
	typeChar         columnType = "char"
	typeDate         columnType = "date"
	typeDateTime     columnType = "dateTime"
	typeDecimal      columnType = "decimal"
	typeDouble       columnType = "double"
	typeEnum         columnType = "enum"
	typeFloat        columnType = "float"
	typeInteger      columnType = "integer"
	typeJSON         columnType = "json"
	typeSmallInteger columnType = "smallInteger"
	typeString       columnType = "string"
	typeText         columnType = "text"
	typeTime         columnType = "time"
	typeTimestamp    columnType = "timestamp"
	typeTinyInteger  columnType = "tinyInteger"
	typeUUID         columnType = "uuid"
)

// ColumnDefinition describes one column of a blueprint. Modifier methods
// return the definition so calls chain.
type ColumnDefinition struct {
	name          string
	columnType    columnType
	length        int
	total         int
	places        int
	allowed       []string
	nullable      bool
	hasDefault    bool
	defaultValue  any
	unsigned      bool
	autoIncrement bool
	unique        bool
	primary       bool
	comment       string
	useCurrent    bool
	after         string
}

// Nullable allows null values.
func (c *ColumnDefinition) Nullable() *ColumnDefinition {
	c.nullable = true
	return c
}

// Default sets the column default.
func (c *ColumnDefinition) Default(value any) *ColumnDefinition {
	c.hasDefault = true
	c.defaultValue = value
	return c
}

// Unsigned marks an integer column unsigned.
func (c *ColumnDefinition) Unsigned() *ColumnDefinition {
	c.unsigned = true
	return c
}

// AutoIncrement makes an integer column auto-incrementing and implies the
// primary key.
func (c *ColumnDefinition) AutoIncrement() *ColumnDefinition {
	c.autoIncrement = true
	return c
}

// Unique adds a unique index over the column.
func (c *ColumnDefinition) Unique() *ColumnDefinition {
	c.unique = true
	return c
}

// Primary marks the column as the primary key.
func (c *ColumnDefinition) Primary() *ColumnDefinition {
	c.primary = true
	return c
}

// Comment attaches a comment where the dialect supports one.
func (c *ColumnDefinition) Comment(comment string) *ColumnDefinition {
	c.comment = comment
	return c
}

// UseCurrent defaults a timestamp column to the current time.
func (c *ColumnDefinition) UseCurrent() *ColumnDefinition {
	c.useCurrent = true
	return c
}

// After positions the column after an existing one (MySQL only; other
// dialects ignore it).
func (c *ColumnDefinition) After(column string) *ColumnDefinition {
	c.after = column
	return c
}

type indexKind string

const (
	indexPrimary indexKind = "primary"
	indexUnique  indexKind = "unique"
	indexPlain   indexKind = "index"
)

// Typed table commands. The grammar dispatches on the concrete type, so
// every command carries exactly the fields it needs.
type (
	createCommand struct{}

	dropColumnCommand struct{ columns []string }

	renameColumnCommand struct{ from, to string }

	indexCommand struct {
		kind    indexKind
		name    string
		columns []string
	}

	dropIndexCommand struct{ name string }

	foreignCommand struct{ definition *ForeignKeyDefinition }
)

// ForeignKeyDefinition describes a foreign key constraint being built.
type ForeignKeyDefinition struct {
	name       string
	columns    []string
	references []string
	on         string
	onDelete   string
	onUpdate   string
}

// References names the referenced column(s).
func (f *ForeignKeyDefinition) References(columns ...string) *ForeignKeyDefinition {
	f.references = columns
	return f
}

// On names the referenced table.
func (f *ForeignKeyDefinition) On(table string) *ForeignKeyDefinition {
	f.on = table
	return f
}

// OnDelete sets the delete action ("cascade", "set null", "restrict").
func (f *ForeignKeyDefinition) OnDelete(action string) *ForeignKeyDefinition {
	f.onDelete = action
	return f
}

// OnUpdate sets the update action.
func (f *ForeignKeyDefinition) OnUpdate(action string) *ForeignKeyDefinition {
	f.onUpdate = action
	return f
}

// Blueprint collects the columns and commands of one DDL change set.
type Blueprint struct {
	table    string
	creating bool
	columns  []*ColumnDefinition
	commands []any
}

// NewBlueprint starts a blueprint for table.
func NewBlueprint(table string) *Blueprint {
	return &Blueprint{table: table}
}

// Table returns the table the blueprint targets.
func (bp *Blueprint) Table() string {
	return bp.table
}

// Create marks the blueprint as creating the table instead of altering it.
func (bp *Blueprint) Create() *Blueprint {
	bp.creating = true
	bp.commands = append(bp.commands, createCommand{})
	return bp
}

func (bp *Blueprint) addColumn(t columnType, name string) *ColumnDefinition {
	column := &ColumnDefinition{name: name, columnType: t}
	bp.columns = append(bp.columns, column)
	return column
}

// ID adds an auto-incrementing unsigned big integer primary key named "id"
// unless another name is given.
func (bp *Blueprint) ID(name ...string) *ColumnDefinition {
	column := "id"
	if len(name) > 0 {
		column = name[0]
	}
	return bp.BigInteger(column).Unsigned().AutoIncrement()
}

// String adds a varchar column, 255 wide unless a length is given.
func (bp *Blueprint) String(name string, length ...int) *ColumnDefinition {
	column := bp.addColumn(typeString, name)
	column.length = 255
	if len(length) > 0 {
		column.length = length[0]
	}
	return column
}

// Char adds a fixed-width char column, 255 wide unless a length is given.
func (bp *Blueprint) Char(name string, length ...int) *ColumnDefinition {
	column := bp.addColumn(typeChar, name)
	column.length = 255
	if len(length) > 0 {
		column.length = length[0]
	}
	return column
}

// Text adds a text column.
func (bp *Blueprint) Text(name string) *ColumnDefinition {
	return bp.addColumn(typeText, name)
}

// Integer adds an integer column.
func (bp *Blueprint) Integer(name string) *ColumnDefinition {
	return bp.addColumn(typeInteger, name)
}

// TinyInteger adds a tiny integer column.
func (bp *Blueprint) TinyInteger(name string) *ColumnDefinition {
	return bp.addColumn(typeTinyInteger, name)
}

// SmallInteger adds a small integer column.
func (bp *Blueprint) SmallInteger(name string) *ColumnDefinition {
	return bp.addColumn(typeSmallInteger, name)
}

// BigInteger adds a big integer column.
func (bp *Blueprint) BigInteger(name string) *ColumnDefinition {
	return bp.addColumn(typeBigInteger, name)
}

// UnsignedInteger adds an unsigned integer column.
func (bp *Blueprint) UnsignedInteger(name string) *ColumnDefinition {
	return bp.Integer(name).Unsigned()
}

// UnsignedBigInteger adds an unsigned big integer column.
func (bp *Blueprint) UnsignedBigInteger(name string) *ColumnDefinition {
	return bp.BigInteger(name).Unsigned()
}

// Boolean adds a boolean column.
func (bp *Blueprint) Boolean(name string) *ColumnDefinition {
	return bp.addColumn(typeBoolean, name)
}

// Decimal adds a fixed-precision column.
func (bp *Blueprint) Decimal(name string, total, places int) *ColumnDefinition {
	column := bp.addColumn(typeDecimal, name)
	column.total = total
	column.places = places
	return column
}

// Float adds a single-precision column.
func (bp *Blueprint) Float(name string) *ColumnDefinition {
	return bp.addColumn(typeFloat, name)
}

// Double adds a double-precision column.
func (bp *Blueprint) Double(name string) *ColumnDefinition {
	return bp.addColumn(typeDouble, name)
}

// Date adds a date column.
func (bp *Blueprint) Date(name string) *ColumnDefinition {
	return bp.addColumn(typeDate, name)
}

// DateTime adds a datetime column.
func (bp *Blueprint) DateTime(name string) *ColumnDefinition {
	return bp.addColumn(typeDateTime, name)
}

// Time adds a time column.
func (bp *Blueprint) Time(name string) *ColumnDefinition {
	return bp.addColumn(typeTime, name)
}

// Timestamp adds a timestamp column.
func (bp *Blueprint) Timestamp(name string) *ColumnDefinition {
	return bp.addColumn(typeTimestamp, name)
}

// Timestamps adds nullable created_at and updated_at timestamps.
func (bp *Blueprint) Timestamps() {
	bp.Timestamp("created_at").Nullable()
	bp.Timestamp("updated_at").Nullable()
}

// SoftDeletes adds a nullable deleted_at timestamp.
func (bp *Blueprint) SoftDeletes() *ColumnDefinition {
	return bp.Timestamp("deleted_at").Nullable()
}

// JSON adds a json column.
func (bp *Blueprint) JSON(name string) *ColumnDefinition {
	return bp.addColumn(typeJSON, name)
}

// UUID adds a uuid column.
func (bp *Blueprint) UUID(name string) *ColumnDefinition {
	return bp.addColumn(typeUUID, name)
}

// Enum adds a column constrained to the allowed values.
func (bp *Blueprint) Enum(name string, allowed []string) *ColumnDefinition {
	column := bp.addColumn(typeEnum, name)
	column.allowed = allowed
	return column
}

// Binary adds a binary blob column.
func (bp *Blueprint) Binary(name string) *ColumnDefinition {
	return bp.addColumn(typeBinary, name)
}

// Primary adds a primary key over the columns.
func (bp *Blueprint) Primary(columns ...string) {
	bp.indexCommand(indexPrimary, columns)
}

// Unique adds a unique index over the columns.
func (bp *Blueprint) Unique(columns ...string) {
	bp.indexCommand(indexUnique, columns)
}

// Index adds a plain index over the columns.
func (bp *Blueprint) Index(columns ...string) {
	bp.indexCommand(indexPlain, columns)
}

func (bp *Blueprint) indexCommand(kind indexKind, columns []string) {
	bp.commands = append(bp.commands, indexCommand{
		kind:    kind,
		name:    bp.indexName(kind, columns),
		columns: columns,
	})
}

// indexName derives the conventional table_column_kind name.
func (bp *Blueprint) indexName(kind indexKind, columns []string) string {
	parts := append([]string{bp.table}, columns...)
	name := strings.Join(append(parts, string(kind)), "_")
	return strings.ReplaceAll(strings.ReplaceAll(name, "-", "_"), ".", "_")
}

// DropIndex drops an index by name.
func (bp *Blueprint) DropIndex(name string) {
	bp.commands = append(bp.commands, dropIndexCommand{name: name})
}

// DropColumn drops the named columns.
func (bp *Blueprint) DropColumn(columns ...string) {
	bp.commands = append(bp.commands, dropColumnCommand{columns: columns})
}

// RenameColumn renames a column.
func (bp *Blueprint) RenameColumn(from, to string) {
	bp.commands = append(bp.commands, renameColumnCommand{from: from, to: to})
}

// Foreign starts a foreign key over the columns. Finish it with References
// and On.
func (bp *Blueprint) Foreign(columns ...string) *ForeignKeyDefinition {
	definition := &ForeignKeyDefinition{
		columns: columns,
		name:    bp.indexName("foreign", columns),
	}
	bp.commands = append(bp.commands, foreignCommand{definition: definition})
	return definition
}
