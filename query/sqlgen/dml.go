package sqlgen

import (
	"strings"

	"github.com/satishbabariya/querykit/query"
)

// CompileInsert renders a multi-record insert. Record columns come from the
// first record, sorted, so identical input always compiles to identical
// text; see query.InsertColumns.
func (g *Grammar) CompileInsert(b *query.Builder, values []map[string]any) (string, error) {
	return g.compileInsertInto(b, values, "insert into")
}

// compileInsertInto is the shared insert body; the verb differs for the
// ignore forms.
func (g *Grammar) compileInsertInto(b *query.Builder, values []map[string]any, verb string) (string, error) {
	if len(values) == 0 {
		return "", g.invalid("insert needs at least one record")
	}
	columns := query.InsertColumns(values)
	if len(columns) == 0 {
		return "", g.invalid("insert records need at least one column")
	}
	rows := make([]string, len(values))
	for i, record := range values {
		params := make([]any, len(columns))
		for j, column := range columns {
			params[j] = record[column]
		}
		rows[i] = "(" + g.Parameterize(params) + ")"
	}
	return verb + " " + g.WrapTable(b.GetFrom()) +
		" (" + g.columnizeNames(columns) + ") values " + strings.Join(rows, ", "), nil
}

// CompileInsertOrIgnore renders an insert that skips rows colliding with an
// existing unique key, in the dialect's native form.
func (g *Grammar) CompileInsertOrIgnore(b *query.Builder, values []map[string]any) (string, error) {
	return g.dialect.CompileInsertOrIgnore(g, b, values)
}

// CompileInsertUsing renders an insert fed by a select.
func (g *Grammar) CompileInsertUsing(b *query.Builder, columns []string, sub *query.Builder) (string, error) {
	sql, err := g.CompileSelect(sub)
	if err != nil {
		return "", err
	}
	insert := "insert into " + g.WrapTable(b.GetFrom()) + " "
	if len(columns) > 0 {
		insert += "(" + g.columnizeNames(columns) + ") "
	}
	return insert + sql, nil
}

// CompileUpsert renders an insert that updates the listed columns when the
// uniqueBy key collides. A nil update list refreshes every inserted column.
func (g *Grammar) CompileUpsert(b *query.Builder, values []map[string]any, uniqueBy, update []string) (string, error) {
	if len(values) == 0 {
		return "", g.invalid("upsert needs at least one record")
	}
	if update == nil {
		update = query.InsertColumns(values)
	}
	return g.dialect.CompileUpsert(g, b, values, uniqueBy, update)
}

// CompileUpdate renders an update. Set columns compile in sorted order;
// BindingsForUpdate flattens the matching bindings.
func (g *Grammar) CompileUpdate(b *query.Builder, values map[string]any) (string, error) {
	if len(values) == 0 {
		return "", g.invalid("update needs at least one column")
	}
	columns := query.UpdateColumns(values)
	assignments := make([]string, len(columns))
	for i, column := range columns {
		assignments[i] = g.Wrap(column) + " = " + g.Parameter(values[column])
	}
	set := strings.Join(assignments, ", ")

	wheres, err := g.compileWheres(b, "where")
	if err != nil {
		return "", err
	}
	table := g.WrapTable(b.GetFrom())

	if joins := b.GetJoins(); len(joins) > 0 {
		if !g.dialect.Capabilities().JoinedUpdates {
			return "", g.unsupported("update with joins")
		}
		joinSQL, err := g.compileJoins(joins)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace("update " + table + " " + joinSQL + " set " + set + " " + wheres), nil
	}
	return strings.TrimSpace("update " + table + " set " + set + " " + wheres), nil
}

// CompileDelete renders a delete; the joined form compiles only on dialects
// that support it.
func (g *Grammar) CompileDelete(b *query.Builder) (string, error) {
	wheres, err := g.compileWheres(b, "where")
	if err != nil {
		return "", err
	}
	table := g.WrapTable(b.GetFrom())

	if joins := b.GetJoins(); len(joins) > 0 {
		if !g.dialect.Capabilities().JoinedDeletes {
			return "", g.unsupported("delete with joins")
		}
		joinSQL, err := g.compileJoins(joins)
		if err != nil {
			return "", err
		}
		// The delete target is the alias when the table carries one.
		parts := strings.Split(table, " as ")
		target := parts[len(parts)-1]
		return strings.TrimSpace("delete " + target + " from " + table + " " + joinSQL + " " + wheres), nil
	}
	return strings.TrimSpace("delete from " + table + " " + wheres), nil
}

// CompileTruncate renders the ordered statements that empty the table.
func (g *Grammar) CompileTruncate(b *query.Builder) ([]query.Statement, error) {
	return g.dialect.CompileTruncate(g, b)
}
