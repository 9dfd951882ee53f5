package query

import "sort"

// Record columns compile in sorted order so that identical input maps always
// produce identical SQL. The helpers here are the single source of that
// ordering; grammars and executors must both use them so placeholders and
// bindings stay in lockstep.

// InsertColumns returns the sorted column names of the first record. Every
// record in a batch is compiled against this list; a record missing one of
// the columns binds nil for it.
func InsertColumns(values []map[string]any) []string {
	if len(values) == 0 {
		return nil
	}
	columns := make([]string, 0, len(values[0]))
	for column := range values[0] {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// InsertBindings flattens the records in compiled column order, skipping
// raw expressions.
func InsertBindings(values []map[string]any) []any {
	columns := InsertColumns(values)
	bindings := make([]any, 0, len(values)*len(columns))
	for _, record := range values {
		for _, column := range columns {
			value := record[column]
			if !IsExpression(value) {
				bindings = append(bindings, value)
			}
		}
	}
	return bindings
}

// UpdateColumns returns the sorted column names of an update's set map.
func UpdateColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// UpdateValues returns the set values in compiled column order, expressions
// included; BindingsForUpdate strips them when flattening.
func UpdateValues(values map[string]any) []any {
	columns := UpdateColumns(values)
	ordered := make([]any, len(columns))
	for i, column := range columns {
		ordered[i] = values[column]
	}
	return ordered
}
