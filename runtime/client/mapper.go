package client

import (
	"context"
	"database/sql"
	"reflect"
	"strings"

	"github.com/satishbabariya/querykit/query"
)

// ScanMaps reads every remaining row into column name to value maps. Byte
// slices are converted to strings so drivers that return []byte for text
// columns produce comparable values.
func ScanMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// ScanStructs reads every remaining row into values of T, matching columns
// to fields by db tag first, then exact name, then a case-insensitive fold.
// Columns with no matching field are read and discarded.
func ScanStructs[T any](rows *sql.Rows) ([]T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []T
	for rows.Next() {
		var result T
		val := reflect.ValueOf(&result).Elem()
		typ := val.Type()

		pointers := make([]any, len(columns))
		for i, column := range columns {
			field, ok := fieldForColumn(typ, column)
			if !ok {
				var discard sql.NullString
				pointers[i] = &discard
				continue
			}
			fieldVal := val.FieldByIndex(field.Index)
			if !fieldVal.CanAddr() {
				var discard sql.NullString
				pointers[i] = &discard
				continue
			}
			pointers[i] = fieldVal.Addr().Interface()
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// SelectAs runs the builder and maps the rows into values of T.
func SelectAs[T any](ctx context.Context, c *Client, b *query.Builder) ([]T, error) {
	sqlText, err := b.ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := c.queryRows(ctx, c.db, c.rebind(sqlText), b.Bindings())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanStructs[T](rows)
}

func fieldForColumn(typ reflect.Type, column string) (reflect.StructField, bool) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if tag == column {
			return field, true
		}
		if tag == "" && field.Name == column {
			return field, true
		}
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Tag.Get("db") == "" && strings.EqualFold(field.Name, column) {
			return field, true
		}
	}
	return reflect.StructField{}, false
}
