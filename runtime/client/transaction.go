package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/querykit/query"
)

// Tx runs statements inside a database transaction. It exposes the same
// statement API as Client, compiled through the same grammar.
type Tx struct {
	tx     *sql.Tx
	client *Client
	depth  int
}

// TxFunc runs within a transaction. Returning an error rolls the
// transaction back.
type TxFunc func(tx *Tx) error

// Transaction begins a transaction, runs fn and commits. The transaction is
// rolled back when fn returns an error or panics; panics are re-raised
// after the rollback.
func (c *Client) Transaction(ctx context.Context, fn TxFunc) error {
	return c.TransactionWithOptions(ctx, nil, fn)
}

// TransactionWithOptions is Transaction with explicit isolation and
// read-only options.
func (c *Client) TransactionWithOptions(ctx context.Context, opts *sql.TxOptions, fn TxFunc) error {
	sqlTx, err := c.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tx := &Tx{tx: sqlTx, client: c}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction: %v, rollback: %w", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Nested runs fn inside a savepoint so an inner failure rolls back to the
// savepoint without aborting the whole transaction.
func (tx *Tx) Nested(ctx context.Context, fn TxFunc) error {
	tx.depth++
	savepoint := fmt.Sprintf("sp_%d", tx.depth)
	defer func() { tx.depth-- }()

	if _, err := tx.tx.ExecContext(ctx, "savepoint "+savepoint); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_, _ = tx.tx.ExecContext(ctx, "rollback to savepoint "+savepoint)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if _, rbErr := tx.tx.ExecContext(ctx, "rollback to savepoint "+savepoint); rbErr != nil {
			return fmt.Errorf("nested transaction: %v, rollback: %w", err, rbErr)
		}
		return err
	}

	if _, err := tx.tx.ExecContext(ctx, "release savepoint "+savepoint); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// Table starts a builder against the given table.
func (tx *Tx) Table(table string) *query.Builder {
	return tx.client.Table(table)
}

// Select runs the builder inside the transaction.
func (tx *Tx) Select(ctx context.Context, b *query.Builder) ([]map[string]any, error) {
	return tx.client.selectRows(ctx, tx.tx, b)
}

// First runs the builder capped to one row inside the transaction.
func (tx *Tx) First(ctx context.Context, b *query.Builder) (map[string]any, error) {
	rows, err := tx.client.selectRows(ctx, tx.tx, b.Clone().Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Exists reports whether the builder matches a row inside the transaction.
func (tx *Tx) Exists(ctx context.Context, b *query.Builder) (bool, error) {
	return tx.client.exists(ctx, tx.tx, b)
}

// Count runs a count aggregate inside the transaction.
func (tx *Tx) Count(ctx context.Context, b *query.Builder, columns ...any) (int64, error) {
	value, err := tx.client.aggregate(ctx, tx.tx, b, "count", columns...)
	if err != nil {
		return 0, err
	}
	return toInt64(value)
}

// Insert writes records inside the transaction.
func (tx *Tx) Insert(ctx context.Context, b *query.Builder, records ...map[string]any) error {
	return tx.client.insert(ctx, tx.tx, b, records)
}

// Upsert inserts or updates records inside the transaction.
func (tx *Tx) Upsert(ctx context.Context, b *query.Builder, records []map[string]any, uniqueBy, update []string) (int64, error) {
	return tx.client.upsert(ctx, tx.tx, b, records, uniqueBy, update)
}

// Update applies the set map inside the transaction.
func (tx *Tx) Update(ctx context.Context, b *query.Builder, values map[string]any) (int64, error) {
	return tx.client.update(ctx, tx.tx, b, values)
}

// Delete removes matched rows inside the transaction.
func (tx *Tx) Delete(ctx context.Context, b *query.Builder) (int64, error) {
	return tx.client.delete(ctx, tx.tx, b)
}

// Exec runs a raw statement inside the transaction; no rebinding is
// applied.
func (tx *Tx) Exec(ctx context.Context, sqlText string, args ...any) (sql.Result, error) {
	return tx.client.exec(ctx, tx.tx, sqlText, args)
}

// Query runs a raw query inside the transaction and maps the rows.
func (tx *Tx) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	rows, err := tx.client.queryRows(ctx, tx.tx, sqlText, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanMaps(rows)
}
