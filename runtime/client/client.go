// Package client executes compiled querykit statements over database/sql.
// It is the execution collaborator of the query and sqlgen packages: builders
// hand over compiled SQL plus flattened bindings, the client rebinds
// placeholders where the driver needs it and maps rows back out.
package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/lib/pq"              // postgres driver
	_ "github.com/mattn/go-sqlite3"    // sqlite driver

	"github.com/satishbabariya/querykit/config"
	"github.com/satishbabariya/querykit/query"
	"github.com/satishbabariya/querykit/query/sqlgen"
)

// ErrUnsupportedDriver reports a driver name outside mysql, postgres and
// sqlite.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// executor is the common surface of *sql.DB and *sql.Tx the statement
// helpers run against.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Client binds a database handle to the grammar that compiles for it.
type Client struct {
	db          *sql.DB
	driver      string
	grammar     *sqlgen.Grammar
	middlewares []Middleware
}

// Option configures a client at construction.
type Option func(*settings)

type settings struct {
	prefix      string
	middlewares []Middleware
}

// WithTablePrefix prepends prefix to every table name the grammar wraps.
func WithTablePrefix(prefix string) Option {
	return func(s *settings) { s.prefix = prefix }
}

// WithMiddleware installs query middlewares at construction.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(s *settings) { s.middlewares = append(s.middlewares, middlewares...) }
}

// Open connects to the database named by driver ("mysql", "postgres"/
// "postgresql", "sqlite"/"sqlite3") and pairs it with the matching grammar.
func Open(driver, dsn string, opts ...Option) (*Client, error) {
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	return FromDB(driver, db, opts...)
}

// FromDB wraps an existing database handle. The caller keeps ownership of
// pool settings; Close still closes the handle.
func FromDB(driver string, db *sql.DB, opts ...Option) (*Client, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	canonical, err := canonicalDriver(driver)
	if err != nil {
		return nil, err
	}
	return &Client{
		db:          db,
		driver:      canonical,
		grammar:     grammarFor(canonical, s.prefix),
		middlewares: s.middlewares,
	}, nil
}

// FromConfig opens a client from a loaded configuration and applies its
// pool settings.
func FromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg.Prefix != "" {
		opts = append([]Option{WithTablePrefix(cfg.Prefix)}, opts...)
	}
	c, err := Open(cfg.Driver, cfg.DSN, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		c.db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		c.db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		c.db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return c, nil
}

func canonicalDriver(driver string) (string, error) {
	switch driver {
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql", "mariadb":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
}

// driverName maps a canonical driver to the database/sql driver it
// registers as.
func driverName(driver string) (string, error) {
	canonical, err := canonicalDriver(driver)
	if err != nil {
		return "", err
	}
	switch canonical {
	case "postgres":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	default:
		return "sqlite3", nil
	}
}

func grammarFor(canonical, prefix string) *sqlgen.Grammar {
	var opts []sqlgen.Option
	if prefix != "" {
		opts = append(opts, sqlgen.WithTablePrefix(prefix))
	}
	switch canonical {
	case "postgres":
		return sqlgen.NewPostgres(opts...)
	case "mysql":
		return sqlgen.NewMySQL(opts...)
	default:
		return sqlgen.NewSQLite(opts...)
	}
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Driver returns the canonical driver name.
func (c *Client) Driver() string {
	return c.driver
}

// Grammar returns the grammar statements compile through.
func (c *Client) Grammar() *sqlgen.Grammar {
	return c.grammar
}

// Table starts a builder against the given table, bound to the client's
// grammar.
func (c *Client) Table(table string) *query.Builder {
	return query.New(c.grammar).From(table)
}

// NewQuery starts an empty builder bound to the client's grammar.
func (c *Client) NewQuery() *query.Builder {
	return query.New(c.grammar)
}

// rebind rewrites placeholders for drivers that do not accept "?".
func (c *Client) rebind(sqlText string) string {
	if c.driver == "postgres" {
		return sqlgen.RebindSQL(sqlText)
	}
	return sqlText
}

// Select compiles and runs the builder, returning every row as a column
// name to value map.
func (c *Client) Select(ctx context.Context, b *query.Builder) ([]map[string]any, error) {
	return c.selectRows(ctx, c.db, b)
}

// First runs the builder capped to one row. It returns nil without an error
// when nothing matches.
func (c *Client) First(ctx context.Context, b *query.Builder) (map[string]any, error) {
	rows, err := c.selectRows(ctx, c.db, b.Clone().Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Exists reports whether the builder matches at least one row.
func (c *Client) Exists(ctx context.Context, b *query.Builder) (bool, error) {
	return c.exists(ctx, c.db, b)
}

// Count runs a count aggregate over the builder.
func (c *Client) Count(ctx context.Context, b *query.Builder, columns ...any) (int64, error) {
	value, err := c.aggregate(ctx, c.db, b, "count", columns...)
	if err != nil {
		return 0, err
	}
	return toInt64(value)
}

// Min runs a min aggregate over column.
func (c *Client) Min(ctx context.Context, b *query.Builder, column any) (any, error) {
	return c.aggregate(ctx, c.db, b, "min", column)
}

// Max runs a max aggregate over column.
func (c *Client) Max(ctx context.Context, b *query.Builder, column any) (any, error) {
	return c.aggregate(ctx, c.db, b, "max", column)
}

// Sum runs a sum aggregate over column.
func (c *Client) Sum(ctx context.Context, b *query.Builder, column any) (any, error) {
	return c.aggregate(ctx, c.db, b, "sum", column)
}

// Avg runs an avg aggregate over column.
func (c *Client) Avg(ctx context.Context, b *query.Builder, column any) (any, error) {
	return c.aggregate(ctx, c.db, b, "avg", column)
}

// Insert writes one or more records into the builder's table. Columns come
// from the first record and compile in sorted order.
func (c *Client) Insert(ctx context.Context, b *query.Builder, records ...map[string]any) error {
	return c.insert(ctx, c.db, b, records)
}

// InsertOrIgnore inserts records, skipping unique-key collisions, and
// returns the number of affected rows.
func (c *Client) InsertOrIgnore(ctx context.Context, b *query.Builder, records ...map[string]any) (int64, error) {
	return c.insertOrIgnore(ctx, c.db, b, records)
}

// InsertUsing inserts the rows produced by sub into the listed columns.
func (c *Client) InsertUsing(ctx context.Context, b *query.Builder, columns []string, sub *query.Builder) (int64, error) {
	return c.insertUsing(ctx, c.db, b, columns, sub)
}

// Upsert inserts records and updates the listed columns when uniqueBy
// collides. A nil update list refreshes every inserted column.
func (c *Client) Upsert(ctx context.Context, b *query.Builder, records []map[string]any, uniqueBy, update []string) (int64, error) {
	return c.upsert(ctx, c.db, b, records, uniqueBy, update)
}

// Update applies the set map to the rows the builder matches and returns
// the number of affected rows.
func (c *Client) Update(ctx context.Context, b *query.Builder, values map[string]any) (int64, error) {
	return c.update(ctx, c.db, b, values)
}

// Delete removes the rows the builder matches and returns the number of
// affected rows.
func (c *Client) Delete(ctx context.Context, b *query.Builder) (int64, error) {
	return c.delete(ctx, c.db, b)
}

// Truncate empties the builder's table, running each compiled statement in
// order.
func (c *Client) Truncate(ctx context.Context, b *query.Builder) error {
	return c.truncate(ctx, c.db, b)
}

// Exec runs a raw statement as written; no rebinding is applied.
func (c *Client) Exec(ctx context.Context, sqlText string, args ...any) (sql.Result, error) {
	return c.exec(ctx, c.db, sqlText, args)
}

// Query runs a raw query as written and maps the rows.
func (c *Client) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	rows, err := c.queryRows(ctx, c.db, sqlText, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanMaps(rows)
}

func (c *Client) selectRows(ctx context.Context, run executor, b *query.Builder) ([]map[string]any, error) {
	sqlText, err := b.ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := c.queryRows(ctx, run, c.rebind(sqlText), b.Bindings())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanMaps(rows)
}

func (c *Client) exists(ctx context.Context, run executor, b *query.Builder) (bool, error) {
	sqlText, err := c.grammar.CompileExists(b)
	if err != nil {
		return false, err
	}
	rows, err := c.queryRows(ctx, run, c.rebind(sqlText), b.Bindings())
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var exists bool
	if rows.Next() {
		if err := rows.Scan(&exists); err != nil {
			return false, err
		}
	}
	return exists, rows.Err()
}

func (c *Client) aggregate(ctx context.Context, run executor, b *query.Builder, function string, columns ...any) (any, error) {
	rows, err := c.selectRows(ctx, run, b.Clone().Aggregate(function, columns...))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0]["aggregate"], nil
}

func (c *Client) insert(ctx context.Context, run executor, b *query.Builder, records []map[string]any) error {
	sqlText, err := c.grammar.CompileInsert(b, records)
	if err != nil {
		return err
	}
	_, err = c.exec(ctx, run, c.rebind(sqlText), query.InsertBindings(records))
	return err
}

func (c *Client) insertOrIgnore(ctx context.Context, run executor, b *query.Builder, records []map[string]any) (int64, error) {
	sqlText, err := c.grammar.CompileInsertOrIgnore(b, records)
	if err != nil {
		return 0, err
	}
	return c.execAffected(ctx, run, c.rebind(sqlText), query.InsertBindings(records))
}

func (c *Client) insertUsing(ctx context.Context, run executor, b *query.Builder, columns []string, sub *query.Builder) (int64, error) {
	sqlText, err := c.grammar.CompileInsertUsing(b, columns, sub)
	if err != nil {
		return 0, err
	}
	return c.execAffected(ctx, run, c.rebind(sqlText), sub.Bindings())
}

func (c *Client) upsert(ctx context.Context, run executor, b *query.Builder, records []map[string]any, uniqueBy, update []string) (int64, error) {
	sqlText, err := c.grammar.CompileUpsert(b, records, uniqueBy, update)
	if err != nil {
		return 0, err
	}
	return c.execAffected(ctx, run, c.rebind(sqlText), query.InsertBindings(records))
}

func (c *Client) update(ctx context.Context, run executor, b *query.Builder, values map[string]any) (int64, error) {
	sqlText, err := c.grammar.CompileUpdate(b, values)
	if err != nil {
		return 0, err
	}
	bindings := b.BindingsForUpdate(query.UpdateValues(values))
	return c.execAffected(ctx, run, c.rebind(sqlText), bindings)
}

func (c *Client) delete(ctx context.Context, run executor, b *query.Builder) (int64, error) {
	sqlText, err := c.grammar.CompileDelete(b)
	if err != nil {
		return 0, err
	}
	return c.execAffected(ctx, run, c.rebind(sqlText), b.BindingsForDelete())
}

func (c *Client) truncate(ctx context.Context, run executor, b *query.Builder) error {
	statements, err := c.grammar.CompileTruncate(b)
	if err != nil {
		return err
	}
	for _, statement := range statements {
		if _, err := c.exec(ctx, run, c.rebind(statement.SQL), statement.Bindings); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) execAffected(ctx context.Context, run executor, sqlText string, bindings []any) (int64, error) {
	result, err := c.exec(ctx, run, sqlText, bindings)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (c *Client) exec(ctx context.Context, run executor, sqlText string, bindings []any) (sql.Result, error) {
	var result sql.Result
	err := c.runMiddleware(ctx, &QueryEvent{SQL: sqlText, Bindings: bindings}, func() error {
		var execErr error
		result, execErr = run.ExecContext(ctx, sqlText, bindings...)
		return execErr
	})
	return result, err
}

func (c *Client) queryRows(ctx context.Context, run executor, sqlText string, bindings []any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := c.runMiddleware(ctx, &QueryEvent{SQL: sqlText, Bindings: bindings}, func() error {
		var queryErr error
		rows, queryErr = run.QueryContext(ctx, sqlText, bindings...)
		return queryErr
	})
	return rows, err
}

// toInt64 widens the driver value of a count aggregate.
func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		var n int64
		_, err := fmt.Sscan(v, &n)
		return n, err
	default:
		return 0, fmt.Errorf("unexpected count value of type %T", value)
	}
}
