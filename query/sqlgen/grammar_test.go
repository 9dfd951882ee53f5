package sqlgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satishbabariya/querykit/query"
	"github.com/satishbabariya/querykit/query/sqlgen"
)

func TestWrap(t *testing.T) {
	mysql := sqlgen.NewMySQL()
	postgres := sqlgen.NewPostgres()
	sqlite := sqlgen.NewSQLite()

	tests := []struct {
		name         string
		value        any
		wantMySQL    string
		wantPostgres string
		wantSQLite   string
	}{
		{
			name:         "plain column",
			value:        "name",
			wantMySQL:    "`name`",
			wantPostgres: `"name"`,
			wantSQLite:   `"name"`,
		},
		{
			name:         "qualified column",
			value:        "users.name",
			wantMySQL:    "`users`.`name`",
			wantPostgres: `"users"."name"`,
			wantSQLite:   `"users"."name"`,
		},
		{
			name:         "star passes through",
			value:        "*",
			wantMySQL:    "*",
			wantPostgres: "*",
			wantSQLite:   "*",
		},
		{
			name:         "qualified star",
			value:        "users.*",
			wantMySQL:    "`users`.*",
			wantPostgres: `"users".*`,
			wantSQLite:   `"users".*`,
		},
		{
			name:         "alias",
			value:        "name as full_name",
			wantMySQL:    "`name` as `full_name`",
			wantPostgres: `"name" as "full_name"`,
			wantSQLite:   `"name" as "full_name"`,
		},
		{
			name:         "alias is case insensitive",
			value:        "name AS full_name",
			wantMySQL:    "`name` as `full_name`",
			wantPostgres: `"name" as "full_name"`,
			wantSQLite:   `"name" as "full_name"`,
		},
		{
			name:         "embedded quote is doubled",
			value:        "weird`name",
			wantMySQL:    "`weird``name`",
			wantPostgres: "\"weird`name\"",
			wantSQLite:   "\"weird`name\"",
		},
		{
			name:         "expression passes through",
			value:        query.Raw("count(*) as total"),
			wantMySQL:    "count(*) as total",
			wantPostgres: "count(*) as total",
			wantSQLite:   "count(*) as total",
		},
		{
			name:         "json selector",
			value:        "options->language",
			wantMySQL:    "json_unquote(json_extract(`options`, '$.\"language\"'))",
			wantPostgres: `"options"->>'language'`,
			wantSQLite:   `json_extract("options", '$."language"')`,
		},
		{
			name:         "nested json selector",
			value:        "options->prefs->dark",
			wantMySQL:    "json_unquote(json_extract(`options`, '$.\"prefs\".\"dark\"'))",
			wantPostgres: `"options"->'prefs'->>'dark'`,
			wantSQLite:   `json_extract("options", '$."prefs"."dark"')`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMySQL, mysql.Wrap(tt.value), "mysql")
			assert.Equal(t, tt.wantPostgres, postgres.Wrap(tt.value), "postgres")
			assert.Equal(t, tt.wantSQLite, sqlite.Wrap(tt.value), "sqlite")
		})
	}
}

func TestWrapValueDoublesPostgresQuote(t *testing.T) {
	g := sqlgen.NewPostgres()
	assert.Equal(t, `"we""ird"`, g.Wrap(`we"ird`))
}

func TestWrapTable(t *testing.T) {
	g := sqlgen.NewMySQL()
	assert.Equal(t, "`users`", g.WrapTable("users"))
	assert.Equal(t, "`users` as `u`", g.WrapTable("users as u"))
	assert.Equal(t, "(select 1)", g.WrapTable(query.Raw("(select 1)")))
}

func TestWrapTablePrefix(t *testing.T) {
	g := sqlgen.NewMySQL(sqlgen.WithTablePrefix("wp_"))

	assert.Equal(t, "`wp_users`", g.WrapTable("users"))
	assert.Equal(t, "`wp_users` as `wp_u`", g.WrapTable("users as u"))
	// Qualified columns prefix the table segment only.
	assert.Equal(t, "`wp_users`.`id`", g.Wrap("users.id"))
}

func TestColumnize(t *testing.T) {
	g := sqlgen.NewMySQL()
	columns := []any{"id", "users.name", query.Raw("count(*)")}
	assert.Equal(t, "`id`, `users`.`name`, count(*)", g.Columnize(columns))
}

func TestParameter(t *testing.T) {
	g := sqlgen.NewPostgres()
	assert.Equal(t, "?", g.Parameter(1))
	assert.Equal(t, "now()", g.Parameter(query.Raw("now()")))
	assert.Equal(t, "?, ?, now()", g.Parameterize([]any{1, "x", query.Raw("now()")}))
}

func TestQuoteString(t *testing.T) {
	g := sqlgen.NewMySQL()
	assert.Equal(t, "'draft'", g.QuoteString("draft"))
}

func TestCompileRandom(t *testing.T) {
	assert.Equal(t, "rand()", sqlgen.NewMySQL().CompileRandom(""))
	assert.Equal(t, "rand(7)", sqlgen.NewMySQL().CompileRandom("7"))
	assert.Equal(t, "random()", sqlgen.NewPostgres().CompileRandom(""))
	assert.Equal(t, "random()", sqlgen.NewSQLite().CompileRandom(""))
}

func TestRebindSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "numbers placeholders in order",
			in:   `select * from "users" where "id" = ? and "name" = ?`,
			want: `select * from "users" where "id" = $1 and "name" = $2`,
		},
		{
			name: "ignores question marks inside string literals",
			in:   `select * from "users" where "name" = '?' and "id" = ?`,
			want: `select * from "users" where "name" = '?' and "id" = $1`,
		},
		{
			name: "no placeholders",
			in:   `select * from "users"`,
			want: `select * from "users"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqlgen.RebindSQL(tt.in))
		})
	}
}
