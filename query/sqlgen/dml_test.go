package sqlgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/querykit/query"
)

func TestCompileInsert(t *testing.T) {
	b := mysqlQuery().Table("users")
	sql, err := b.Grammar().CompileInsert(b, []map[string]any{
		{"name": "Jon", "email": "jon@example.com"},
	})
	require.NoError(t, err)
	// Columns compile in sorted order regardless of map iteration.
	assert.Equal(t, "insert into `users` (`email`, `name`) values (?, ?)", sql)
}

func TestCompileInsertBatch(t *testing.T) {
	b := pgQuery().Table("users")
	records := []map[string]any{
		{"email": "a@example.com", "name": "A"},
		{"email": "b@example.com", "name": "B"},
	}
	sql, err := b.Grammar().CompileInsert(b, records)
	require.NoError(t, err)
	assert.Equal(t, `insert into "users" ("email", "name") values (?, ?), (?, ?)`, sql)
	assert.Equal(t, []any{"a@example.com", "A", "b@example.com", "B"}, query.InsertBindings(records))
}

func TestCompileInsertEmpty(t *testing.T) {
	b := mysqlQuery().Table("users")
	_, err := b.Grammar().CompileInsert(b, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidArgument)
}

func TestCompileInsertExpressionValue(t *testing.T) {
	b := mysqlQuery().Table("users")
	records := []map[string]any{
		{"created_at": query.Raw("now()"), "email": "jon@example.com"},
	}
	sql, err := b.Grammar().CompileInsert(b, records)
	require.NoError(t, err)
	assert.Equal(t, "insert into `users` (`created_at`, `email`) values (now(), ?)", sql)
	assert.Equal(t, []any{"jon@example.com"}, query.InsertBindings(records))
}

func TestCompileInsertOrIgnore(t *testing.T) {
	records := []map[string]any{{"email": "jon@example.com"}}

	b := mysqlQuery().Table("users")
	sql, err := b.Grammar().CompileInsertOrIgnore(b, records)
	require.NoError(t, err)
	assert.Equal(t, "insert ignore into `users` (`email`) values (?)", sql)

	b = pgQuery().Table("users")
	sql, err = b.Grammar().CompileInsertOrIgnore(b, records)
	require.NoError(t, err)
	assert.Equal(t, `insert into "users" ("email") values (?) on conflict do nothing`, sql)

	b = sqliteQuery().Table("users")
	sql, err = b.Grammar().CompileInsertOrIgnore(b, records)
	require.NoError(t, err)
	assert.Equal(t, `insert or ignore into "users" ("email") values (?)`, sql)
}

func TestCompileInsertUsing(t *testing.T) {
	b := mysqlQuery().Table("recent_users")
	sub := mysqlQuery().Table("users").
		Select("email", "name").
		Where("active", "=", true)
	sql, err := b.Grammar().CompileInsertUsing(b, []string{"email", "name"}, sub)
	require.NoError(t, err)
	want := "insert into `recent_users` (`email`, `name`) select `email`, `name` from `users` where `active` = ?"
	assert.Equal(t, want, sql)
}

func TestCompileInsertUsingWithoutColumns(t *testing.T) {
	b := mysqlQuery().Table("archive")
	sub := mysqlQuery().Table("users").Where("banned", "=", true)
	sql, err := b.Grammar().CompileInsertUsing(b, nil, sub)
	require.NoError(t, err)
	assert.Equal(t, "insert into `archive` select * from `users` where `banned` = ?", sql)
}

func TestCompileUpsert(t *testing.T) {
	records := []map[string]any{{"email": "jon@example.com", "name": "Jon"}}

	b := mysqlQuery().Table("users")
	sql, err := b.Grammar().CompileUpsert(b, records, []string{"email"}, []string{"name"})
	require.NoError(t, err)
	want := "insert into `users` (`email`, `name`) values (?, ?)" +
		" on duplicate key update `name` = values(`name`)"
	assert.Equal(t, want, sql)

	b = pgQuery().Table("users")
	sql, err = b.Grammar().CompileUpsert(b, records, []string{"email"}, []string{"name"})
	require.NoError(t, err)
	want = `insert into "users" ("email", "name") values (?, ?)` +
		` on conflict ("email") do update set "name" = "excluded"."name"`
	assert.Equal(t, want, sql)

	b = sqliteQuery().Table("users")
	sql, err = b.Grammar().CompileUpsert(b, records, []string{"email"}, []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, want, sql)
}

func TestCompileUpsertDefaultsToAllColumns(t *testing.T) {
	records := []map[string]any{{"email": "jon@example.com", "name": "Jon"}}
	b := pgQuery().Table("users")
	sql, err := b.Grammar().CompileUpsert(b, records, []string{"email"}, nil)
	require.NoError(t, err)
	want := `insert into "users" ("email", "name") values (?, ?)` +
		` on conflict ("email") do update set "email" = "excluded"."email", "name" = "excluded"."name"`
	assert.Equal(t, want, sql)
}

func TestCompileUpsertNeedsConflictColumns(t *testing.T) {
	records := []map[string]any{{"email": "jon@example.com"}}
	b := pgQuery().Table("users")
	_, err := b.Grammar().CompileUpsert(b, records, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidArgument)
}

func TestCompileUpsertEmptyValues(t *testing.T) {
	b := mysqlQuery().Table("users")
	_, err := b.Grammar().CompileUpsert(b, nil, []string{"email"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidArgument)
}

func TestCompileUpdate(t *testing.T) {
	b := mysqlQuery().Table("users").Where("id", "=", 1)
	values := map[string]any{"name": "Jon", "email": "jon@example.com"}
	sql, err := b.Grammar().CompileUpdate(b, values)
	require.NoError(t, err)
	assert.Equal(t, "update `users` set `email` = ?, `name` = ? where `id` = ?", sql)
	assert.Equal(t, []any{"jon@example.com", "Jon", 1}, b.BindingsForUpdate(query.UpdateValues(values)))
}

func TestCompileUpdateExpressionValue(t *testing.T) {
	b := mysqlQuery().Table("users").Where("id", "=", 1)
	values := map[string]any{"votes": query.Raw("votes + 1")}
	sql, err := b.Grammar().CompileUpdate(b, values)
	require.NoError(t, err)
	assert.Equal(t, "update `users` set `votes` = votes + 1 where `id` = ?", sql)
	assert.Equal(t, []any{1}, b.BindingsForUpdate(query.UpdateValues(values)))
}

func TestCompileUpdateEmpty(t *testing.T) {
	b := mysqlQuery().Table("users")
	_, err := b.Grammar().CompileUpdate(b, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidArgument)
}

func TestCompileUpdateWithJoins(t *testing.T) {
	b := mysqlQuery().Table("users").
		Join("orders", "users.id", "=", "orders.user_id").
		Where("users.id", "=", 1)
	sql, err := b.Grammar().CompileUpdate(b, map[string]any{"name": "Jon"})
	require.NoError(t, err)
	want := "update `users` inner join `orders` on `users`.`id` = `orders`.`user_id`" +
		" set `name` = ? where `users`.`id` = ?"
	assert.Equal(t, want, sql)
}

func TestCompileUpdateWithJoinsUnsupported(t *testing.T) {
	for _, b := range []*query.Builder{pgQuery(), sqliteQuery()} {
		b.Table("users").Join("orders", "users.id", "=", "orders.user_id")
		_, err := b.Grammar().CompileUpdate(b, map[string]any{"name": "Jon"})
		require.Error(t, err)
		assert.ErrorIs(t, err, query.ErrUnsupportedFeature)
	}
}

func TestBindingsForUpdateOrder(t *testing.T) {
	b := mysqlQuery().Table("users").
		JoinFunc("orders", func(j *query.JoinClause) {
			j.On("users.id", "=", "orders.user_id").
				Where("orders.paid", "=", true)
		}).
		Where("users.id", "=", 1)
	values := map[string]any{"name": "Z"}
	// Join bindings lead, then the set values, then the wheres.
	assert.Equal(t, []any{true, "Z", 1}, b.BindingsForUpdate(query.UpdateValues(values)))
}

func TestCompileDelete(t *testing.T) {
	b := mysqlQuery().Table("users").Where("id", "=", 1)
	sql, err := b.Grammar().CompileDelete(b)
	require.NoError(t, err)
	assert.Equal(t, "delete from `users` where `id` = ?", sql)
	assert.Equal(t, []any{1}, b.BindingsForDelete())
}

func TestBindingsForDeleteSkipsSelectGroup(t *testing.T) {
	b := mysqlQuery().Table("users").
		SelectRaw("? as marker", 9).
		Where("id", "=", 1)
	assert.Equal(t, []any{1}, b.BindingsForDelete())
}

func TestCompileDeleteWithJoins(t *testing.T) {
	b := mysqlQuery().Table("users as u").
		Join("orders as o", "u.id", "=", "o.user_id").
		Where("u.id", "=", 1)
	sql, err := b.Grammar().CompileDelete(b)
	require.NoError(t, err)
	want := "delete `u` from `users` as `u` inner join `orders` as `o` on `u`.`id` = `o`.`user_id` where `u`.`id` = ?"
	assert.Equal(t, want, sql)
}

func TestCompileDeleteWithJoinsUnsupported(t *testing.T) {
	for _, b := range []*query.Builder{pgQuery(), sqliteQuery()} {
		b.Table("users").Join("orders", "users.id", "=", "orders.user_id")
		_, err := b.Grammar().CompileDelete(b)
		require.Error(t, err)
		assert.ErrorIs(t, err, query.ErrUnsupportedFeature)
	}
}

func TestCompileTruncate(t *testing.T) {
	b := mysqlQuery().Table("users")
	statements, err := b.Grammar().CompileTruncate(b)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Equal(t, "truncate table `users`", statements[0].SQL)
	assert.Empty(t, statements[0].Bindings)

	b = pgQuery().Table("users")
	statements, err = b.Grammar().CompileTruncate(b)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Equal(t, `truncate "users" restart identity cascade`, statements[0].SQL)
}

func TestCompileTruncateSQLite(t *testing.T) {
	b := sqliteQuery().Table("users")
	statements, err := b.Grammar().CompileTruncate(b)
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.Equal(t, "delete from sqlite_sequence where name = ?", statements[0].SQL)
	assert.Equal(t, []any{"users"}, statements[0].Bindings)
	assert.Equal(t, `delete from "users"`, statements[1].SQL)
}
