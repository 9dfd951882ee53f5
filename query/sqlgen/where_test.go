package sqlgen_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/querykit/query"
)

func TestWhereBasic(t *testing.T) {
	b := mysqlQuery().Table("users").Where("email", "=", "jon@example.com")
	assert.Equal(t, "select * from `users` where `email` = ?", mustSQL(t, b))
	assert.Equal(t, []any{"jon@example.com"}, b.Bindings())
}

func TestWhereBooleans(t *testing.T) {
	b := mysqlQuery().Table("users").
		Where("votes", ">", 100).
		OrWhere("name", "=", "Jon")
	assert.Equal(t, "select * from `users` where `votes` > ? or `name` = ?", mustSQL(t, b))
	assert.Equal(t, []any{100, "Jon"}, b.Bindings())
}

func TestLeadingOrIsStripped(t *testing.T) {
	b := mysqlQuery().Table("users").
		OrWhere("votes", ">", 100).
		Where("active", "=", true)
	assert.Equal(t, "select * from `users` where `votes` > ? and `active` = ?", mustSQL(t, b))
}

func TestWhereNilValueReadsAsNullCheck(t *testing.T) {
	b := mysqlQuery().Table("users").Where("deleted_at", "=", nil)
	assert.Equal(t, "select * from `users` where `deleted_at` is null", mustSQL(t, b))

	b = mysqlQuery().Table("users").Where("deleted_at", "!=", nil)
	assert.Equal(t, "select * from `users` where `deleted_at` is not null", mustSQL(t, b))
}

func TestWhereRejectsUnknownOperator(t *testing.T) {
	b := mysqlQuery().Table("users").Where("email", "===", "x")
	_, err := b.ToSQL()
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidArgument)
}

func TestWhereExpressionValueIsInlined(t *testing.T) {
	b := mysqlQuery().Table("users").Where("updated_at", ">=", query.Raw("now()"))
	assert.Equal(t, "select * from `users` where `updated_at` >= now()", mustSQL(t, b))
	assert.Empty(t, b.Bindings())
}

func TestWhereRaw(t *testing.T) {
	b := mysqlQuery().Table("orders").WhereRaw("price > if(state = ?, ?, ?)", "TX", 200, 100)
	assert.Equal(t, "select * from `orders` where price > if(state = ?, ?, ?)", mustSQL(t, b))
	assert.Equal(t, []any{"TX", 200, 100}, b.Bindings())
}

func TestWhereIn(t *testing.T) {
	b := mysqlQuery().Table("users").WhereIn("id", 1, 2, 3)
	assert.Equal(t, "select * from `users` where `id` in (?, ?, ?)", mustSQL(t, b))
	assert.Equal(t, []any{1, 2, 3}, b.Bindings())
}

func TestWhereInEmptySetIsAlwaysFalse(t *testing.T) {
	b := mysqlQuery().Table("users").WhereIn("id")
	assert.Equal(t, "select * from `users` where 0 = 1", mustSQL(t, b))
	assert.Empty(t, b.Bindings())
}

func TestWhereNotInEmptySetIsAlwaysTrue(t *testing.T) {
	b := mysqlQuery().Table("users").WhereNotIn("id")
	assert.Equal(t, "select * from `users` where 1 = 1", mustSQL(t, b))
}

func TestWhereIntegerInRawInlinesValues(t *testing.T) {
	b := mysqlQuery().Table("users").WhereIntegerInRaw("id", []int{1, 2, 3})
	assert.Equal(t, "select * from `users` where `id` in (1, 2, 3)", mustSQL(t, b))
	assert.Empty(t, b.Bindings())

	b = mysqlQuery().Table("users").WhereIntegerNotInRaw("id", []int{4, 5})
	assert.Equal(t, "select * from `users` where `id` not in (4, 5)", mustSQL(t, b))

	b = mysqlQuery().Table("users").WhereIntegerInRaw("id", nil)
	assert.Equal(t, "select * from `users` where 0 = 1", mustSQL(t, b))
}

func TestWhereNull(t *testing.T) {
	b := mysqlQuery().Table("users").WhereNull("deleted_at", "banned_at")
	assert.Equal(t, "select * from `users` where `deleted_at` is null and `banned_at` is null", mustSQL(t, b))

	b = mysqlQuery().Table("users").WhereNotNull("email").OrWhereNull("phone")
	assert.Equal(t, "select * from `users` where `email` is not null or `phone` is null", mustSQL(t, b))
}

func TestWhereBetween(t *testing.T) {
	b := mysqlQuery().Table("users").WhereBetween("votes", 1, 100)
	assert.Equal(t, "select * from `users` where `votes` between ? and ?", mustSQL(t, b))
	assert.Equal(t, []any{1, 100}, b.Bindings())

	b = mysqlQuery().Table("users").WhereNotBetween("votes", 1, 100)
	assert.Equal(t, "select * from `users` where `votes` not between ? and ?", mustSQL(t, b))
}

func TestWhereColumn(t *testing.T) {
	b := mysqlQuery().Table("users").WhereColumn("first_name", "=", "last_name")
	assert.Equal(t, "select * from `users` where `first_name` = `last_name`", mustSQL(t, b))
	assert.Empty(t, b.Bindings())
}

func TestWhereNested(t *testing.T) {
	b := mysqlQuery().Table("users").
		Where("active", "=", true).
		OrWhereFunc(func(q *query.Builder) {
			q.Where("email", "=", "jon@example.com").
				Where("admin", "=", true)
		})
	want := "select * from `users` where `active` = ? or (`email` = ? and `admin` = ?)"
	assert.Equal(t, want, mustSQL(t, b))
	assert.Equal(t, []any{true, "jon@example.com", true}, b.Bindings())
}

func TestWhereNestedStripsOnlyFirstBoolean(t *testing.T) {
	b := mysqlQuery().Table("users").WhereFunc(func(q *query.Builder) {
		q.Where("a", "=", 1).OrWhere("b", "=", 2)
	})
	assert.Equal(t, "select * from `users` where (`a` = ? or `b` = ?)", mustSQL(t, b))
}

func TestEmptyNestedWhereVanishes(t *testing.T) {
	b := mysqlQuery().Table("users").WhereFunc(func(q *query.Builder) {})
	assert.Equal(t, "select * from `users`", mustSQL(t, b))
}

func TestWhereSubQueryValue(t *testing.T) {
	b := mysqlQuery().Table("users").Where("id", "=", func(sub *query.Builder) {
		sub.Table("orders").Select(query.Raw("max(user_id)")).Where("paid", "=", true)
	})
	want := "select * from `users` where `id` = (select max(user_id) from `orders` where `paid` = ?)"
	assert.Equal(t, want, mustSQL(t, b))
	assert.Equal(t, []any{true}, b.Bindings())
}

func TestWhereSub(t *testing.T) {
	b := mysqlQuery().Table("users").WhereSub("votes", ">=", func(sub *query.Builder) {
		sub.Table("thresholds").Select("value").Where("name", "=", "minimum")
	})
	want := "select * from `users` where `votes` >= (select `value` from `thresholds` where `name` = ?)"
	assert.Equal(t, want, mustSQL(t, b))
}

func TestWhereExists(t *testing.T) {
	b := mysqlQuery().Table("users").WhereExists(func(sub *query.Builder) {
		sub.Table("orders").WhereColumn("orders.user_id", "=", "users.id")
	})
	want := "select * from `users` where exists (select * from `orders` where `orders`.`user_id` = `users`.`id`)"
	assert.Equal(t, want, mustSQL(t, b))

	b = mysqlQuery().Table("users").WhereNotExists(func(sub *query.Builder) {
		sub.Table("orders").WhereColumn("orders.user_id", "=", "users.id")
	})
	want = "select * from `users` where not exists (select * from `orders` where `orders`.`user_id` = `users`.`id`)"
	assert.Equal(t, want, mustSQL(t, b))
}

func TestWhereRowValues(t *testing.T) {
	b := mysqlQuery().Table("orders").
		WhereRowValues([]string{"last_update", "order_number"}, ">=", []any{"2025-01-01", 2})
	want := "select * from `orders` where (`last_update`, `order_number`) >= (?, ?)"
	assert.Equal(t, want, mustSQL(t, b))
	assert.Equal(t, []any{"2025-01-01", 2}, b.Bindings())
}

func TestWhereRowValuesLengthMismatch(t *testing.T) {
	b := mysqlQuery().Table("orders").
		WhereRowValues([]string{"a", "b"}, "=", []any{1})
	_, err := b.ToSQL()
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidArgument)
}

func TestWhereJSONContains(t *testing.T) {
	b := mysqlQuery().Table("users").WhereJSONContains("options->languages", []string{"en"})
	want := "select * from `users` where json_contains(`options`, ?, '$.\"languages\"')"
	assert.Equal(t, want, mustSQL(t, b))
	assert.Equal(t, []any{`["en"]`}, b.Bindings())

	b = pgQuery().Table("users").WhereJSONContains("options->languages", []string{"en"})
	want = `select * from "users" where ("options"->'languages')::jsonb @> ?`
	assert.Equal(t, want, mustSQL(t, b))

	b = mysqlQuery().Table("users").WhereJSONDoesntContain("options->languages", "en")
	want = "select * from `users` where not json_contains(`options`, ?, '$.\"languages\"')"
	assert.Equal(t, want, mustSQL(t, b))
	assert.Equal(t, []any{`"en"`}, b.Bindings())
}

func TestWhereJSONContainsWithoutPath(t *testing.T) {
	b := mysqlQuery().Table("users").WhereJSONContains("options", map[string]any{"beta": true})
	assert.Equal(t, "select * from `users` where json_contains(`options`, ?)", mustSQL(t, b))
	assert.Equal(t, []any{`{"beta":true}`}, b.Bindings())
}

func TestSQLiteJSONContainsUnsupported(t *testing.T) {
	b := sqliteQuery().Table("users").WhereJSONContains("options->languages", "en")
	_, err := b.ToSQL()
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrUnsupportedFeature)
}

func TestWhereJSONLength(t *testing.T) {
	b := mysqlQuery().Table("users").WhereJSONLength("options->languages", ">", 1)
	want := "select * from `users` where json_length(`options`, '$.\"languages\"') > ?"
	assert.Equal(t, want, mustSQL(t, b))
	assert.Equal(t, []any{1}, b.Bindings())

	b = pgQuery().Table("users").WhereJSONLength("options->languages", ">", 1)
	want = `select * from "users" where jsonb_array_length(("options"->'languages')::jsonb) > ?`
	assert.Equal(t, want, mustSQL(t, b))

	b = sqliteQuery().Table("users").WhereJSONLength("options->languages", ">", 1)
	want = `select * from "users" where json_array_length("options", '$."languages"') > ?`
	assert.Equal(t, want, mustSQL(t, b))
}

func TestWhereDatePerDialect(t *testing.T) {
	when := time.Date(2025, time.December, 21, 15, 30, 0, 0, time.UTC)

	b := mysqlQuery().Table("posts").WhereDate("created_at", "=", when)
	assert.Equal(t, "select * from `posts` where date(`created_at`) = ?", mustSQL(t, b))
	assert.Equal(t, []any{"2025-12-21"}, b.Bindings())

	b = pgQuery().Table("posts").WhereDate("created_at", "=", when)
	assert.Equal(t, `select * from "posts" where "created_at"::date = ?`, mustSQL(t, b))

	b = sqliteQuery().Table("posts").WhereDate("created_at", "=", when)
	assert.Equal(t, `select * from "posts" where strftime('%Y-%m-%d', "created_at") = cast(? as text)`, mustSQL(t, b))
}

func TestWhereTime(t *testing.T) {
	when := time.Date(2025, time.December, 21, 15, 30, 0, 0, time.UTC)

	b := mysqlQuery().Table("posts").WhereTime("created_at", ">=", when)
	assert.Equal(t, "select * from `posts` where time(`created_at`) >= ?", mustSQL(t, b))
	assert.Equal(t, []any{"15:30:00"}, b.Bindings())

	b = pgQuery().Table("posts").WhereTime("created_at", ">=", "15:30:00")
	assert.Equal(t, `select * from "posts" where "created_at"::time >= ?`, mustSQL(t, b))
}

func TestWhereDayMonthYear(t *testing.T) {
	b := mysqlQuery().Table("posts").WhereDay("created_at", "=", 5)
	assert.Equal(t, "select * from `posts` where day(`created_at`) = ?", mustSQL(t, b))
	assert.Equal(t, []any{"05"}, b.Bindings())

	b = mysqlQuery().Table("posts").WhereMonth("created_at", "=", 7)
	assert.Equal(t, "select * from `posts` where month(`created_at`) = ?", mustSQL(t, b))
	assert.Equal(t, []any{"07"}, b.Bindings())

	b = mysqlQuery().Table("posts").WhereYear("created_at", "=", 2025)
	assert.Equal(t, "select * from `posts` where year(`created_at`) = ?", mustSQL(t, b))
	assert.Equal(t, []any{2025}, b.Bindings())

	b = pgQuery().Table("posts").WhereMonth("created_at", "=", 7)
	assert.Equal(t, `select * from "posts" where extract(month from "created_at") = ?`, mustSQL(t, b))

	b = sqliteQuery().Table("posts").WhereDay("created_at", "=", 5)
	assert.Equal(t, `select * from "posts" where strftime('%d', "created_at") = cast(? as text)`, mustSQL(t, b))
}

func TestOrWhereDateVariants(t *testing.T) {
	b := mysqlQuery().Table("posts").
		WhereYear("created_at", "=", 2024).
		OrWhereYear("created_at", "=", 2025).
		OrWhereDate("published_at", "=", "2025-06-01")
	want := "select * from `posts` where year(`created_at`) = ? or year(`created_at`) = ? or date(`published_at`) = ?"
	assert.Equal(t, want, mustSQL(t, b))
	assert.Equal(t, []any{2024, 2025, "2025-06-01"}, b.Bindings())
}

func TestWhereBindingOrderFollowsClauseOrder(t *testing.T) {
	b := mysqlQuery().Table("t").
		Where("a", "=", 1).
		WhereIn("b", 2, 3).
		WhereBetween("c", 4, 5).
		WhereRaw("d = ?", 6)
	assert.Equal(t, []any{1, 2, 3, 4, 5, 6}, b.Bindings())
}
