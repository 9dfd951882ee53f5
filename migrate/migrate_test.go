package migrate_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/querykit/migrate"
	"github.com/satishbabariya/querykit/runtime/client"
)

func mockMigrator(t *testing.T) (*migrate.Migrator, sqlmock.Sqlmock, afero.Fs) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c, err := client.FromDB("sqlite", db)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("migrations", 0o755))
	return migrate.New(c, "migrations", migrate.WithFs(fs)), mock, fs
}

func writeMigration(t *testing.T, fs afero.Fs, stem, up, down string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "migrations/"+stem+".up.sql", []byte(up), 0o644))
	if down != "" {
		require.NoError(t, afero.WriteFile(fs, "migrations/"+stem+".down.sql", []byte(down), 0o644))
	}
}

func expectHistoryCheck(mock sqlmock.Sqlmock, exists bool) {
	mock.ExpectQuery(`select exists(select * from sqlite_master where "type" = ? and "name" = ?) as "exists"`).
		WithArgs("table", migrate.HistoryTable).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func expectApplied(mock sqlmock.Sqlmock, records ...[2]any) {
	rows := sqlmock.NewRows([]string{"migration", "batch"})
	for _, record := range records {
		rows.AddRow(record[0], record[1])
	}
	mock.ExpectQuery(`select "migration", "batch" from "querykit_migrations"`).
		WillReturnRows(rows)
}

func TestMigrationsAreOrdered(t *testing.T) {
	m, _, fs := mockMigrator(t)
	writeMigration(t, fs, "0002_add_votes", "alter table users add column votes integer;", "x")
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "drop table users;")
	require.NoError(t, afero.WriteFile(fs, "migrations/README.md", []byte("notes"), 0o644))

	migrations, err := m.Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001_create_users", migrations[0].Name)
	assert.Equal(t, "0002_add_votes", migrations[1].Name)
	assert.Equal(t, "migrations/0001_create_users.up.sql", migrations[0].UpPath)
	assert.Equal(t, "migrations/0001_create_users.down.sql", migrations[0].DownPath)
}

func TestUpAppliesPendingInOrder(t *testing.T) {
	m, mock, fs := mockMigrator(t)
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "drop table users;")
	writeMigration(t, fs, "0002_add_votes", "alter table users add column votes integer;", "")

	expectHistoryCheck(mock, true)
	expectApplied(mock)

	mock.ExpectBegin()
	mock.ExpectExec("create table users (id integer)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`insert into "querykit_migrations" ("batch", "migration") values (?, ?)`).
		WithArgs(1, "0001_create_users").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("alter table users add column votes integer").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`insert into "querykit_migrations" ("batch", "migration") values (?, ?)`).
		WithArgs(1, "0002_add_votes").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	applied, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_users", "0002_add_votes"}, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpSkipsAlreadyApplied(t *testing.T) {
	m, mock, fs := mockMigrator(t)
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "")

	expectHistoryCheck(mock, true)
	expectApplied(mock, [2]any{"0001_create_users", int64(1)})

	applied, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpStartsNextBatch(t *testing.T) {
	m, mock, fs := mockMigrator(t)
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "")
	writeMigration(t, fs, "0002_add_votes", "alter table users add column votes integer;", "")

	expectHistoryCheck(mock, true)
	expectApplied(mock, [2]any{"0001_create_users", int64(1)})

	mock.ExpectBegin()
	mock.ExpectExec("alter table users add column votes integer").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`insert into "querykit_migrations" ("batch", "migration") values (?, ?)`).
		WithArgs(2, "0002_add_votes").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	applied, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_add_votes"}, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpCreatesHistoryTable(t *testing.T) {
	m, mock, _ := mockMigrator(t)

	expectHistoryCheck(mock, false)
	mock.ExpectExec(`create table "querykit_migrations" (`+
		`"id" integer not null primary key autoincrement, `+
		`"migration" varchar not null, `+
		`"batch" integer not null, `+
		`"applied_at" datetime not null default current_timestamp)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectApplied(mock)

	applied, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpRollsBackFailedMigration(t *testing.T) {
	m, mock, fs := mockMigrator(t)
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "")

	expectHistoryCheck(mock, true)
	expectApplied(mock)

	mock.ExpectBegin()
	mock.ExpectExec("create table users (id integer)").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	applied, err := m.Up(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "0001_create_users")
	assert.Empty(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDownRollsBackLastBatchNewestFirst(t *testing.T) {
	m, mock, fs := mockMigrator(t)
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "drop table users;")
	writeMigration(t, fs, "0002_add_votes", "alter table users add column votes integer;", "alter table users drop column votes;")

	expectHistoryCheck(mock, true)
	expectApplied(mock,
		[2]any{"0001_create_users", int64(1)},
		[2]any{"0002_add_votes", int64(1)})

	mock.ExpectBegin()
	mock.ExpectExec("alter table users drop column votes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`delete from "querykit_migrations" where "migration" = ?`).
		WithArgs("0002_add_votes").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("drop table users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`delete from "querykit_migrations" where "migration" = ?`).
		WithArgs("0001_create_users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rolled, err := m.Down(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_add_votes", "0001_create_users"}, rolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDownStepRollsBackOnlyNewest(t *testing.T) {
	m, mock, fs := mockMigrator(t)
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "drop table users;")
	writeMigration(t, fs, "0002_add_votes", "alter table users add column votes integer;", "alter table users drop column votes;")

	expectHistoryCheck(mock, true)
	expectApplied(mock,
		[2]any{"0001_create_users", int64(1)},
		[2]any{"0002_add_votes", int64(2)})

	mock.ExpectBegin()
	mock.ExpectExec("alter table users drop column votes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`delete from "querykit_migrations" where "migration" = ?`).
		WithArgs("0002_add_votes").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rolled, err := m.Down(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_add_votes"}, rolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDownWithoutDownFileFails(t *testing.T) {
	m, mock, fs := mockMigrator(t)
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "")

	expectHistoryCheck(mock, true)
	expectApplied(mock, [2]any{"0001_create_users", int64(1)})

	_, err := m.Down(context.Background(), 1)
	require.ErrorIs(t, err, migrate.ErrMissingDownFile)
}

func TestStatusListsFilesAndOrphans(t *testing.T) {
	m, mock, fs := mockMigrator(t)
	writeMigration(t, fs, "0001_create_users", "create table users (id integer);", "")
	writeMigration(t, fs, "0002_add_votes", "alter table users add column votes integer;", "")

	expectHistoryCheck(mock, true)
	expectApplied(mock,
		[2]any{"0001_create_users", int64(1)},
		[2]any{"0009_gone", int64(2)})

	statuses, err := m.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, migrate.Status{Name: "0001_create_users", Applied: true, Batch: 1}, statuses[0])
	assert.Equal(t, migrate.Status{Name: "0002_add_votes", Applied: false, Batch: 0}, statuses[1])
	assert.Equal(t, migrate.Status{Name: "0009_gone", Applied: true, Batch: 2}, statuses[2])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWritesSequencedPair(t *testing.T) {
	m, _, fs := mockMigrator(t)
	writeMigration(t, fs, "0007_seed_users", "insert into users (id) values (1);", "")

	up, down, err := m.Create("Add Votes")
	require.NoError(t, err)
	assert.Equal(t, "migrations/0008_add_votes.up.sql", up)
	assert.Equal(t, "migrations/0008_add_votes.down.sql", down)

	content, err := afero.ReadFile(fs, up)
	require.NoError(t, err)
	assert.Contains(t, string(content), "0008_add_votes")

	migrations, err := m.Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0008_add_votes", migrations[1].Name)
}
