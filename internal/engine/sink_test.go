package engine_test

import (
	"context"
	"testing"

	"db-sink/internal/dialect"
	"db-sink/internal/engine"
	"db-sink/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gridColumnsQuery = `SELECT COLUMN_NAME, TYPE_NAME, NULLABLE FROM "#columns" WHERE TABLE_NAME = ? ORDER BY ORDINAL_POSITION`

func newMock(t *testing.T) (*engine.Sink, sqlmock.Sqlmock, func(engine.Options) *engine.Sink) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := dialect.NewGridDBDialect(dialect.Config{})
	build := func(opts engine.Options) *engine.Sink {
		return engine.NewSink(db, d, opts, nil)
	}
	return build(engine.Options{}), mock, build
}

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Fields: []schema.FieldSpec{
			{Name: "id", Type: "int64", Key: true},
			{Name: "name", Type: "string", Optional: true},
			{Name: "joined", Logical: "date", Optional: true},
		},
	}
}

func columns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"COLUMN_NAME", "TYPE_NAME", "NULLABLE"})
}

func TestSink_Prepare_CreatesTable(t *testing.T) {
	_, mock, build := newMock(t)
	s := build(engine.Options{AutoCreate: true})

	mock.ExpectQuery(gridColumnsQuery).WithArgs("users").WillReturnRows(columns())
	mock.ExpectExec("CREATE TABLE `users`(`id` INTEGER NOT NULL,`name` TEXT NULL,`joined` TIMESTAMP NULL,PRIMARY KEY(`id`))").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ev, err := s.Prepare(context.Background(), usersTable())
	require.NoError(t, err)
	assert.True(t, ev.Created)
	assert.Len(t, ev.Statements, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_Prepare_TableMissing(t *testing.T) {
	s, mock, _ := newMock(t)

	mock.ExpectQuery(gridColumnsQuery).WithArgs("users").WillReturnRows(columns())

	_, err := s.Prepare(context.Background(), usersTable())
	assert.ErrorIs(t, err, engine.ErrTableMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_Prepare_AddsOptionalColumns(t *testing.T) {
	_, mock, build := newMock(t)
	s := build(engine.Options{AutoEvolve: true})

	mock.ExpectQuery(gridColumnsQuery).WithArgs("users").
		WillReturnRows(columns().AddRow("ID", "INTEGER", false))
	// GridDB takes one column per ALTER
	mock.ExpectExec("ALTER TABLE `users` ADD `name` TEXT NULL").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE `users` ADD `joined` TIMESTAMP NULL").WillReturnResult(sqlmock.NewResult(0, 0))

	ev, err := s.Prepare(context.Background(), usersTable())
	require.NoError(t, err)
	assert.False(t, ev.Created)
	assert.Equal(t, []string{"name", "joined"}, ev.Added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_Prepare_UpToDate(t *testing.T) {
	s, mock, _ := newMock(t)

	mock.ExpectQuery(gridColumnsQuery).WithArgs("users").
		WillReturnRows(columns().
			AddRow("id", "INTEGER", false).
			AddRow("name", "TEXT", true).
			AddRow("joined", "TIMESTAMP", true))

	ev, err := s.Prepare(context.Background(), usersTable())
	require.NoError(t, err)
	assert.Empty(t, ev.Statements)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_Prepare_CannotEvolve(t *testing.T) {
	t.Run("required field", func(t *testing.T) {
		_, mock, build := newMock(t)
		s := build(engine.Options{AutoEvolve: true})

		table := usersTable()
		table.Fields = append(table.Fields, schema.FieldSpec{Name: "email", Type: "string"})
		mock.ExpectQuery(gridColumnsQuery).WithArgs("users").
			WillReturnRows(columns().AddRow("id", "INTEGER", false).AddRow("name", "TEXT", true).AddRow("joined", "TIMESTAMP", true))

		_, err := s.Prepare(context.Background(), table)
		assert.ErrorIs(t, err, engine.ErrCannotEvolve)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("auto evolve off", func(t *testing.T) {
		s, mock, _ := newMock(t)
		mock.ExpectQuery(gridColumnsQuery).WithArgs("users").
			WillReturnRows(columns().AddRow("id", "INTEGER", false))

		_, err := s.Prepare(context.Background(), usersTable())
		assert.ErrorIs(t, err, engine.ErrCannotEvolve)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSink_Write_Batches(t *testing.T) {
	_, mock, build := newMock(t)
	s := build(engine.Options{BatchSize: 2})

	const upsert = "INSERT INTO `users`(`id`,`name`,`joined`) VALUES(?,?,?)"
	records := []engine.Record{
		{"id": int64(1), "name": "ann"},
		{"id": int64(2), "name": nil},
		{"id": int64(3), "name": "cy"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(upsert)
	prep.ExpectExec().WithArgs(int64(1), "ann", nil).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(int64(2), nil, nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectPrepare(upsert).ExpectExec().WithArgs(int64(3), "cy", nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	progress := 0
	res, err := s.Write(context.Background(), usersTable(), records, func() { progress++ })
	require.NoError(t, err)
	assert.Equal(t, engine.Result{Table: "users", Target: 3, Written: 3}, res)
	assert.Equal(t, 3, progress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_Write_BindFailureRollsBack(t *testing.T) {
	_, mock, build := newMock(t)
	s := build(engine.Options{BatchSize: 1})

	const upsert = "INSERT INTO `users`(`id`,`name`,`joined`) VALUES(?,?,?)"
	records := []engine.Record{
		{"id": int64(1)},
		{"id": "not-a-number"},
	}

	mock.ExpectBegin()
	mock.ExpectPrepare(upsert).ExpectExec().WithArgs(int64(1), nil, nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectPrepare(upsert)
	mock.ExpectRollback()

	res, err := s.Write(context.Background(), usersTable(), records, nil)
	assert.ErrorIs(t, err, dialect.ErrBindFailure)
	assert.Equal(t, 1, res.Written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_Write_ExecFailureRollsBack(t *testing.T) {
	s, mock, _ := newMock(t)

	const upsert = "INSERT INTO `users`(`id`,`name`,`joined`) VALUES(?,?,?)"
	mock.ExpectBegin()
	mock.ExpectPrepare(upsert).ExpectExec().WillReturnError(assert.AnError)
	mock.ExpectRollback()

	res, err := s.Write(context.Background(), usersTable(), []engine.Record{{"id": int64(1)}}, nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, res.Written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_Statement(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l, err := usersTable().Split()
	require.NoError(t, err)
	pg := dialect.NewPostgresDialect(dialect.Config{})

	upsert, err := engine.NewSink(db, pg, engine.Options{}, nil).Statement(l)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users"("id","name","joined") VALUES($1,$2,$3) ON CONFLICT ("id") DO UPDATE SET "name"=EXCLUDED."name","joined"=EXCLUDED."joined"`, upsert)

	insert, err := engine.NewSink(db, pg, engine.Options{InsertMode: engine.InsertModeInsert}, nil).Statement(l)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users"("id","name","joined") VALUES($1,$2,$3)`, insert)
}

func TestParseInsertMode(t *testing.T) {
	m, err := engine.ParseInsertMode("")
	require.NoError(t, err)
	assert.Equal(t, engine.InsertModeUpsert, m)

	m, err = engine.ParseInsertMode("INSERT")
	require.NoError(t, err)
	assert.Equal(t, engine.InsertModeInsert, m)

	_, err = engine.ParseInsertMode("merge")
	assert.Error(t, err)
}

func TestSink_Now(t *testing.T) {
	s, mock, _ := newMock(t)

	mock.ExpectQuery("SELECT NOW()").
		WillReturnRows(sqlmock.NewRows([]string{"now"}).AddRow("2024-05-01 10:00:00"))

	now, err := s.Now(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 10:00:00", now)
	assert.NoError(t, mock.ExpectationsWereMet())
}
