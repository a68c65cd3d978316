package schema_test

import (
	"context"
	"testing"

	"db-sink/internal/dialect"
	"db-sink/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	d := dialect.NewPostgresDialect(dialect.Config{})
	table := dialect.NewTableID("users")
	query, _ := d.ColumnsQuery(table)

	mock.ExpectQuery(query).
		WithArgs("users", "public").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable"}).
			AddRow("id", "bigint", "NO").
			AddRow("email", "text", "YES").
			AddRow(nil, "text", "YES"))

	cols, err := schema.Inspect(context.Background(), db, d, table)
	require.NoError(t, err)
	assert.Equal(t, []schema.Column{
		{Name: "id", DataType: "bigint", IsNullable: false},
		{Name: "email", DataType: "text", IsNullable: true},
	}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspect_OracleNullable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	d := dialect.NewOracleDialect(dialect.Config{})
	table := dialect.NewTableID("USERS")
	query, _ := d.ColumnsQuery(table)

	mock.ExpectQuery(query).
		WithArgs("USERS").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "NULLABLE"}).
			AddRow("ID", "NUMBER", "N").
			AddRow("NOTE", "CLOB", "Y"))

	cols, err := schema.Inspect(context.Background(), db, d, table)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.False(t, cols[0].IsNullable)
	assert.True(t, cols[1].IsNullable)
}

func TestInspect_GridDBMetatable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	d := dialect.NewGridDBDialect(dialect.Config{})
	table := dialect.NewTableID("orders")
	query, _ := d.ColumnsQuery(table)

	mock.ExpectQuery(query).
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "TYPE_NAME", "NULLABLE"}).
			AddRow("id", "INTEGER", false).
			AddRow("note", "STRING", true))

	cols, err := schema.Inspect(context.Background(), db, d, table)
	require.NoError(t, err)
	assert.Equal(t, []schema.Column{
		{Name: "id", DataType: "INTEGER", IsNullable: false},
		{Name: "note", DataType: "STRING", IsNullable: true},
	}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspect_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err = schema.Inspect(context.Background(), db, dialect.NewGeneric(dialect.Config{}), dialect.NewTableID("t"))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMissingFields(t *testing.T) {
	fields := []dialect.Field{
		{Name: "id", Type: dialect.Int64},
		{Name: "name", Type: dialect.String},
		{Name: "email", Type: dialect.String},
	}
	existing := []schema.Column{{Name: "ID"}, {Name: "Name"}}

	missing := schema.MissingFields(fields, existing)
	require.Len(t, missing, 1)
	assert.Equal(t, "email", missing[0].Name)

	assert.Empty(t, schema.MissingFields(fields[:1], existing))
}
