package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestExecBatchRunsStatementsInOrder(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM dashboard_charts WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM dashboard_kpi_cards WHERE id = $1")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 2))

	results, err := ExecBatch(context.Background(), db, []Statement{
		{Query: "DELETE FROM dashboard_charts WHERE id = $1", Args: []interface{}{3}},
		{Query: "DELETE FROM dashboard_kpi_cards WHERE id = $1", Args: []interface{}{4}},
	})
	require.NoError(t, err)
	assert.Equal(t, []BatchResult{{RowsAffected: 1}, {RowsAffected: 2}}, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecBatchStopsAtFirstFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SELECT 2").WillReturnError(errors.New("boom"))

	results, err := ExecBatch(context.Background(), db, []Statement{
		{Query: "SELECT 1"},
		{Query: "SELECT 2"},
		{Query: "SELECT 3"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch statement 1")
	assert.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationsAreOrdered(t *testing.T) {
	stmts, names, err := Migrations()
	require.NoError(t, err)
	require.Len(t, stmts, len(names))
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_dashboard_config.sql", names[0])
	assert.Contains(t, stmts[0].Query, "ON DELETE CASCADE")
}
