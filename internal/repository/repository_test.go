package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newRepoMock returns a sqlx handle over sqlmock that fails the test if any
// expectation is left unmet.
func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	db := sqlx.NewDb(raw, "postgres")
	return db, mock, func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	}
}
