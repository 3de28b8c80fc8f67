package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard-api/internal/models"
)

func TestDashboardConfigRepositoryListDimensions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardConfigRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM dashboard_dimensions ORDER BY sort_order, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key_name", "label", "sort_order", "created_at"}).
			AddRow(1, "day", "Day", 1, now).
			AddRow(2, "week", "Week", 2, now))

	dims, err := repo.ListDimensions(context.Background())
	require.NoError(t, err)
	require.Len(t, dims, 2)
	assert.Equal(t, "week", dims[1].KeyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardConfigRepositoryCreateCard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardConfigRepository(db)

	mock.ExpectQuery("INSERT INTO dashboard_kpi_cards").
		WithArgs(int64(1), "Check-ins", "fa-chart-bar", "SELECT 1 AS value", "text-blue-600", "bg-blue-50", 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.CreateCard(context.Background(), &models.KpiCardConfig{
		DimensionID: 1,
		Title:       "Check-ins",
		Icon:        "fa-chart-bar",
		SQLQuery:    "SELECT 1 AS value",
		ColorClass:  "text-blue-600",
		BgClass:     "bg-blue-50",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardConfigRepositoryUpdateChart(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardConfigRepository(db)

	mock.ExpectExec("UPDATE dashboard_charts").
		WithArgs("Trend", "", models.ChartTypeBar, "fa-chart-line", "SELECT d AS label, 1 AS value", 2, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateChart(context.Background(), &models.ChartConfig{
		ID:        5,
		Title:     "Trend",
		ChartType: models.ChartTypeBar,
		Icon:      "fa-chart-line",
		SQLQuery:  "SELECT d AS label, 1 AS value",
		SortOrder: 2,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardConfigRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardConfigRepository(db)

	mock.ExpectExec("UPDATE dashboard_dimensions").
		WithArgs("day", "Day", 0, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDimension(context.Background(), &models.Dimension{ID: 99, KeyName: "day", Label: "Day"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDashboardConfigRepositoryDeleteDimension(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardConfigRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM dashboard_dimensions WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteDimension(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
